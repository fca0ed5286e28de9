package verify

import "time"

// BrokenLink is published for every URL that fails verification. Downstream
// consumers (issue trackers, chat hooks) subscribe to the configured subject.
type BrokenLink struct {
	URL       string    `json:"url"`
	Status    int       `json:"status"` // 0 for transport errors
	Error     string    `json:"error"`
	Pages     []string  `json:"pages"` // site-relative pages referencing the URL
	Failures  int       `json:"failures"`
	CheckedAt time.Time `json:"checked_at"`
}
