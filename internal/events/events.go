// Package events records what happens to a catalog over time: builds,
// lint runs, link verification, and watch-triggered rebuilds. Events flow
// through an in-process bus and persist to a sqlite journal so the preview
// server can answer "what happened" after the fact.
package events

import "time"

// Event types published by the builder and its surrounding services.
const (
	TypeBuildStarted    = "build.started"
	TypeBuildCompleted  = "build.completed"
	TypeBuildFailed     = "build.failed"
	TypeLintCompleted   = "lint.completed"
	TypeVerifyCompleted = "verify.completed"
	TypeWatchChanged    = "watch.changed"
)

// Event is one occurrence tied to a build.
type Event struct {
	BuildID string
	Type    string
	Payload any
}

// BuildStarted is the payload of TypeBuildStarted.
type BuildStarted struct {
	Trigger string `json:"trigger"` // cli, watch, schedule
}

// BuildCompleted is the payload of TypeBuildCompleted.
type BuildCompleted struct {
	DurationMS int64 `json:"duration_ms"`
	Pages      int   `json:"pages"`
	Warnings   int   `json:"warnings"`
}

// BuildFailed is the payload of TypeBuildFailed.
type BuildFailed struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// LintCompleted is the payload of TypeLintCompleted.
type LintCompleted struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// VerifyCompleted is the payload of TypeVerifyCompleted.
type VerifyCompleted struct {
	Checked int `json:"checked"`
	Broken  int `json:"broken"`
	Cached  int `json:"cached"`
}

// WatchChanged is the payload of TypeWatchChanged.
type WatchChanged struct {
	Path string `json:"path"`
}

// Entry is an event as read back from the journal.
type Entry struct {
	ID      int64     `json:"id"`
	BuildID string    `json:"build_id"`
	Type    string    `json:"type"`
	Time    time.Time `json:"time"`
	Payload []byte    `json:"payload"`
}

// BuildSummary condenses a build's journal entries into one row.
type BuildSummary struct {
	BuildID    string    `json:"build_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	LastEvent  string    `json:"last_event"`
}
