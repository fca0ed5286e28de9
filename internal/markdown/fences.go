package markdown

import "strings"

// Fence describes an opening fenced code block marker.
type Fence struct {
	// Line is the 1-based line of the opening marker.
	Line int
	// Marker is the literal fence, e.g. "```" or "~~~~".
	Marker string
	// Info is the info string following the marker, e.g. "vue" or "js".
	Info string
}

// UnclosedFences scans source line by line and returns every fence that is
// opened but never closed. A closing line must use the same marker rune, be
// at least as long as the opening run, and carry nothing but trailing spaces.
func UnclosedFences(source []byte) []Fence {
	var (
		unclosed []Fence
		open     *Fence
		openRune byte
	)
	for i, raw := range strings.Split(string(source), "\n") {
		line := strings.TrimSuffix(raw, "\r")
		marker, info, ok := fenceMarker(line)
		if !ok {
			continue
		}
		if open == nil {
			open = &Fence{Line: i + 1, Marker: marker, Info: info}
			openRune = marker[0]
			continue
		}
		// Inside a block only a matching closer ends it; anything else,
		// including a fence in the other rune, is literal content.
		if marker[0] == openRune && len(marker) >= len(open.Marker) && info == "" {
			open = nil
		}
	}
	if open != nil {
		unclosed = append(unclosed, *open)
	}
	return unclosed
}

// fenceMarker reports whether a line opens or closes a fenced code block,
// returning the marker run and the trimmed info string.
func fenceMarker(line string) (marker, info string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return "", "", false
	}
	if trimmed == "" {
		return "", "", false
	}
	r := trimmed[0]
	if r != '`' && r != '~' {
		return "", "", false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == r {
		n++
	}
	if n < 3 {
		return "", "", false
	}
	info = strings.TrimSpace(trimmed[n:])
	// A backtick info string must not contain backticks, so "``` a ` b"
	// is not a fence at all.
	if r == '`' && strings.ContainsRune(info, '`') {
		return "", "", false
	}
	return trimmed[:n], info, true
}
