package markdown

import (
	"regexp"
	"strings"
)

// crossrefPattern matches [[Title]] and [[Title|label]] references.
var crossrefPattern = regexp.MustCompile(`\[\[([^\[\]|]+?)(?:\|([^\[\]]+?))?\]\]`)

// Crossref is a bracketed-title reference to another document.
type Crossref struct {
	// Title is the referenced document title, exactly as written.
	Title string
	// Label is the display text, equal to Title unless the reference
	// carried an explicit [[Title|label]] override.
	Label string
	// Line is the 1-based source line.
	Line int
}

// Crossrefs returns every bracketed-title reference outside code.
func Crossrefs(source []byte) []Crossref {
	var refs []Crossref
	transformProse(source, func(lineNo int, m []string) string {
		refs = append(refs, newCrossref(m, lineNo))
		return m[0]
	})
	return refs
}

// ResolveCrossrefs rewrites resolvable bracketed-title references into
// regular markdown links using the href returned by resolve. References the
// resolver rejects are left in place and returned for reporting.
func ResolveCrossrefs(source []byte, resolve func(title string) (string, bool)) ([]byte, []Crossref) {
	var unresolved []Crossref
	out := transformProse(source, func(lineNo int, m []string) string {
		ref := newCrossref(m, lineNo)
		href, ok := resolve(ref.Title)
		if !ok {
			unresolved = append(unresolved, ref)
			return m[0]
		}
		return "[" + ref.Label + "](" + href + ")"
	})
	return out, unresolved
}

func newCrossref(m []string, lineNo int) Crossref {
	title := strings.TrimSpace(m[1])
	label := title
	if m[2] != "" {
		label = strings.TrimSpace(m[2])
	}
	return Crossref{Title: title, Label: label, Line: lineNo}
}

// transformProse applies repl to every crossref match on prose lines,
// leaving fenced code blocks and inline code spans untouched.
func transformProse(source []byte, repl func(lineNo int, m []string) string) []byte {
	lines := strings.Split(string(source), "\n")
	var openMarker string
	for i, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")
		if marker, info, ok := fenceMarker(line); ok {
			if openMarker == "" {
				openMarker = marker
			} else if marker[0] == openMarker[0] && len(marker) >= len(openMarker) && info == "" {
				openMarker = ""
			}
			continue
		}
		if openMarker != "" {
			continue
		}
		lines[i] = replaceMatches(raw, func(m []string) string {
			return repl(i+1, m)
		})
	}
	return []byte(strings.Join(lines, "\n"))
}

// replaceMatches runs the crossref pattern over the parts of a line that are
// not inside backtick code spans.
func replaceMatches(line string, repl func(m []string) string) string {
	matches := crossrefPattern.FindAllStringSubmatchIndex(line, -1)
	if matches == nil {
		return line
	}
	spans := codeSpans(line)
	var b strings.Builder
	last := 0
	for _, loc := range matches {
		b.WriteString(line[last:loc[0]])
		if insideSpan(spans, loc[0], loc[1]) {
			b.WriteString(line[loc[0]:loc[1]])
		} else {
			b.WriteString(repl(submatches(line, loc)))
		}
		last = loc[1]
	}
	b.WriteString(line[last:])
	return b.String()
}

func submatches(line string, loc []int) []string {
	m := make([]string, len(loc)/2)
	for i := range m {
		if loc[2*i] < 0 {
			continue
		}
		m[i] = line[loc[2*i]:loc[2*i+1]]
	}
	return m
}

// codeSpans returns the [start,end) byte ranges of inline code on a line.
// A span opens with a run of N backticks and closes at the next run of
// exactly N backticks.
func codeSpans(line string) [][2]int {
	var spans [][2]int
	i := 0
	for i < len(line) {
		if line[i] != '`' {
			i++
			continue
		}
		n := 0
		for i+n < len(line) && line[i+n] == '`' {
			n++
		}
		start := i
		i += n
		closed := false
		for i < len(line) {
			if line[i] != '`' {
				i++
				continue
			}
			c := 0
			for i+c < len(line) && line[i+c] == '`' {
				c++
			}
			if c == n {
				spans = append(spans, [2]int{start, i + c})
				i += c
				closed = true
				break
			}
			i += c
		}
		if !closed {
			break
		}
	}
	return spans
}

func insideSpan(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start >= s[0] && end <= s[1] {
			return true
		}
	}
	return false
}
