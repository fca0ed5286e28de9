// Package frontmatter splits, parses, and re-serializes the YAML frontmatter
// block of catalog documents. Splitting preserves the document's newline style
// so that rewrites (uid/fingerprint upserts) stay byte-stable outside the
// fields they touch.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrUnterminated indicates a document opened a frontmatter block without
// closing it.
var ErrUnterminated = errors.New("frontmatter opening delimiter without closing delimiter")

// Style captures the formatting details needed to rewrite a document without
// disturbing untouched bytes.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Split separates a `---` delimited YAML frontmatter block from the Markdown
// body. When the document does not open with a delimiter, had is false and
// body is the full input.
func Split(content []byte) (fm []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	nl := []byte(style.Newline)
	open := append([]byte("---"), nl...)

	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	rest := content[len(open):]

	// An immediately-closed block is legal: empty frontmatter.
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, style, nil
	}

	closing := append(append(append([]byte(nil), nl...), []byte("---")...), nl...)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		return nil, nil, false, style, ErrUnterminated
	}

	fmEnd := idx + len(nl)
	return rest[:fmEnd], rest[idx+len(closing):], true, style, nil
}

// Join reassembles a document from raw frontmatter and body. When had is
// false the body is returned unchanged.
func Join(fm []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	delim := []byte("---" + nl)

	out := make([]byte, 0, 2*len(delim)+len(fm)+len(body))
	out = append(out, delim...)
	out = append(out, fm...)
	out = append(out, delim...)
	out = append(out, body...)
	return out
}

// ParseMap parses raw frontmatter bytes (without delimiters) into a map.
// Empty input yields an empty, non-nil map.
func ParseMap(fm []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(fm) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) Style {
	s := Style{Newline: "\n"}
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		s.Newline = "\r\n"
	}
	s.HasTrailingNewline = len(content) > 0 && content[len(content)-1] == '\n'
	return s
}
