package frontmatterops

import "github.com/ricardoprins-paqt/vue-design-patterns/internal/frontmatter"

// Read splits a document into parsed frontmatter fields and body.
func Read(content []byte) (fields map[string]any, body []byte, had bool, style frontmatter.Style, err error) {
	raw, body, had, style, err := frontmatter.Split(content)
	if err != nil {
		return nil, nil, false, style, err
	}
	fields, err = frontmatter.ParseMap(raw)
	if err != nil {
		return nil, nil, had, style, err
	}
	return fields, body, had, style, nil
}

// Write serializes fields and reattaches the body, preserving the original
// newline style. A document that never had frontmatter gains a block only
// when fields is non-empty.
func Write(fields map[string]any, body []byte, had bool, style frontmatter.Style) ([]byte, error) {
	if !had && len(fields) == 0 {
		return body, nil
	}
	raw, err := frontmatter.Serialize(fields, style)
	if err != nil {
		return nil, err
	}
	return frontmatter.Join(raw, body, true, style), nil
}
