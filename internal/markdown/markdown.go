// Package markdown wraps the goldmark engine used for catalog documents.
//
// It renders GitHub-flavored markdown to HTML and exposes the structural
// queries the rest of the builder needs: headings, links, fenced code blocks,
// and bracketed-title cross-references.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/slug"
)

var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
		parser.WithASTTransformers(util.Prioritized(headingIDTransformer{}, 100)),
	),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// headingIDTransformer replaces goldmark's auto IDs with the site slug scheme
// so rendered anchors match what the layout's table of contents emits.
type headingIDTransformer struct{}

func (headingIDTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	seen := map[string]int{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		id := slug.Anchor(textOf(h, reader.Source()))
		if id == "" {
			id = "section"
		}
		seen[id]++
		if c := seen[id]; c > 1 {
			id = fmt.Sprintf("%s-%d", id, c-1)
		}
		h.SetAttributeString("id", []byte(id))
		return ast.WalkContinue, nil
	})
}

// ToHTML renders markdown source into an HTML fragment.
func ToHTML(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := engine.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Heading is a markdown heading with its anchor and 1-based source line.
type Heading struct {
	Level int
	Text  string
	ID    string
	Line  int
}

// ExtractHeadings returns every heading in document order.
func ExtractHeadings(source []byte) []Heading {
	doc := engine.Parser().Parse(text.NewReader(source))
	var headings []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		headings = append(headings, Heading{
			Level: h.Level,
			Text:  textOf(h, source),
			ID:    headingID(h),
			Line:  lineOf(h, source),
		})
		return ast.WalkContinue, nil
	})
	return headings
}

func headingID(h *ast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	b, ok := v.([]byte)
	if !ok {
		return ""
	}
	return string(b)
}

// Title returns the text of the first level-one heading, if any.
func Title(source []byte) (string, bool) {
	for _, h := range ExtractHeadings(source) {
		if h.Level == 1 {
			return h.Text, true
		}
	}
	return "", false
}

// LinkKind distinguishes how a link appeared in the source.
type LinkKind string

const (
	LinkInline   LinkKind = "inline"
	LinkImage    LinkKind = "image"
	LinkAutolink LinkKind = "autolink"
)

// Link is a single outbound reference found in a document.
type Link struct {
	Destination string
	Text        string
	Kind        LinkKind
	Line        int
}

// IsExternal reports whether the destination points outside the site.
func (l Link) IsExternal() bool {
	return strings.HasPrefix(l.Destination, "http://") ||
		strings.HasPrefix(l.Destination, "https://") ||
		strings.HasPrefix(l.Destination, "mailto:")
}

// ExtractLinks returns every link, image, and autolink in document order.
func ExtractLinks(source []byte) []Link {
	doc := engine.Parser().Parse(text.NewReader(source))
	var links []Link
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Link:
			links = append(links, Link{
				Destination: string(t.Destination),
				Text:        textOf(t, source),
				Kind:        LinkInline,
				Line:        lineOf(t, source),
			})
		case *ast.Image:
			links = append(links, Link{
				Destination: string(t.Destination),
				Text:        textOf(t, source),
				Kind:        LinkImage,
				Line:        lineOf(t, source),
			})
		case *ast.AutoLink:
			links = append(links, Link{
				Destination: string(t.URL(source)),
				Text:        string(t.Label(source)),
				Kind:        LinkAutolink,
				Line:        lineOf(t, source),
			})
		}
		return ast.WalkContinue, nil
	})
	return links
}

// textOf collects the plain text under a node.
func textOf(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// lineOf resolves the 1-based line of a node by walking up to the nearest
// ancestor that carries source segments.
func lineOf(n ast.Node, source []byte) int {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Type() == ast.TypeBlock && cur.Lines().Len() > 0 {
			start := cur.Lines().At(0).Start
			if start > len(source) {
				start = len(source)
			}
			return 1 + bytes.Count(source[:start], []byte("\n"))
		}
	}
	return 1
}
