package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/catalog"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/markdown"
)

// ShowCmd renders one document to the terminal.
type ShowCmd struct {
	Doc   string `arg:"" help:"Document path (relative to the content dir) or title"`
	Width int    `default:"80" help:"Wrap width for terminal output"`
	Raw   bool   `help:"Print the markdown source instead of rendering it"`
}

func (s *ShowCmd) Run(_ *Global, root *CLI) error {
	m, err := manifest.Load(root.Manifest)
	if err != nil {
		return err
	}

	contentDir := resolveAgainstManifest(root.Manifest, m.Content.Dir)
	cat, err := catalog.Discover(contentDir)
	if err != nil {
		return err
	}

	doc, ok := findDocument(cat, s.Doc)
	if !ok {
		return fmt.Errorf("document %q not found", s.Doc)
	}

	// Rewrite bracketed titles into links so rendered output matches the site.
	body, _ := markdown.ResolveCrossrefs(doc.Body, func(title string) (string, bool) {
		target, ok := cat.ByTitle(title)
		if !ok {
			return "", false
		}
		return m.HrefFor(target.RelPath), true
	})

	var src strings.Builder
	fmt.Fprintf(&src, "# %s\n\n", doc.Title)
	if doc.Description != "" {
		fmt.Fprintf(&src, "> %s\n\n", doc.Description)
	}
	src.Write(body)

	if s.Raw {
		fmt.Print(src.String())
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(s.Width),
	)
	if err != nil {
		return err
	}
	out, err := renderer.Render(src.String())
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, out)
	return nil
}

// findDocument resolves the argument as a relative path first, with or
// without the .md suffix, then as a title.
func findDocument(cat *catalog.Catalog, name string) (*catalog.Document, bool) {
	if doc, ok := cat.ByPath(name); ok {
		return doc, true
	}
	if doc, ok := cat.ByPath(name + ".md"); ok {
		return doc, true
	}
	return cat.ByTitle(name)
}
