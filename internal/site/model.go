package site

import (
	"html/template"
	"sort"
	"time"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/catalog"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/markdown"
)

// NavGroup is a sidebar category with resolved links.
type NavGroup struct {
	Title     string
	Collapsed bool
	Items     []NavItem
}

// NavItem is one sidebar link.
type NavItem struct {
	Label string
	Href  string
	// Path is the content-relative source document.
	Path string
}

// SocialLink is one footer link.
type SocialLink struct {
	Name string
	URL  string
}

// Page is one document prepared for rendering.
type Page struct {
	Doc         *catalog.Document
	Title       string
	Description string
	Tags        []string
	// Group is the sidebar category listing this page, empty for unlisted
	// pages.
	Group string
	// Href is the site URL of the page, base path included.
	Href string
	// OutPath is the output file, relative to the site root.
	OutPath string
	// Aliases are extra URL paths that redirect here.
	Aliases  []string
	LastMod  time.Time
	Content  template.HTML
	Headings []markdown.Heading

	// source is the markdown body after cross-reference resolution.
	source []byte
}

// socialLinks flattens the manifest's social map into a name-ordered slice
// so footers render deterministically.
func socialLinks(social map[string]string) []SocialLink {
	links := make([]SocialLink, 0, len(social))
	for name, url := range social {
		if url == "" {
			continue
		}
		links = append(links, SocialLink{Name: name, URL: url})
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Name < links[j].Name })
	return links
}
