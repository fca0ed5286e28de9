package verify

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Link is a reference extracted from a rendered page.
type Link struct {
	URL       string // raw attribute value
	Text      string // link text or alt text
	Tag       string // element carrying the link (a, img, script, ...)
	Attribute string // attribute the URL came from (href or src)
	External  bool   // absolute http(s) URL pointing off the site
}

// ExtractLinks parses a rendered HTML file and returns every link it carries.
func ExtractLinks(htmlPath string) ([]*Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return ExtractLinksFromReader(file)
}

// ExtractLinksFromReader parses HTML from r and returns every link it carries.
func ExtractLinksFromReader(r io.Reader) ([]*Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var links []*Link

	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			extractElementLinks(n, &links)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}

	extract(doc)
	return links, nil
}

// extractElementLinks collects links from a single HTML element.
func extractElementLinks(n *html.Node, links *[]*Link) {
	switch n.Data {
	case "a":
		if href := getAttr(n, "href"); href != "" {
			*links = append(*links, &Link{
				URL:       href,
				Text:      extractText(n),
				Tag:       "a",
				Attribute: "href",
				External:  isExternalURL(href),
			})
		}
	case "img":
		if src := getAttr(n, "src"); src != "" {
			*links = append(*links, &Link{
				URL:       src,
				Text:      getAttr(n, "alt"),
				Tag:       "img",
				Attribute: "src",
				External:  isExternalURL(src),
			})
		}
	case "script":
		if src := getAttr(n, "src"); src != "" {
			*links = append(*links, &Link{
				URL:       src,
				Tag:       "script",
				Attribute: "src",
				External:  isExternalURL(src),
			})
		}
	case "link":
		if href := getAttr(n, "href"); href != "" {
			*links = append(*links, &Link{
				URL:       href,
				Text:      getAttr(n, "rel"),
				Tag:       "link",
				Attribute: "href",
				External:  isExternalURL(href),
			})
		}
	case "video", "audio", "source":
		if src := getAttr(n, "src"); src != "" {
			*links = append(*links, &Link{
				URL:       src,
				Tag:       n.Data,
				Attribute: "src",
				External:  isExternalURL(src),
			})
		}
	}
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// extractText returns the concatenated text content of a node.
func extractText(n *html.Node) string {
	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.TrimSpace(text.String())
}

// isExternalURL reports whether raw is an absolute http(s) URL. The catalog
// has no canonical host, so anything with a scheme and host leaves the site.
func isExternalURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ShouldCheck reports whether a link is worth an HTTP request. Fragments,
// non-web schemes, and on-site paths are skipped; on-site integrity is
// already covered at build time.
func ShouldCheck(l *Link) bool {
	if l == nil || l.URL == "" {
		return false
	}
	if strings.HasPrefix(l.URL, "#") {
		return false
	}
	for _, scheme := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(l.URL, scheme) {
			return false
		}
	}
	return l.External
}
