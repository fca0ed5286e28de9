package site

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
)

// searchEntry is one record in the client-side search index.
type searchEntry struct {
	Title       string   `json:"title"`
	Href        string   `json:"href"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Group       string   `json:"group,omitempty"`
}

// stageSearchIndex writes search.json, the corpus the topbar search box
// filters in the browser.
func stageSearchIndex(_ context.Context, bs *BuildState) error {
	entries := make([]searchEntry, 0, len(bs.Pages))
	for _, page := range bs.Pages {
		entries = append(entries, searchEntry{
			Title:       page.Title,
			Href:        page.Href,
			Description: page.Description,
			Tags:        page.Tags,
			Group:       page.Group,
		})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fatalStageError(StageSearch, fmt.Errorf("encode search index: %w", err))
	}
	if err := bs.writeStaged("search.json", data); err != nil {
		return fatalStageError(StageSearch, err)
	}
	return nil
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// stageSitemap writes sitemap.xml and robots.txt. Locations are absolute
// when the manifest declares a site url, path-only otherwise.
func stageSitemap(_ context.Context, bs *BuildState) error {
	origin := bs.Manifest.Site.URL
	set := sitemapSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, page := range bs.Pages {
		u := sitemapURL{Loc: origin + page.Href}
		if !page.LastMod.IsZero() {
			u.LastMod = page.LastMod.Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return fatalStageError(StageSitemap, fmt.Errorf("encode sitemap: %w", err))
	}
	out := append([]byte(xml.Header), body...)
	out = append(out, '\n')
	if err := bs.writeStaged("sitemap.xml", out); err != nil {
		return fatalStageError(StageSitemap, err)
	}

	robots := "User-agent: *\nAllow: /\n"
	if origin != "" {
		robots += "Sitemap: " + origin + bs.Manifest.Site.BasePath + "sitemap.xml\n"
	}
	if err := bs.writeStaged("robots.txt", []byte(robots)); err != nil {
		return fatalStageError(StageSitemap, err)
	}
	return nil
}

// stageAssets writes the stylesheet and the search script the layout links.
func stageAssets(_ context.Context, bs *BuildState) error {
	if err := bs.writeStaged("assets/site.css", []byte(siteCSS)); err != nil {
		return fatalStageError(StageAssets, err)
	}
	if err := bs.writeStaged("assets/search.js", []byte(searchJS)); err != nil {
		return fatalStageError(StageAssets, err)
	}
	return nil
}
