package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/markdown"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/version"
)

// pageData is the template context for one rendered page.
type pageData struct {
	Site       manifest.Site
	Nav        []NavGroup
	Social     []SocialLink
	Page       *Page
	TabTitle   string
	LiveReload bool
	Generator  string
}

// stageRender converts every page body to HTML and writes it through the
// layout, along with alias redirects and the 404 page.
func stageRender(ctx context.Context, bs *BuildState) error {
	m := bs.Manifest
	social := socialLinks(m.Site.Social)

	for _, page := range bs.Pages {
		select {
		case <-ctx.Done():
			return canceledStageError(StageRender, ctx.Err())
		default:
		}

		body, err := markdown.ToHTML(page.source)
		if err != nil {
			return fatalStageError(StageRender, fmt.Errorf("render %s: %w", page.Doc.RelPath, err))
		}
		page.Content = template.HTML(body)
		page.Headings = tocHeadings(markdown.ExtractHeadings(page.source))

		out, err := executeLayout(pageData{
			Site:       m.Site,
			Nav:        bs.Nav,
			Social:     social,
			Page:       page,
			TabTitle:   tabTitle(m.Site.Title, page),
			LiveReload: bs.gen.liveReload,
			Generator:  version.Version,
		})
		if err != nil {
			return fatalStageError(StageRender, fmt.Errorf("layout for %s: %w", page.Doc.RelPath, err))
		}
		if err := bs.writeStaged(page.OutPath, out); err != nil {
			return fatalStageError(StageRender, err)
		}
		bs.Report.Pages++

		for _, alias := range page.Aliases {
			if err := writeRedirect(bs, alias, page); err != nil {
				return fatalStageError(StageRender, err)
			}
		}
	}

	if err := writeNotFound(bs, m.Site, social); err != nil {
		return fatalStageError(StageRender, err)
	}
	return nil
}

func executeLayout(data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tocHeadings keeps the section levels shown in the "on this page" sidebar.
// The level-one heading duplicates the page title and deeper levels only add
// noise.
func tocHeadings(all []markdown.Heading) []markdown.Heading {
	var toc []markdown.Heading
	for _, h := range all {
		if h.Level == 2 || h.Level == 3 {
			toc = append(toc, h)
		}
	}
	return toc
}

func tabTitle(siteTitle string, page *Page) string {
	if page.Doc != nil && page.Doc.IsIndex() {
		return siteTitle
	}
	return page.Title + " | " + siteTitle
}

// writeRedirect emits a meta-refresh stub at the alias location pointing at
// the page's canonical href. Alias paths are site-root relative, so the file
// lands at alias/index.html inside the output tree.
func writeRedirect(bs *BuildState, alias string, page *Page) error {
	rel := strings.Trim(alias, "/")
	if rel == "" {
		return fmt.Errorf("empty alias on %s", page.Doc.RelPath)
	}
	var buf bytes.Buffer
	err := redirectTemplate.Execute(&buf, struct {
		Target string
		Title  string
	}{Target: page.Href, Title: page.Title})
	if err != nil {
		return fmt.Errorf("redirect for %s: %w", alias, err)
	}
	return bs.writeStaged(rel+"/index.html", buf.Bytes())
}

// writeNotFound renders 404.html through the regular layout so a miss still
// shows the sidebar. Static hosts and the preview server both serve it.
func writeNotFound(bs *BuildState, site manifest.Site, social []SocialLink) error {
	page := &Page{
		Title:   "Page not found",
		OutPath: "404.html",
		Content: template.HTML(fmt.Sprintf(notFoundBody, site.BasePath)),
	}
	out, err := executeLayout(pageData{
		Site:      site,
		Nav:       bs.Nav,
		Social:    social,
		Page:      page,
		TabTitle:  page.Title + " | " + site.Title,
		Generator: version.Version,
	})
	if err != nil {
		return fmt.Errorf("layout for 404 page: %w", err)
	}
	return bs.writeStaged(page.OutPath, out)
}
