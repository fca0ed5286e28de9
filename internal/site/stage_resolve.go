package site

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/catalog"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/frontmatterops"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/gitmeta"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/logfields"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/markdown"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/util/sets"
)

// stageResolve turns the manifest and catalog into render-ready models: the
// sidebar with broken entries dropped, one Page per document with its
// cross-references rewritten to hrefs, and git lastmod stamps when the
// content lives in a repository.
func stageResolve(_ context.Context, bs *BuildState) error {
	m, c := bs.Manifest, bs.Catalog

	groupOf := make(map[string]string)
	var dropped []string
	for _, group := range m.Nav {
		ng := NavGroup{Title: group.Title, Collapsed: group.Collapsed}
		for _, item := range group.Items {
			if _, ok := c.ByPath(item.Path); !ok {
				bs.gen.log.Warn("dropping nav entry, document missing",
					logfields.Category(group.Title),
					slog.String("label", item.Label),
					logfields.Doc(item.Path))
				dropped = append(dropped, group.Title+" > "+item.Label)
				continue
			}
			ng.Items = append(ng.Items, NavItem{
				Label: item.Label,
				Href:  m.HrefFor(item.Path),
				Path:  item.Path,
			})
			if _, taken := groupOf[item.Path]; !taken {
				groupOf[item.Path] = group.Title
			}
		}
		if len(ng.Items) == 0 {
			bs.gen.log.Warn("nav group has no surviving entries", logfields.Category(group.Title))
			continue
		}
		bs.Nav = append(bs.Nav, ng)
	}
	bs.Report.NavGroups = len(bs.Nav)
	bs.Report.DroppedNav = dropped

	var histories *gitmeta.Collector
	if coll, err := gitmeta.Open(bs.ContentDir); err == nil {
		histories = coll
		if head, err := coll.Head(); err == nil {
			bs.Report.Commit = head.ShortHash
			bs.Report.Branch = head.Branch
		}
	} else {
		bs.gen.log.Debug("content is not in a git repository, skipping lastmod stamps",
			logfields.Error(err))
	}

	hrefByTitle := func(title string) (string, bool) {
		doc, ok := c.ByTitle(title)
		if !ok {
			return "", false
		}
		return m.HrefFor(doc.RelPath), true
	}

	for _, doc := range c.Documents {
		source, unresolved := markdown.ResolveCrossrefs(doc.Body, hrefByTitle)
		for _, ref := range unresolved {
			bs.gen.log.Warn("unresolved cross-reference",
				logfields.Doc(doc.RelPath),
				slog.String("title", ref.Title))
		}

		page := &Page{
			Doc:         doc,
			Title:       doc.Title,
			Description: doc.Description,
			Tags:        doc.Tags,
			Group:       groupOf[doc.RelPath],
			Href:        m.HrefFor(doc.RelPath),
			OutPath:     outPath(doc.RelPath),
			Aliases:     pageAliases(doc),
			source:      source,
		}
		if histories != nil {
			if info, err := histories.DocInfo(doc.AbsPath); err == nil {
				page.LastMod = info.When
			}
		}
		bs.Pages = append(bs.Pages, page)
	}

	if len(dropped) > 0 {
		return warnStageError(StageResolve, fmt.Errorf("dropped broken nav entries: %d", len(dropped)))
	}
	return nil
}

// outPath maps a content-relative markdown path to its output file, the
// file-level mirror of Manifest.HrefFor.
func outPath(relPath string) string {
	p := strings.TrimSuffix(filepath.ToSlash(relPath), ".md")
	if p == "index" {
		return "index.html"
	}
	p = strings.TrimSuffix(p, "/index")
	return p + "/index.html"
}

// pageAliases collects the redirect paths of a document: the uid permalink
// first, then any frontmatter aliases not already covered.
func pageAliases(doc *catalog.Document) []string {
	seen := sets.New[string]()
	var aliases []string
	if uid, ok := doc.Meta[frontmatterops.UIDField].(string); ok && uid != "" {
		alias := frontmatterops.UIDAlias(uid)
		seen.Add(alias)
		aliases = append(aliases, alias)
	}
	for _, alias := range frontmatterops.Aliases(doc.Meta) {
		if alias == "" || seen.Has(alias) {
			continue
		}
		seen.Add(alias)
		aliases = append(aliases, alias)
	}
	return aliases
}
