// Package catalog discovers the markdown documents of a pattern catalog and
// indexes them by path and by title.
package catalog

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/frontmatter"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/markdown"
)

// IndexPath is the landing page, exempt from orphan checks.
const IndexPath = "index.md"

// Document is one markdown source file with its parsed frontmatter.
type Document struct {
	// RelPath is slash-separated and relative to the content dir.
	RelPath string
	AbsPath string

	// Title comes from frontmatter, then the first level-one heading,
	// then the filename.
	Title       string
	Description string
	Tags        []string

	// Meta is the full parsed frontmatter mapping.
	Meta map[string]any
	// Body is the markdown source without the frontmatter block.
	Body []byte
	// BodyLineOffset is how many file lines precede the body, so positions
	// reported against Body can be mapped back to the file.
	BodyLineOffset int

	HadFrontmatter bool
	Style          frontmatter.Style
}

// IsIndex reports whether this is the landing page.
func (d *Document) IsIndex() bool { return d.RelPath == IndexPath }

// Catalog is the discovered document set with lookup indexes.
type Catalog struct {
	// Dir is the absolute content root.
	Dir       string
	Documents []*Document

	byPath  map[string]*Document
	byTitle map[string]*Document
	// titleConflicts maps a title claimed by several documents to their
	// paths, in discovery order.
	titleConflicts map[string][]string
}

var titleCaser = cases.Title(language.English)

// Discover walks dir and loads every markdown document beneath it.
// Dot-directories and underscore-prefixed directories are skipped.
func Discover(dir string) (*Catalog, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve content dir: %w", err)
	}

	var docs []*Document
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		doc, err := load(path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("discover documents in %s: %w", dir, walkErr)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].RelPath < docs[j].RelPath })

	c := &Catalog{
		Dir:            root,
		Documents:      docs,
		byPath:         make(map[string]*Document, len(docs)),
		byTitle:        make(map[string]*Document, len(docs)),
		titleConflicts: make(map[string][]string),
	}
	for _, doc := range docs {
		c.byPath[doc.RelPath] = doc
		if doc.Title == "" {
			continue
		}
		if first, taken := c.byTitle[doc.Title]; taken {
			if len(c.titleConflicts[doc.Title]) == 0 {
				c.titleConflicts[doc.Title] = []string{first.RelPath}
			}
			c.titleConflicts[doc.Title] = append(c.titleConflicts[doc.Title], doc.RelPath)
			continue
		}
		c.byTitle[doc.Title] = doc
	}
	return c, nil
}

func load(absPath, relPath string) (*Document, error) {
	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}

	fm, body, had, style, err := frontmatter.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("split frontmatter of %s: %w", relPath, err)
	}
	meta, err := frontmatter.ParseMap(fm)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter of %s: %w", relPath, err)
	}

	doc := &Document{
		RelPath:        relPath,
		AbsPath:        absPath,
		Meta:           meta,
		Body:           body,
		HadFrontmatter: had,
		Style:          style,
	}
	if had {
		doc.BodyLineOffset = 2 + bytes.Count(fm, []byte("\n"))
	}
	doc.Title = resolveTitle(meta, body, relPath)
	if desc, ok := meta["description"].(string); ok {
		doc.Description = desc
	}
	doc.Tags = stringSlice(meta["tags"])
	return doc, nil
}

func resolveTitle(meta map[string]any, body []byte, relPath string) string {
	if t, ok := meta["title"].(string); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	if t, ok := markdown.Title(body); ok {
		return t
	}
	base := strings.TrimSuffix(filepath.Base(relPath), ".md")
	return titleCaser.String(strings.NewReplacer("-", " ", "_", " ").Replace(base))
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ByPath looks a document up by its content-relative path.
func (c *Catalog) ByPath(relPath string) (*Document, bool) {
	doc, ok := c.byPath[filepath.ToSlash(relPath)]
	return doc, ok
}

// ByTitle looks a document up by exact title. When several documents claim
// the same title the first in path order wins; TitleConflicts reports the
// collision.
func (c *Catalog) ByTitle(title string) (*Document, bool) {
	doc, ok := c.byTitle[title]
	return doc, ok
}

// TitleConflicts returns titles claimed by more than one document.
func (c *Catalog) TitleConflicts() map[string][]string {
	return c.titleConflicts
}

// Len returns the number of discovered documents.
func (c *Catalog) Len() int { return len(c.Documents) }
