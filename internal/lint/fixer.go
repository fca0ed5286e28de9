package lint

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/catalog"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/frontmatterops"
)

// FixChange records what the fixer did to one document.
type FixChange struct {
	Path    string
	Actions []string
}

// FixResult summarizes a fix run.
type FixResult struct {
	FilesScanned int
	FilesChanged int
	Changes      []FixChange
}

// Fixer normalizes document frontmatter: every document gets a uid, a uid
// alias, and a fingerprint that matches its content.
type Fixer struct {
	// DryRun reports changes without writing them.
	DryRun bool

	// Now is swappable for tests.
	Now func() time.Time
}

// NewFixer creates a fixer.
func NewFixer(dryRun bool) *Fixer {
	return &Fixer{DryRun: dryRun, Now: time.Now}
}

// Apply runs the fixer over every document in the catalog. Files are
// rewritten in place, preserving their newline style.
func (f *Fixer) Apply(c *catalog.Catalog) (*FixResult, error) {
	result := &FixResult{FilesScanned: c.Len()}
	for _, doc := range c.Documents {
		change, err := f.fixDocument(doc)
		if err != nil {
			return result, fmt.Errorf("fix %s: %w", doc.RelPath, err)
		}
		if change == nil {
			continue
		}
		result.FilesChanged++
		result.Changes = append(result.Changes, *change)
	}
	return result, nil
}

func (f *Fixer) fixDocument(doc *catalog.Document) (*FixChange, error) {
	raw, err := os.ReadFile(doc.AbsPath)
	if err != nil {
		return nil, err
	}
	fields, body, had, style, err := frontmatterops.Read(raw)
	if err != nil {
		return nil, err
	}

	var actions []string

	uid, uidAdded, err := frontmatterops.EnsureUID(fields)
	if err != nil {
		return nil, err
	}
	if uidAdded {
		actions = append(actions, "added uid")
	}

	aliasAdded, err := frontmatterops.EnsureUIDAlias(fields, uid)
	if err != nil {
		return nil, err
	}
	if aliasAdded {
		actions = append(actions, "added uid alias")
	}

	_, fpChanged, err := frontmatterops.RefreshFingerprint(fields, body, f.Now())
	if err != nil {
		return nil, err
	}
	if fpChanged {
		actions = append(actions, "refreshed fingerprint and lastmod")
	}

	if len(actions) == 0 {
		return nil, nil
	}
	if f.DryRun {
		return &FixChange{Path: doc.RelPath, Actions: actions}, nil
	}

	out, err := frontmatterops.Write(fields, body, had, style)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(doc.AbsPath, out, fileMode(doc.AbsPath)); err != nil {
		return nil, err
	}
	return &FixChange{Path: doc.RelPath, Actions: actions}, nil
}

func fileMode(path string) fs.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
