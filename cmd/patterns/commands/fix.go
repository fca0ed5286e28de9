package commands

import (
	"fmt"
	"strings"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/catalog"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/lint"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
)

// FixCmd normalizes document frontmatter across the catalog.
type FixCmd struct {
	DryRun bool `help:"Show what would change without writing files"`
}

func (f *FixCmd) Run(_ *Global, root *CLI) error {
	m, err := manifest.Load(root.Manifest)
	if err != nil {
		return err
	}

	contentDir := resolveAgainstManifest(root.Manifest, m.Content.Dir)
	cat, err := catalog.Discover(contentDir)
	if err != nil {
		return err
	}

	result, err := lint.NewFixer(f.DryRun).Apply(cat)
	if err != nil {
		return err
	}

	for _, change := range result.Changes {
		fmt.Printf("%s: %s\n", change.Path, strings.Join(change.Actions, ", "))
	}

	switch {
	case result.FilesChanged == 0:
		fmt.Println("All documents are already normalized.")
	case f.DryRun:
		fmt.Printf("%d of %d documents would change.\n", result.FilesChanged, result.FilesScanned)
	default:
		fmt.Printf("Fixed %d of %d documents.\n", result.FilesChanged, result.FilesScanned)
	}
	return nil
}
