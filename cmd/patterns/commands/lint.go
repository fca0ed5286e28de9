package commands

import (
	"errors"
	"os"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/catalog"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/lint"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
)

// LintCmd checks catalog integrity without rendering anything.
type LintCmd struct {
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet  bool   `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
	Strict bool   `help:"Exit nonzero on warnings as well as errors"`
}

func (l *LintCmd) Run(_ *Global, root *CLI) error {
	m, err := manifest.Load(root.Manifest)
	if err != nil {
		return err
	}

	contentDir := resolveAgainstManifest(root.Manifest, m.Content.Dir)
	cat, err := catalog.Discover(contentDir)
	if err != nil {
		return err
	}

	linter := lint.New(&lint.Config{Quiet: l.Quiet, Format: l.Format})
	result := linter.Run(&lint.Context{
		ManifestPath: root.Manifest,
		Manifest:     m,
		Catalog:      cat,
	})

	if err := lint.NewFormatter(l.Format).Format(os.Stdout, result, contentDir); err != nil {
		return err
	}

	if result.HasErrors() {
		return errors.New("catalog has lint errors")
	}
	if l.Strict && result.HasWarnings() {
		return errors.New("catalog has lint warnings (strict mode)")
	}
	return nil
}
