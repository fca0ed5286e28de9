package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/events"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/logfields"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/site"
)

// BuildCmd renders the catalog into the output directory.
type BuildCmd struct {
	Strict bool `help:"Exit nonzero when the build finishes with warnings"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m, err := manifest.Load(root.Manifest)
	if err != nil {
		return err
	}

	gen := site.New(root.Manifest)

	// Journal the build so `patterns serve` can show it in /api/builds.
	journal, err := events.OpenJournal(resolveAgainstManifest(root.Manifest, m.Events.Path))
	if err != nil {
		slog.Warn("event journal unavailable, building without history", logfields.Error(err))
	} else {
		defer func() {
			_ = journal.Close()
		}()
		gen.SetBus(events.NewJournaledBus(journal, slog.Default()))
	}

	report, err := gen.Build(ctx, "cli")
	if report != nil {
		fmt.Println(report.Summary())
	}
	if err != nil {
		return err
	}
	if b.Strict && report.Outcome == site.OutcomeWarning {
		return errors.New("build finished with warnings (strict mode)")
	}
	return nil
}
