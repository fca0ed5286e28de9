// Package site renders a pattern catalog into a static HTML site: sidebar
// navigation from the manifest, one page per document with resolved
// cross-references, a search index, and a sitemap. Builds run as a staged
// pipeline writing into an isolated staging directory that is swapped into
// place only when every stage succeeded.
package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/events"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/logfields"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/metrics"
)

// Generator builds the static site described by a manifest.
type Generator struct {
	manifestPath string
	recorder     metrics.Recorder
	bus          *events.Bus
	log          *slog.Logger
	liveReload   bool

	outputDir string
	stageDir  string
}

// New creates a Generator for the manifest at path. The manifest is loaded
// fresh on every Build so watch-triggered rebuilds pick up edits to it.
func New(manifestPath string) *Generator {
	return &Generator{
		manifestPath: manifestPath,
		recorder:     metrics.NoopRecorder{},
		log:          slog.Default(),
	}
}

// SetRecorder wires a metrics recorder. Nil restores the noop recorder.
func (g *Generator) SetRecorder(r metrics.Recorder) *Generator {
	if r == nil {
		g.recorder = metrics.NoopRecorder{}
		return g
	}
	g.recorder = r
	return g
}

// SetBus wires the event bus builds publish to.
func (g *Generator) SetBus(b *events.Bus) *Generator {
	g.bus = b
	return g
}

// SetLiveReload controls whether pages embed the reload listener used by the
// preview server.
func (g *Generator) SetLiveReload(enabled bool) *Generator {
	g.liveReload = enabled
	return g
}

// OutputDir returns the output directory of the last build.
func (g *Generator) OutputDir() string { return g.outputDir }

// Build runs the full pipeline. trigger records what started the build
// (cli, watch, schedule). The report is returned even when the build fails.
func (g *Generator) Build(ctx context.Context, trigger string) (*BuildReport, error) {
	m, err := manifest.Load(g.manifestPath)
	if err != nil {
		return nil, err
	}
	baseDir := filepath.Dir(g.manifestPath)
	g.outputDir = resolvePath(baseDir, m.Build.OutputDir)

	report := newBuildReport(uuid.NewString(), trigger)
	bs := &BuildState{
		Manifest:   m,
		ContentDir: resolvePath(baseDir, m.Content.Dir),
		Report:     report,
		gen:        g,
	}

	g.log.Info("build started",
		logfields.BuildID(report.BuildID),
		slog.String("trigger", trigger),
		logfields.Path(g.outputDir))
	g.publish(ctx, report.BuildID, events.TypeBuildStarted, events.BuildStarted{Trigger: trigger})

	if err := g.beginStaging(); err != nil {
		return nil, err
	}
	bs.root = g.stageDir

	stages := []stageDef{
		{StagePrepare, stagePrepare},
		{StageDiscover, stageDiscover},
		{StageLint, stageLint},
		{StageResolve, stageResolve},
		{StageRender, stageRender},
		{StageSearch, stageSearchIndex},
		{StageSitemap, stageSitemap},
		{StageAssets, stageAssets},
	}

	if err := runStages(ctx, bs, stages); err != nil {
		g.abortStaging()
		report.finish()
		g.finishMetrics(report)

		var se *StageError
		stage := ""
		if errors.As(err, &se) {
			stage = string(se.Stage)
		}
		g.publish(ctx, report.BuildID, events.TypeBuildFailed, events.BuildFailed{
			Stage: stage,
			Error: err.Error(),
		})
		g.log.Error("build failed",
			logfields.BuildID(report.BuildID),
			logfields.Stage(stage),
			logfields.Error(err))
		return report, err
	}

	report.finish()
	if err := g.finalizeStaging(m.Build.Clean); err != nil {
		return report, fmt.Errorf("finalize staging: %w", err)
	}
	if err := report.Persist(g.outputDir); err != nil {
		g.log.Warn("persist build report failed", logfields.Error(err))
	}

	g.finishMetrics(report)
	g.recorder.SetPagesBuilt(report.Pages)
	g.publish(ctx, report.BuildID, events.TypeBuildCompleted, events.BuildCompleted{
		DurationMS: report.Duration().Milliseconds(),
		Pages:      report.Pages,
		Warnings:   len(report.Warnings),
	})

	g.log.Info("build completed",
		logfields.BuildID(report.BuildID),
		slog.Int("pages", report.Pages),
		slog.Int("warnings", len(report.Warnings)),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))
	return report, nil
}

func (g *Generator) finishMetrics(report *BuildReport) {
	g.recorder.ObserveBuildDuration(report.Duration())
	g.recorder.IncBuildOutcome(string(report.Outcome))
}

func (g *Generator) publish(ctx context.Context, buildID, eventType string, payload any) {
	if g.bus == nil {
		return
	}
	err := g.bus.Publish(ctx, events.Event{BuildID: buildID, Type: eventType, Payload: payload})
	if err != nil {
		g.log.Warn("publish event failed",
			slog.String("event", eventType),
			logfields.Error(err))
	}
}

// beginStaging creates the sibling staging directory builds write into.
func (g *Generator) beginStaging() error {
	stage := g.outputDir + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return fmt.Errorf("clear staging dir: %w", err)
	}
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	g.stageDir = stage
	return nil
}

// finalizeStaging promotes the staging directory to the output location.
// The previous output is parked as <output>.prev and, when clean is set,
// removed once the swap has succeeded.
func (g *Generator) finalizeStaging(clean bool) error {
	if g.stageDir == "" {
		return errors.New("no staging directory initialized")
	}

	prev := g.outputDir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return fmt.Errorf("remove previous backup: %w", err)
	}
	if _, err := os.Stat(g.outputDir); err == nil {
		if err := os.Rename(g.outputDir, prev); err != nil {
			return fmt.Errorf("back up existing output: %w", err)
		}
	}
	if err := os.Rename(g.stageDir, g.outputDir); err != nil {
		return fmt.Errorf("promote staging: %w", err)
	}
	g.stageDir = ""

	if clean {
		if err := os.RemoveAll(prev); err != nil {
			g.log.Warn("remove previous backup failed", logfields.Path(prev), logfields.Error(err))
		}
	}
	return nil
}

// abortStaging removes the staging directory after a failed build.
func (g *Generator) abortStaging() {
	if g.stageDir == "" {
		return
	}
	dir := g.stageDir
	g.stageDir = ""
	if err := os.RemoveAll(dir); err != nil {
		g.log.Warn("remove staging dir failed", logfields.Path(dir), logfields.Error(err))
	}
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// writeStaged writes a file at a staging-relative path, creating parents.
func (bs *BuildState) writeStaged(rel string, data []byte) error {
	path := filepath.Join(bs.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(rel), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
