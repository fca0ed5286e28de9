package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/catalog"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/events"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/lint"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/logfields"
)

func stagePrepare(_ context.Context, bs *BuildState) error {
	for _, dir := range []string{"assets"} {
		if err := os.MkdirAll(filepath.Join(bs.root, dir), 0o755); err != nil {
			return fatalStageError(StagePrepare, fmt.Errorf("create %s: %w", dir, err))
		}
	}
	return nil
}

func stageDiscover(_ context.Context, bs *BuildState) error {
	c, err := catalog.Discover(bs.ContentDir)
	if err != nil {
		return fatalStageError(StageDiscover, err)
	}
	bs.Catalog = c
	bs.Report.Documents = c.Len()
	if c.Len() == 0 {
		return warnStageError(StageDiscover, fmt.Errorf("no documents under %s", bs.ContentDir))
	}
	return nil
}

// stageLint gates the build on catalog integrity. Missing nav targets are
// the one error class that degrades instead of aborting: the resolve stage
// drops those sidebar entries with a warning.
func stageLint(ctx context.Context, bs *BuildState) error {
	result := lint.New(nil).Run(&lint.Context{
		ManifestPath: bs.gen.manifestPath,
		Manifest:     bs.Manifest,
		Catalog:      bs.Catalog,
	})
	bs.Lint = result
	bs.Report.LintErrors = result.ErrorCount()
	bs.Report.LintWarnings = result.WarningCount()

	rec := bs.gen.recorder
	rec.AddLintIssues("error", result.ErrorCount())
	rec.AddLintIssues("warning", result.WarningCount())
	rec.AddLintIssues("info", result.InfoCount())

	bs.gen.publish(ctx, bs.Report.BuildID, events.TypeLintCompleted, events.LintCompleted{
		Errors:   result.ErrorCount(),
		Warnings: result.WarningCount(),
		Infos:    result.InfoCount(),
	})

	navTarget := (&lint.NavTargetRule{}).Name()
	blocking := 0
	for _, issue := range result.Issues {
		if issue.Severity != lint.SeverityError || issue.Rule == navTarget {
			continue
		}
		blocking++
		bs.gen.log.Error("catalog integrity error",
			logfields.Rule(issue.Rule),
			logfields.Doc(issue.FilePath),
			slog.String("detail", issue.Message))
	}
	if blocking > 0 {
		return fatalStageError(StageLint, fmt.Errorf("%d integrity error(s), run: patterns lint", blocking))
	}
	if result.WarningCount() > 0 {
		return warnStageError(StageLint, fmt.Errorf("%d lint warning(s)", result.WarningCount()))
	}
	return nil
}
