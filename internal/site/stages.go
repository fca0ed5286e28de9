package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/catalog"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/lint"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/metrics"
)

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StagePrepare  StageName = "prepare_output"
	StageDiscover StageName = "discover"
	StageLint     StageName = "lint"
	StageResolve  StageName = "resolve"
	StageRender   StageName = "render"
	StageSearch   StageName = "search_index"
	StageSitemap  StageName = "sitemap"
	StageAssets   StageName = "assets"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind classifies stage failures.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // build must abort
	StageErrorWarning  StageErrorKind = "warning"  // record and continue
	StageErrorCanceled StageErrorKind = "canceled" // context cancellation
)

// StageError is a structured error carrying its classification.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func fatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func warnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func canceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// stageDef pairs a stage name with its executing function.
type stageDef struct {
	name StageName
	fn   Stage
}

// BuildState carries mutable state across stages of one build.
type BuildState struct {
	Manifest   *manifest.Manifest
	ContentDir string
	Catalog    *catalog.Catalog
	Lint       *lint.Result
	Nav        []NavGroup
	Pages      []*Page
	Report     *BuildReport

	// root is the staging directory all stages write into.
	root string
	gen  *Generator
}

// runStages executes stages in order, timing each and stopping on the first
// fatal or canceled error. Warning errors are recorded and skipped past.
func runStages(ctx context.Context, bs *BuildState, stages []stageDef) error {
	report := bs.Report
	rec := bs.gen.recorder

	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := canceledStageError(st.name, ctx.Err())
			report.recordStageError(se)
			rec.IncStageResult(string(st.name), metrics.ResultCanceled)
			return se
		default:
		}

		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		report.StageDurations[st.name] = dur
		rec.ObserveStageDuration(string(st.name), dur)

		if err == nil {
			rec.IncStageResult(string(st.name), metrics.ResultSuccess)
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			se = fatalStageError(st.name, err)
		}
		report.recordStageError(se)

		switch se.Kind {
		case StageErrorWarning:
			rec.IncStageResult(string(st.name), metrics.ResultWarning)
			continue
		case StageErrorCanceled:
			rec.IncStageResult(string(st.name), metrics.ResultCanceled)
			return se
		default:
			rec.IncStageResult(string(st.name), metrics.ResultFatal)
			return se
		}
	}
	return nil
}
