package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BuildOutcome is the final result state of a build.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// BuildReport captures what one site generation run did. It is persisted
// into the output directory as build-report.json plus a one-line summary.
type BuildReport struct {
	BuildID   string
	Trigger   string
	Start     time.Time
	End       time.Time
	Documents int
	Pages     int
	NavGroups int
	// DroppedNav lists sidebar entries skipped because their document is
	// missing.
	DroppedNav   []string
	LintErrors   int
	LintWarnings int
	Commit       string
	Branch       string

	Errors         []string
	Warnings       []string
	StageDurations map[StageName]time.Duration
	StageKinds     map[StageName]StageErrorKind
	Outcome        BuildOutcome

	canceled bool
}

func newBuildReport(buildID, trigger string) *BuildReport {
	return &BuildReport{
		BuildID:        buildID,
		Trigger:        trigger,
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
		StageKinds:     make(map[StageName]StageErrorKind),
	}
}

func (r *BuildReport) recordStageError(se *StageError) {
	r.StageKinds[se.Stage] = se.Kind
	switch se.Kind {
	case StageErrorWarning:
		r.Warnings = append(r.Warnings, se.Error())
	case StageErrorCanceled:
		r.canceled = true
		r.Errors = append(r.Errors, se.Error())
	default:
		r.Errors = append(r.Errors, se.Error())
	}
}

func (r *BuildReport) finish() {
	r.End = time.Now()
	r.deriveOutcome()
}

func (r *BuildReport) deriveOutcome() {
	switch {
	case r.canceled:
		r.Outcome = OutcomeCanceled
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Duration returns the wall time of the build.
func (r *BuildReport) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a single human-readable line.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("docs=%d pages=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.Documents, r.Pages, r.Duration().Truncate(time.Millisecond),
		len(r.Errors), len(r.Warnings), r.Outcome)
}

// reportJSON is the serialized shape of a BuildReport. Durations flatten to
// milliseconds so consumers do not deal in nanosecond ints.
type reportJSON struct {
	BuildID      string    `json:"build_id"`
	Trigger      string    `json:"trigger"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	DurationMS   int64     `json:"duration_ms"`
	Documents    int       `json:"documents"`
	Pages        int       `json:"pages"`
	NavGroups    int       `json:"nav_groups"`
	DroppedNav   []string  `json:"dropped_nav,omitempty"`
	LintErrors   int       `json:"lint_errors"`
	LintWarnings int       `json:"lint_warnings"`
	Commit       string    `json:"commit,omitempty"`
	Branch       string    `json:"branch,omitempty"`

	Errors     []string          `json:"errors,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
	StageMS    map[string]int64  `json:"stage_ms"`
	StageKinds map[string]string `json:"stage_error_kinds,omitempty"`
	Outcome    BuildOutcome      `json:"outcome"`
}

func (r *BuildReport) serializable() reportJSON {
	stageMS := make(map[string]int64, len(r.StageDurations))
	for name, d := range r.StageDurations {
		stageMS[string(name)] = d.Milliseconds()
	}
	kinds := make(map[string]string, len(r.StageKinds))
	for name, kind := range r.StageKinds {
		kinds[string(name)] = string(kind)
	}
	return reportJSON{
		BuildID:      r.BuildID,
		Trigger:      r.Trigger,
		Start:        r.Start,
		End:          r.End,
		DurationMS:   r.Duration().Milliseconds(),
		Documents:    r.Documents,
		Pages:        r.Pages,
		NavGroups:    r.NavGroups,
		DroppedNav:   r.DroppedNav,
		LintErrors:   r.LintErrors,
		LintWarnings: r.LintWarnings,
		Commit:       r.Commit,
		Branch:       r.Branch,
		Errors:       r.Errors,
		Warnings:     r.Warnings,
		StageMS:      stageMS,
		StageKinds:   kinds,
		Outcome:      r.Outcome,
	}
}

// Persist writes the report atomically into root as build-report.json and
// build-report.txt. Best effort; failures are for the caller to log.
func (r *BuildReport) Persist(root string) error {
	if r.End.IsZero() {
		r.finish()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("ensure report dir: %w", err)
	}

	data, err := json.MarshalIndent(r.serializable(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := writeAtomic(filepath.Join(root, "build-report.json"), append(data, '\n')); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(root, "build-report.txt"), []byte(r.Summary()+"\n"))
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("promote %s: %w", path, err)
	}
	return nil
}
