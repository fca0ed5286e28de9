// Package metrics defines the observability hooks of the site builder.
package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder receives build, lint, and verification measurements.
// Implementations must tolerate nil receivers so injection stays optional.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // success|warning|failed|canceled
	SetPagesBuilt(n int)
	AddLintIssues(severity string, n int)
	ObserveLinkCheck(d time.Duration, result string) // ok|broken|cached
	SetVerifyConcurrency(n int)
}

// NoopRecorder is the Recorder used when metrics are disabled.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) SetPagesBuilt(int)                          {}
func (NoopRecorder) AddLintIssues(string, int)                  {}
func (NoopRecorder) ObserveLinkCheck(time.Duration, string)     {}
func (NoopRecorder) SetVerifyConcurrency(int)                   {}
