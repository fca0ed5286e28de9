package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder on a Prometheus registry.
type PrometheusRecorder struct {
	stageDuration     *prom.HistogramVec
	buildDuration     prom.Histogram
	stageResults      *prom.CounterVec
	buildOutcome      *prom.CounterVec
	pagesBuilt        prom.Gauge
	lintIssues        *prom.CounterVec
	linkCheckDuration *prom.HistogramVec
	verifyConcurrency prom.Gauge
}

// NewPrometheusRecorder constructs and registers the builder metrics under
// the given namespace.
func NewPrometheusRecorder(reg *prom.Registry, namespace string) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	if namespace == "" {
		namespace = "patterns"
	}

	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		pagesBuilt: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pages_built",
			Help:      "Pages written by the most recent build",
		}),
		lintIssues: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "lint_issues_total",
			Help:      "Lint issues found, by severity",
		}, []string{"severity"}),
		linkCheckDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "linkcheck_duration_seconds",
			Help:      "Duration of external link checks",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		verifyConcurrency: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "verify_concurrency",
			Help:      "Configured link verification concurrency",
		}),
	}
	reg.MustRegister(
		pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.pagesBuilt, pr.lintIssues, pr.linkCheckDuration, pr.verifyConcurrency,
	)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetPagesBuilt(n int) {
	if p == nil || p.pagesBuilt == nil {
		return
	}
	p.pagesBuilt.Set(float64(n))
}

func (p *PrometheusRecorder) AddLintIssues(severity string, n int) {
	if p == nil || p.lintIssues == nil {
		return
	}
	p.lintIssues.WithLabelValues(severity).Add(float64(n))
}

func (p *PrometheusRecorder) ObserveLinkCheck(d time.Duration, result string) {
	if p == nil || p.linkCheckDuration == nil {
		return
	}
	p.linkCheckDuration.WithLabelValues(result).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetVerifyConcurrency(n int) {
	if p == nil || p.verifyConcurrency == nil {
		return
	}
	p.verifyConcurrency.Set(float64(n))
}
