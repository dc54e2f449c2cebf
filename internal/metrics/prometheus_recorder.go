package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	buildDuration *prom.HistogramVec
	stepDuration  *prom.HistogramVec
	buildOutcome  *prom.CounterVec
	fetchDuration *prom.HistogramVec
	fetchResults  *prom.CounterVec
	queueDepth    prom.Gauge
	retries       *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.buildDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pkgbuilder",
			Name:      "build_duration_seconds",
			Help:      "Total duration of package builds",
			Buckets:   prom.DefBuckets,
		}, []string{"package"})
		pr.stepDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pkgbuilder",
			Name:      "step_duration_seconds",
			Help:      "Duration of individual recipe build steps",
			Buckets:   prom.DefBuckets,
		}, []string{"package", "step"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pkgbuilder",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"package", "outcome"})
		pr.fetchDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pkgbuilder",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of repository clone and update operations",
			Buckets:   prom.DefBuckets,
		}, []string{"repo", "result"})
		pr.fetchResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pkgbuilder",
			Name:      "fetch_results_total",
			Help:      "Fetch results by success/failure",
		}, []string{"result"})
		pr.queueDepth = prom.NewGauge(prom.GaugeOpts{
			Namespace: "pkgbuilder",
			Name:      "queue_depth",
			Help:      "Number of builds waiting in the daemon queue",
		})
		pr.retries = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pkgbuilder",
			Name:      "build_retries_total",
			Help:      "Total fetch retries (transient failures)",
		}, []string{"package"})
		reg.MustRegister(pr.buildDuration, pr.stepDuration, pr.buildOutcome, pr.fetchDuration, pr.fetchResults, pr.queueDepth, pr.retries)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(pkg string, d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.WithLabelValues(pkg).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveStepDuration(pkg, step string, d time.Duration) {
	if p == nil || p.stepDuration == nil {
		return
	}
	p.stepDuration.WithLabelValues(pkg, step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(pkg string, outcome OutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(pkg, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveFetchDuration(repo string, d time.Duration, success bool) {
	if p == nil || p.fetchDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.fetchDuration.WithLabelValues(repo, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFetchResult(success bool) {
	if p == nil || p.fetchResults == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.fetchResults.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) SetQueueDepth(n int) {
	if p == nil || p.queueDepth == nil {
		return
	}
	p.queueDepth.Set(float64(n))
}

func (p *PrometheusRecorder) IncBuildRetry(pkg string) {
	if p == nil || p.retries == nil {
		return
	}
	p.retries.WithLabelValues(pkg).Inc()
}
