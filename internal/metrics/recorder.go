package metrics

import "time"

// OutcomeLabel enumerates build outcome categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeCanceled OutcomeLabel = "canceled"
)

// Recorder defines observability hooks for fetch, build and install metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe for nil receivers when using the NoopRecorder (allowing
// optional injection).
type Recorder interface {
	ObserveBuildDuration(pkg string, d time.Duration)
	ObserveStepDuration(pkg, step string, d time.Duration)
	IncBuildOutcome(pkg string, outcome OutcomeLabel)
	ObserveFetchDuration(repo string, d time.Duration, success bool)
	IncFetchResult(success bool)
	SetQueueDepth(n int)
	IncBuildRetry(pkg string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(string, time.Duration)        {}
func (NoopRecorder) ObserveStepDuration(string, string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string, OutcomeLabel)              {}
func (NoopRecorder) ObserveFetchDuration(string, time.Duration, bool)  {}
func (NoopRecorder) IncFetchResult(bool)                               {}
func (NoopRecorder) SetQueueDepth(int)                                 {}
func (NoopRecorder) IncBuildRetry(string)                              {}
