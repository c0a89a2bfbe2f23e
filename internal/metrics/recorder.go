package metrics

import "time"

// ResultLabel enumerates download result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Outcome labels for IncRunOutcome.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// Recorder defines the pipeline's observability hooks.
type Recorder interface {
	AddLinksFound(n int)
	ObserveDownload(d time.Duration, result ResultLabel)
	IncDocumentsRewritten()
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome string) // success|partial|failed
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) AddLinksFound(int)                          {}
func (NoopRecorder) ObserveDownload(time.Duration, ResultLabel) {}
func (NoopRecorder) IncDocumentsRewritten()                     {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncRunOutcome(string)                       {}
