package metrics

import "time"

// ResultLabel enumerates reload result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for classification, tagging and
// configuration reloads. Implementations may forward to Prometheus.
type Recorder interface {
	ObserveClassificationDuration(d time.Duration)
	IncFilesTagged(impact string)
	IncPatternError(dialect string)
	IncReload(result ResultLabel)
	SetRepositoriesLoaded(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveClassificationDuration(time.Duration) {}
func (NoopRecorder) IncFilesTagged(string)                       {}
func (NoopRecorder) IncPatternError(string)                      {}
func (NoopRecorder) IncReload(ResultLabel)                       {}
func (NoopRecorder) SetRepositoriesLoaded(int)                   {}
