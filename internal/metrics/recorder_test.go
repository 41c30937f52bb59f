package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testRecorder struct {
	classifications int
	tagged          map[string]int
	patternErrors   map[string]int
	reloads         map[ResultLabel]int
	repos           int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{tagged: map[string]int{}, patternErrors: map[string]int{}, reloads: map[ResultLabel]int{}}
}

func (t *testRecorder) ObserveClassificationDuration(time.Duration) { t.classifications++ }
func (t *testRecorder) IncFilesTagged(impact string)                { t.tagged[impact]++ }
func (t *testRecorder) IncPatternError(dialect string)              { t.patternErrors[dialect]++ }
func (t *testRecorder) IncReload(result ResultLabel)                { t.reloads[result]++ }
func (t *testRecorder) SetRepositoriesLoaded(n int)                 { t.repos = n }

func TestRecorderInterfaceSatisfied(t *testing.T) {
	var _ Recorder = NoopRecorder{}
	var _ Recorder = (*PrometheusRecorder)(nil)

	var r Recorder = newTestRecorder()
	r.IncFilesTagged("high")
	r.IncFilesTagged("high")
	r.IncReload(ResultSuccess)
	r.SetRepositoriesLoaded(7)

	tr := r.(*testRecorder)
	require.Equal(t, 2, tr.tagged["high"])
	require.Equal(t, 1, tr.reloads[ResultSuccess])
	require.Equal(t, 7, tr.repos)
}
