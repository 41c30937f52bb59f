package structure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerPeriodicReload(t *testing.T) {
	r := &stubReloader{}
	s, err := NewScheduler(r, quietLogger())
	require.NoError(t, err)

	id, err := s.SchedulePeriodicReload(50 * time.Millisecond)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	s.Start(t.Context())
	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 3*time.Second, 20*time.Millisecond)
	require.NoError(t, s.Stop(t.Context()))
}

func TestSchedulerRejectsNonPositiveInterval(t *testing.T) {
	s, err := NewScheduler(&stubReloader{}, nil)
	require.NoError(t, err)
	_, err = s.SchedulePeriodicReload(0)
	require.Error(t, err)
}
