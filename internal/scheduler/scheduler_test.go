package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJobsUntilStopped(t *testing.T) {
	var ticks, failures atomic.Int32
	s := New(zerolog.Nop(),
		Job{Name: "tick", Interval: 10 * time.Millisecond, Run: func(context.Context) error {
			ticks.Add(1)
			return nil
		}},
		Job{Name: "flaky", Interval: 10 * time.Millisecond, Run: func(context.Context) error {
			failures.Add(1)
			return errors.New("boom")
		}},
		Job{Name: "off", Interval: 0, Run: func(context.Context) error { return nil }},
	)
	assert.Equal(t, []string{"tick", "flaky"}, s.Jobs())

	s.Start(context.Background())
	s.Start(context.Background())

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 && failures.Load() >= 3 },
		2*time.Second, 5*time.Millisecond, "failing job must not stop the loop")

	require.NoError(t, s.Stop())
	after := ticks.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, after, ticks.Load())
	require.NoError(t, s.Stop())
}

func TestScheduler_StopWaitsForRunningJob(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool
	s := New(zerolog.Nop(), Job{Name: "slow", Interval: 5 * time.Millisecond, Run: func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return ctx.Err()
	}})
	s.Start(context.Background())
	<-started

	require.NoError(t, s.Stop())
	assert.True(t, finished.Load())
}

func TestScheduler_RunOnceRecoversPanic(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.RunOnce(context.Background(), Job{Name: "bad", Run: func(context.Context) error { panic("nil map") }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	// no jobs: Start and Stop are no-ops
	s.Start(context.Background())
	assert.NoError(t, s.Stop())
}
