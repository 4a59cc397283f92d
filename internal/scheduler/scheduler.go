// Package scheduler runs periodic background jobs under a single tomb so
// that shutdown can stop all of them and wait for the one in flight.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"
)

// Job is a named task run every Interval. The first run happens one
// interval after Start.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler supervises a fixed set of jobs.
type Scheduler struct {
	jobs []Job
	log  zerolog.Logger

	mu      sync.Mutex
	t       *tomb.Tomb
	started bool
}

// New returns a scheduler for jobs. Jobs with a non-positive interval or a
// nil Run are skipped.
func New(logger zerolog.Logger, jobs ...Job) *Scheduler {
	s := &Scheduler{log: logger.With().Str("component", "scheduler").Logger()}
	for _, j := range jobs {
		if j.Interval <= 0 || j.Run == nil {
			s.log.Info().Str("job", j.Name).Msg("job disabled")
			continue
		}
		s.jobs = append(s.jobs, j)
	}
	return s
}

// Jobs returns the names of the enabled jobs.
func (s *Scheduler) Jobs() []string {
	out := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		out[i] = j.Name
	}
	return out
}

// Start launches every job. It is a no-op when already started.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || len(s.jobs) == 0 {
		return
	}
	t, tctx := tomb.WithContext(ctx)
	for _, j := range s.jobs {
		t.Go(func() error { return s.loop(tctx, j) })
	}
	s.t = t
	s.started = true
	s.log.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
}

// Stop kills the tomb and waits for running jobs to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	t := s.t
	s.t, s.started = nil, false
	s.mu.Unlock()
	if t == nil {
		return nil
	}
	t.Kill(nil)
	err := t.Wait()
	s.log.Info().Msg("scheduler stopped")
	return err
}

func (s *Scheduler) loop(ctx context.Context, j Job) error {
	tk := time.NewTicker(j.Interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tk.C:
			s.RunOnce(ctx, j)
		}
	}
}

// RunOnce executes j, logging its outcome. Errors and panics never escape.
func (s *Scheduler) RunOnce(ctx context.Context, j Job) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.Name, r)
		}
		ev := s.log.Debug()
		if err != nil {
			ev = s.log.Error().Err(err)
		}
		ev.Str("job", j.Name).Dur("took", time.Since(start)).Msg("job run")
	}()
	return j.Run(ctx)
}
