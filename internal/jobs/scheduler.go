package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/diewo77/go-billing/internal/logger"
	"github.com/rs/zerolog"
)

var ErrRunInProgress = errors.New("run_in_progress")

// Scheduler runs its jobs in order, every interval. A job only runs when the
// ones before it succeeded.
type Scheduler struct {
	jobs     []Job
	interval time.Duration
	running  atomic.Bool
	log      zerolog.Logger
}

func NewScheduler(interval time.Duration, jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs, interval: interval, log: logger.WithComponent("scheduler")}
}

// RunOnce executes one run. It returns ErrRunInProgress when another run is
// still active.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	defer s.running.Store(false)

	for _, j := range s.jobs {
		start := time.Now()
		if err := j.Run(ctx); err != nil {
			return fmt.Errorf("%s: %w", j.Name(), err)
		}
		s.log.Debug().Str("job", j.Name()).Dur("took", time.Since(start)).Msg("job done")
	}
	return nil
}

// Start runs the jobs immediately and then on every tick until ctx is done.
// Ticks arriving during a run are skipped.
func (s *Scheduler) Start(ctx context.Context) {
	var wg sync.WaitGroup
	tick := func() {
		defer wg.Done()
		switch err := s.RunOnce(ctx); {
		case errors.Is(err, ErrRunInProgress):
			s.log.Warn().Msg("previous run still active, tick skipped")
		case err != nil:
			s.log.Error().Err(err).Msg("run failed")
		}
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.log.Info().Dur("interval", s.interval).Int("jobs", len(s.jobs)).Msg("scheduler started")

	wg.Add(1)
	go tick()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			s.log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			wg.Add(1)
			go tick()
		}
	}
}
