package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const DefaultRefreshInterval = 30 * time.Second

// Scheduler triggers a refresh immediately and then on every tick. Ticks do
// not wait for the previous cycle; Stop cancels the loop and any cycle it
// started.
type Scheduler struct {
	interval time.Duration
	run      func(ctx context.Context) error
	logger   zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running sync.WaitGroup
}

func NewScheduler(interval time.Duration, run func(ctx context.Context) error, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Scheduler{
		interval: interval,
		run:      run,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.logger.Info().Dur("interval", s.interval).Msg("polling started")
	s.trigger(ctx)

	s.running.Add(1)
	go func() {
		defer s.running.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.trigger(ctx)
			}
		}
	}()
}

// Stop is idempotent and returns once the loop and its cycles have exited.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.running.Wait()
}

func (s *Scheduler) trigger(ctx context.Context) {
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		if err := s.run(ctx); err != nil {
			s.logger.Debug().Err(err).Msg("scheduled refresh failed")
		}
	}()
}
