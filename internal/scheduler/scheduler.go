package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
)

// TickHandler is the periodic entry point driven by the scheduler.
// It reports false when the tick was dropped because a previous run is
// still in flight.
type TickHandler interface {
	OnTick(ctx context.Context) (bool, error)
}

type TickHandlerFunc func(ctx context.Context) (bool, error)

func (f TickHandlerFunc) OnTick(ctx context.Context) (bool, error) {
	return f(ctx)
}

// Scheduler fires a TickHandler on a fixed interval. Every tick runs in its
// own goroutine, so a slow run never delays the clock and overlap handling
// is left to the handler.
type Scheduler struct {
	name     string
	interval time.Duration
	handler  TickHandler
	runFirst bool

	closing    *atomic.Bool
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithImmediateRun fires the first tick as soon as the scheduler starts.
func WithImmediateRun() Option {
	return func(s *Scheduler) { s.runFirst = true }
}

func New(name string, interval time.Duration, handler TickHandler, opts ...Option) *Scheduler {
	s := &Scheduler{
		name:       name,
		interval:   interval,
		handler:    handler,
		closing:    atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until ctx is cancelled or Shutdown is called, then waits for
// in-flight ticks to return.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		log.Warn().Str("scheduler", s.name).Msg("Scheduler disabled: non-positive interval")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().
		Str("scheduler", s.name).
		Dur("interval", s.interval).
		Msg("Scheduler started")

	if s.runFirst {
		s.fire(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			log.Info().Str("scheduler", s.name).Msg("Scheduler stopped")
			return
		case <-s.shutdownCh:
			cancel()
		case <-ticker.C:
			s.fire(ctx)
		}
	}
}

// Shutdown stops the loop. Safe to call more than once.
func (s *Scheduler) Shutdown() {
	if s.closing.CAS(false, true) {
		close(s.shutdownCh)
	}
}

func (s *Scheduler) fire(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ran, err := s.handler.OnTick(ctx)
		if err != nil {
			log.Error().Err(err).Str("scheduler", s.name).Msg("Scheduled run failed")
			return
		}
		if !ran {
			log.Debug().Str("scheduler", s.name).Msg("Tick skipped")
		}
	}()
}
