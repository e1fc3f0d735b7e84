package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler runs one dispatch pass per interval on a single goroutine.
// Ticks are single-flight: the pass runs synchronously on the loop, so a
// pass that overruns the interval causes the missed ticker fires to be
// dropped rather than overlapped.
//
// One pass runs immediately on Start; recurring passes are aligned to
// wall-clock interval boundaries, so the default 60s cadence fires at
// :00 of each minute regardless of when the process came up.
type Scheduler struct {
	interval time.Duration
	tickFn   func(context.Context)

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(interval time.Duration, tickFn func(context.Context)) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if tickFn == nil {
		return nil, errors.New("tickFn must not be nil")
	}
	return &Scheduler{
		interval: interval,
		tickFn:   tickFn,
		done:     make(chan struct{}),
	}, nil
}

func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	go func() {
		defer close(s.done)

		slog.Info("dispatch scheduler started", "interval", s.interval.String())

		s.safeTick(ctx)

		align := time.NewTimer(alignDelay(time.Now(), s.interval))
		select {
		case <-ctx.Done():
			align.Stop()
			slog.Info("dispatch scheduler stopping")
			return
		case <-align.C:
			s.safeTick(ctx)
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("dispatch scheduler stopping")
				return
			case <-ticker.C:
				s.safeTick(ctx)
			}
		}
	}()

	return true
}

func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	slog.Info("dispatch scheduler stopped")
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// alignDelay is the wait from now until the next interval boundary on
// the wall clock. Truncate rounds against the absolute zero time, so a
// 60s interval yields minute boundaries.
func alignDelay(now time.Time, interval time.Duration) time.Duration {
	return now.Truncate(interval).Add(interval).Sub(now)
}

// safeTick keeps a panicking pass from killing the loop; the scheduler
// must keep ticking across every failure kind.
func (s *Scheduler) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("dispatch tick panic recovered", "panic", r)
		}
	}()

	start := time.Now()
	s.tickFn(ctx)
	slog.Info("dispatch tick completed", "duration_ms", time.Since(start).Milliseconds())
}
