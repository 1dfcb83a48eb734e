// Package sweeper periodically evicts links whose deadline has passed.
//
// Sweeping is cleanup only: redemption already refuses expired links, so a
// missed or failed sweep never changes what callers observe through Redeem.
package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/serroba/quotalink/internal/shortener"
	"go.uber.org/zap"
)

// DefaultInterval is used when a non-positive interval is configured.
const DefaultInterval = time.Minute

var errAlreadyStarted = errors.New("sweeper already started")

// Sweepable removes expired links.
type Sweepable interface {
	SweepExpired(ctx context.Context, now time.Time) ([]shortener.Link, error)
}

// OnSwept is called with the links removed by one run.
type OnSwept func(ctx context.Context, swept []shortener.Link)

// Sweeper runs SweepExpired on a fixed interval until shut down.
type Sweeper struct {
	store    Sweepable
	interval time.Duration
	now      shortener.Clock
	onSwept  OnSwept
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a new sweeper. onSwept may be nil.
func New(store Sweepable, interval time.Duration, onSwept OnSwept, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Sweeper{
		store:    store,
		interval: interval,
		now:      time.Now,
		onSwept:  onSwept,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Sweeper) WithClock(now shortener.Clock) *Sweeper {
	s.now = now

	return s
}

// Interval returns the configured sweep period.
func (s *Sweeper) Interval() time.Duration {
	return s.interval
}

// Start launches the background loop. It returns immediately.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.cancel != nil {
		return errAlreadyStarted
	}

	ctx, s.cancel = context.WithCancel(ctx)

	go s.loop(ctx)

	s.logger.Info("sweeper started", zap.Duration("interval", s.interval))

	return nil
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and returns how many links were removed.
// Failures are logged, never returned.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	swept, err := s.store.SweepExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("sweep failed", zap.Error(err))
	}

	if len(swept) == 0 {
		return 0
	}

	s.logger.Debug("swept expired links", zap.Int("count", len(swept)))

	if s.onSwept != nil {
		s.onSwept(ctx, swept)
	}

	return len(swept)
}

// Shutdown stops the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Shutdown() error {
	if s.cancel == nil {
		return nil
	}

	s.cancel()
	<-s.done

	s.logger.Info("sweeper stopped")

	return nil
}
