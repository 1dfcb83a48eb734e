package sweeper_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/serroba/quotalink/internal/shortener"
	"github.com/serroba/quotalink/internal/store"
	"github.com/serroba/quotalink/internal/sweeper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingStore struct {
	mu    sync.Mutex
	calls int
}

func (f *failingStore) SweepExpired(_ context.Context, _ time.Time) ([]shortener.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	return nil, errors.New("iteration failed")
}

func (f *failingStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func seedExpired(t *testing.T, s *store.MemoryStore, code shortener.Code, deadline time.Time) {
	t.Helper()

	err := s.Create(context.Background(), &shortener.Link{
		Code:      code,
		TargetURL: "https://example.com",
		OwnerID:   "owner",
		Deadline:  deadline,
		Quota:     1,
	})
	require.NoError(t, err)
}

func TestNew(t *testing.T) {
	t.Run("uses default interval when not positive", func(t *testing.T) {
		s := sweeper.New(store.NewMemoryStore(), 0, nil, zap.NewNop())

		assert.Equal(t, sweeper.DefaultInterval, s.Interval())
	})
}

func TestSweeper_RunOnce(t *testing.T) {
	t.Run("removes expired links and reports them", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		now := time.Now()
		seedExpired(t, memStore, "old", now.Add(-time.Minute))
		seedExpired(t, memStore, "new", now.Add(time.Minute))

		var reported []shortener.Link

		s := sweeper.New(memStore, time.Hour, func(_ context.Context, swept []shortener.Link) {
			reported = swept
		}, zap.NewNop()).WithClock(func() time.Time { return now })

		count := s.RunOnce(context.Background())

		assert.Equal(t, 1, count)
		require.Len(t, reported, 1)
		assert.Equal(t, shortener.Code("old"), reported[0].Code)
		assert.Equal(t, 1, memStore.Len())
	})

	t.Run("does not call back when nothing was swept", func(t *testing.T) {
		called := false
		s := sweeper.New(store.NewMemoryStore(), time.Hour, func(_ context.Context, _ []shortener.Link) {
			called = true
		}, zap.NewNop())

		count := s.RunOnce(context.Background())

		assert.Zero(t, count)
		assert.False(t, called)
	})

	t.Run("swallows store errors", func(t *testing.T) {
		failing := &failingStore{}
		s := sweeper.New(failing, time.Hour, nil, zap.NewNop())

		assert.NotPanics(t, func() {
			assert.Zero(t, s.RunOnce(context.Background()))
		})
		assert.Equal(t, 1, failing.Calls())
	})
}

func TestSweeper_Start(t *testing.T) {
	t.Run("sweeps on every tick", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		seedExpired(t, memStore, "old", time.Now().Add(-time.Minute))

		s := sweeper.New(memStore, 10*time.Millisecond, nil, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))

		assert.Eventually(t, func() bool {
			return memStore.Len() == 0
		}, time.Second, 5*time.Millisecond)

		require.NoError(t, s.Shutdown())
	})

	t.Run("keeps running after failures", func(t *testing.T) {
		failing := &failingStore{}
		s := sweeper.New(failing, 5*time.Millisecond, nil, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))

		assert.Eventually(t, func() bool {
			return failing.Calls() >= 3
		}, time.Second, 5*time.Millisecond)

		require.NoError(t, s.Shutdown())
	})

	t.Run("rejects a second start", func(t *testing.T) {
		s := sweeper.New(store.NewMemoryStore(), time.Hour, nil, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		assert.Error(t, s.Start(context.Background()))

		require.NoError(t, s.Shutdown())
	})
}

func TestSweeper_Shutdown(t *testing.T) {
	t.Run("is a no-op when never started", func(t *testing.T) {
		s := sweeper.New(store.NewMemoryStore(), time.Hour, nil, zap.NewNop())

		assert.NoError(t, s.Shutdown())
	})

	t.Run("stops when parent context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		s := sweeper.New(store.NewMemoryStore(), time.Hour, nil, zap.NewNop())

		require.NoError(t, s.Start(ctx))
		cancel()

		assert.NoError(t, s.Shutdown())
	})
}
