package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/quotalink/internal/ratelimit"
)

// pruneEvery is how many records pass between full scans for idle keys.
const pruneEvery = 4096

// RateLimitMemoryStore is an in-memory sliding window ratelimit.Store.
// Keys idle for longer than the widest window seen are dropped periodically.
type RateLimitMemoryStore struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	now       func() time.Time
	maxWindow time.Duration
	records   int
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// WithClock replaces the time source used to stamp requests.
func (s *RateLimitMemoryStore) WithClock(now func() time.Time) *RateLimitMemoryStore {
	s.now = now

	return s
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	valid := prune(s.requests[key], now.Add(-window))
	valid = append(valid, now)
	s.requests[key] = valid

	s.maxWindow = max(s.maxWindow, window)
	s.records++

	if s.records%pruneEvery == 0 {
		s.pruneLocked(now.Add(-s.maxWindow))
	}

	return int64(len(valid)), nil
}

// Prune drops timestamps older than window for every key and forgets keys
// left with none. It returns the number of keys still tracked.
func (s *RateLimitMemoryStore) Prune(window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pruneLocked(s.now().Add(-window))
}

func (s *RateLimitMemoryStore) pruneLocked(cutoff time.Time) int {
	for key, timestamps := range s.requests {
		valid := prune(timestamps, cutoff)
		if len(valid) == 0 {
			delete(s.requests, key)

			continue
		}

		s.requests[key] = valid
	}

	return len(s.requests)
}

// prune keeps timestamps after cutoff. Timestamps are appended in order, so
// the expired ones form a prefix.
func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(timestamps) && !timestamps[i].After(cutoff) {
		i++
	}

	return timestamps[i:]
}

// Compile-time check.
var _ ratelimit.Store = (*RateLimitMemoryStore)(nil)
