package store

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/serroba/quotalink/internal/shortener"
)

// entry is the store's private record for one link. The immutable fields live
// in link; mu guards link.Quota, link.Consumed and removed.
type entry struct {
	mu      sync.Mutex
	link    shortener.Link
	removed bool
}

func (e *entry) snapshot() *shortener.Link {
	l := e.link

	return &l
}

// shard guards the structure of one slice of the key space. Its lock is never
// held while waiting on another shard.
type shard struct {
	mu    sync.RWMutex
	links map[shortener.Code]*entry
}

// MemoryStore is a sharded in-memory implementation of shortener.Repository.
//
// Lock order is shard before entry. Redemption and quota updates only take the
// entry lock, so they never block on scans of other entries.
type MemoryStore struct {
	shards []*shard
	mask   uint64
}

// NewMemoryStore creates a new in-memory link store sized for the host.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithShards(runtime.GOMAXPROCS(0) * 4)
}

// NewMemoryStoreWithShards creates a store with at least n shards, rounded up
// to a power of two.
func NewMemoryStoreWithShards(n int) *MemoryStore {
	count := 1
	for count < n {
		count <<= 1
	}

	shards := make([]*shard, count)
	for i := range shards {
		shards[i] = &shard{links: make(map[shortener.Code]*entry)}
	}

	return &MemoryStore{
		shards: shards,
		mask:   uint64(count - 1),
	}
}

func (m *MemoryStore) shardFor(code shortener.Code) *shard {
	return m.shards[xxhash.Sum64String(string(code))&m.mask]
}

// lookup returns the entry for code without locking it.
func (m *MemoryStore) lookup(code shortener.Code) (*entry, bool) {
	s := m.shardFor(code)

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.links[code]

	return e, ok
}

// Create stores a new link with nothing consumed. It returns
// shortener.ErrCodeTaken when the code is already in use.
func (m *MemoryStore) Create(_ context.Context, link *shortener.Link) error {
	s := m.shardFor(link.Code)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[link.Code]; exists {
		return shortener.ErrCodeTaken
	}

	e := &entry{link: *link}
	e.link.Consumed = 0
	s.links[link.Code] = e

	link.Consumed = 0

	return nil
}

// Get returns a snapshot of a link, including links past their deadline.
func (m *MemoryStore) Get(_ context.Context, code shortener.Code) (*shortener.Link, error) {
	e, ok := m.lookup(code)
	if !ok {
		return nil, shortener.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed {
		return nil, shortener.ErrNotFound
	}

	return e.snapshot(), nil
}

// Redeem consumes one redirect under the entry lock.
func (m *MemoryStore) Redeem(_ context.Context, code shortener.Code, now time.Time) (*shortener.Link, error) {
	e, ok := m.lookup(code)
	if !ok {
		return nil, shortener.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed || e.link.Expired(now) {
		return nil, shortener.ErrNotFound
	}

	if e.link.Exhausted() {
		return nil, shortener.ErrQuotaExhausted
	}

	e.link.Consumed++

	return e.snapshot(), nil
}

// UpdateQuota sets a new quota for a link owned by ownerID. The quota must
// exceed the redirects already consumed.
func (m *MemoryStore) UpdateQuota(
	_ context.Context, code shortener.Code, ownerID string, quota int,
) (*shortener.Link, error) {
	e, ok := m.lookup(code)
	if !ok {
		return nil, shortener.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed {
		return nil, shortener.ErrNotFound
	}

	if e.link.OwnerID != ownerID {
		return nil, shortener.ErrForbidden
	}

	if quota <= e.link.Consumed {
		return nil, shortener.ErrInvalidQuota
	}

	e.link.Quota = quota

	return e.snapshot(), nil
}

// Delete removes a link owned by ownerID.
func (m *MemoryStore) Delete(_ context.Context, code shortener.Code, ownerID string) error {
	s := m.shardFor(code)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.links[code]
	if !ok {
		return shortener.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.link.OwnerID != ownerID {
		return shortener.ErrForbidden
	}

	e.removed = true
	delete(s.links, code)

	return nil
}

// ListByOwner returns the codes of all links owned by ownerID.
func (m *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]shortener.Code, error) {
	var codes []shortener.Code

	for _, s := range m.shards {
		s.mu.RLock()

		for code, e := range s.links {
			// OwnerID is immutable, no entry lock needed.
			if e.link.OwnerID == ownerID {
				codes = append(codes, code)
			}
		}

		s.mu.RUnlock()
	}

	return codes, nil
}

// SweepExpired removes links whose deadline is before now and returns them.
func (m *MemoryStore) SweepExpired(_ context.Context, now time.Time) ([]shortener.Link, error) {
	var swept []shortener.Link

	for _, s := range m.shards {
		swept = s.sweep(now, swept)
	}

	return swept, nil
}

func (s *shard) sweep(now time.Time, swept []shortener.Link) []shortener.Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	for code, e := range s.links {
		if !e.link.Deadline.Before(now) {
			continue
		}

		e.mu.Lock()
		e.removed = true
		swept = append(swept, e.link)
		e.mu.Unlock()

		delete(s.links, code)
	}

	return swept
}

// Len returns the number of links currently held, expired ones included.
func (m *MemoryStore) Len() int {
	n := 0

	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.links)
		s.mu.RUnlock()
	}

	return n
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
