package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/serroba/quotalink/internal/shortener"
)

// IdentityGenerator mints new identity tokens.
type IdentityGenerator func() string

// MemoryUserRegistry is an in-memory implementation of shortener.UserRegistry.
// Identities are self-asserted: knowing a token is enough to act as it.
type MemoryUserRegistry struct {
	mu       sync.RWMutex
	users    map[string]struct{}
	generate IdentityGenerator
}

// NewMemoryUserRegistry creates a registry that mints UUIDv4 identities.
func NewMemoryUserRegistry() *MemoryUserRegistry {
	return NewMemoryUserRegistryWithGenerator(uuid.NewString)
}

// NewMemoryUserRegistryWithGenerator creates a registry with a custom generator.
func NewMemoryUserRegistryWithGenerator(generator IdentityGenerator) *MemoryUserRegistry {
	return &MemoryUserRegistry{
		users:    make(map[string]struct{}),
		generate: generator,
	}
}

func (r *MemoryUserRegistry) Resolve(_ context.Context, token string) (string, error) {
	if token != "" && r.exists(token) {
		return token, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		id := r.generate()
		if _, taken := r.users[id]; taken {
			continue
		}

		r.users[id] = struct{}{}

		return id, nil
	}
}

// Exists reports whether token has been registered.
func (r *MemoryUserRegistry) Exists(_ context.Context, token string) bool {
	return r.exists(token)
}

func (r *MemoryUserRegistry) exists(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[token]

	return ok
}

// Compile-time check.
var _ shortener.UserRegistry = (*MemoryUserRegistry)(nil)
