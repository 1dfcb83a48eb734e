package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/serroba/quotalink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRegistry_Resolve(t *testing.T) {
	t.Run("mints identity for empty token", func(t *testing.T) {
		r := store.NewMemoryUserRegistry()

		id, err := r.Resolve(context.Background(), "")

		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.True(t, r.Exists(context.Background(), id))
	})

	t.Run("returns known token unchanged", func(t *testing.T) {
		r := store.NewMemoryUserRegistry()
		id, _ := r.Resolve(context.Background(), "")

		again, err := r.Resolve(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, id, again)
	})

	t.Run("replaces unknown token with fresh identity", func(t *testing.T) {
		r := store.NewMemoryUserRegistry()

		id, err := r.Resolve(context.Background(), "made-up")

		require.NoError(t, err)
		assert.NotEqual(t, "made-up", id)
		assert.False(t, r.Exists(context.Background(), "made-up"))
	})

	t.Run("skips generated identities that are already taken", func(t *testing.T) {
		var mu sync.Mutex

		calls := 0
		r := store.NewMemoryUserRegistryWithGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()

			calls++
			if calls <= 2 {
				return "same"
			}

			return fmt.Sprintf("user-%d", calls)
		})

		first, _ := r.Resolve(context.Background(), "")
		second, _ := r.Resolve(context.Background(), "")

		assert.Equal(t, "same", first)
		assert.Equal(t, "user-3", second)
	})
}
