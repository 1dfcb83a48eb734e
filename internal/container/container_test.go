package container_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/quotalink/internal/analytics"
	"github.com/serroba/quotalink/internal/container"
	"github.com/serroba/quotalink/internal/ratelimit"
	"github.com/serroba/quotalink/internal/store"
	"github.com/serroba/quotalink/internal/sweeper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryOptions() *container.Options {
	return &container.Options{
		Port:                 9999,
		CodeLength:           8,
		RedisAddr:            "localhost:6379",
		LogFormat:            "console",
		DefaultQuota:         2,
		DefaultTTLHours:      24,
		SweepIntervalSeconds: 60,
		RateLimitBackend:     container.RateLimitMemory,
	}
}

func newInjector(t *testing.T, opts *container.Options) *do.Injector {
	t.Helper()

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.RepositoryPackage(injector)
	container.RateLimitPackage(injector)
	container.PublisherGroupPackage(injector)
	container.SweeperPackage(injector)
	container.HTTPPackage(injector)

	t.Cleanup(func() { _ = injector.Shutdown() })

	return injector
}

func TestOptions(t *testing.T) {
	opts := memoryOptions()

	assert.Equal(t, "http://localhost:9999", opts.PublicBaseURL())
	assert.Equal(t, time.Minute, opts.SweepInterval())
	assert.False(t, opts.UsesRedis())

	opts.BaseURL = "https://sho.rt"
	opts.RateLimitBackend = container.RateLimitRedis

	assert.Equal(t, "https://sho.rt", opts.PublicBaseURL())
	assert.True(t, opts.UsesRedis())
}

func TestServerPackages(t *testing.T) {
	t.Run("serves the link lifecycle without redis", func(t *testing.T) {
		injector := newInjector(t, memoryOptions())
		_ = do.MustInvoke[huma.API](injector)
		router := do.MustInvoke[*chi.Mux](injector)

		req := httptest.NewRequest(http.MethodPost, "/shorten", strings.NewReader(`{"url":"https://example.com"}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created struct {
			Code     string `json:"code"`
			ShortURL string `json:"shortUrl"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Len(t, created.Code, 8)
		assert.True(t, strings.HasPrefix(created.ShortURL, "http://localhost:9999/"))

		for _, want := range []int{http.StatusFound, http.StatusFound, http.StatusGone} {
			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+created.Code, nil))
			assert.Equal(t, want, w.Code)
		}

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
		assert.Contains(t, w.Body.String(), `"links":1`)
	})

	t.Run("memory backend is the default rate limit store", func(t *testing.T) {
		injector := newInjector(t, memoryOptions())

		_, ok := do.MustInvoke[ratelimit.Store](injector).(*store.RateLimitMemoryStore)

		assert.True(t, ok)
	})

	t.Run("unknown rate limit backend fails", func(t *testing.T) {
		opts := memoryOptions()
		opts.RateLimitBackend = "carrier-pigeon"
		injector := newInjector(t, opts)

		_, err := do.Invoke[ratelimit.Store](injector)

		assert.Error(t, err)
	})

	t.Run("events are discarded when disabled", func(t *testing.T) {
		injector := newInjector(t, memoryOptions())
		publishers := do.MustInvoke[*analytics.Publishers](injector)

		err := publishers.LinkCreated(context.Background(), &analytics.LinkCreatedEvent{Code: "abc"})

		assert.NoError(t, err)
	})

	t.Run("sweeper starts and stops with the injector", func(t *testing.T) {
		opts := memoryOptions()
		injector := do.New()
		do.ProvideValue(injector, opts)
		container.LoggerPackage(injector)
		container.RepositoryPackage(injector)
		container.PublisherGroupPackage(injector)
		container.SweeperPackage(injector)

		s := do.MustInvoke[*sweeper.Sweeper](injector)
		require.NoError(t, s.Start(context.Background()))
		assert.Equal(t, time.Minute, s.Interval())

		assert.NoError(t, injector.Shutdown())
	})
}

func TestPostgresPackage(t *testing.T) {
	injector := do.New()
	do.ProvideValue(injector, memoryOptions())
	container.PostgresPackage(injector)

	_, err := do.Invoke[*container.PostgresPool](injector)

	assert.Error(t, err, "no database url configured")
}
