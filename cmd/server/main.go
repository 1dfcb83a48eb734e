package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/quotalink/internal/container"
	"github.com/serroba/quotalink/internal/sweeper"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.RepositoryPackage(injector)
	container.RateLimitPackage(injector)
	container.PublisherGroupPackage(injector)
	container.SweeperPackage(injector)
	container.HTTPPackage(injector)
}

// app owns the HTTP server and the background sweeper for one CLI run.
type app struct {
	injector *do.Injector
	options  *container.Options
	logger   *zap.Logger
	server   *http.Server
}

func newApp(options *container.Options) *app {
	injector := do.New()
	registerPackages(injector, options)

	return &app{
		injector: injector,
		options:  options,
		logger:   do.MustInvoke[*zap.Logger](injector),
	}
}

func (a *app) run() {
	// Invoking the API registers every route on the router.
	_ = do.MustInvoke[huma.API](a.injector)

	if err := do.MustInvoke[*sweeper.Sweeper](a.injector).Start(context.Background()); err != nil {
		a.logger.Fatal("sweeper failed to start", zap.Error(err))
	}

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.options.Port),
		Handler:           do.MustInvoke[*chi.Mux](a.injector),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("quotalink listening",
		zap.Int("port", a.options.Port),
		zap.String("base_url", a.options.PublicBaseURL()),
		zap.Int("default_quota", a.options.DefaultQuota),
		zap.Int("default_ttl_hours", a.options.DefaultTTLHours),
		zap.Duration("sweep_interval", a.options.SweepInterval()),
		zap.String("rate_limit_backend", a.options.RateLimitBackend),
		zap.Bool("events", a.options.Events),
	)

	err := a.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Fatal("server failed", zap.Error(err))
	}
}

// stop drains in-flight requests before the injector stops the sweeper and
// closes Redis and the event publisher.
func (a *app) stop() {
	a.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("server shutdown error", zap.Error(err))
		}
	}

	if err := a.injector.Shutdown(); err != nil {
		a.logger.Error("service shutdown error", zap.Error(err))
	}

	a.logger.Info("shutdown complete")
	_ = a.logger.Sync()
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		a := newApp(options)

		hooks.OnStart(a.run)
		hooks.OnStop(a.stop)
	})

	cli.Run()
}
