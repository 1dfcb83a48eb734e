package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do"
	"github.com/serroba/quotalink/internal/container"
	"github.com/serroba/quotalink/internal/messaging"
	"go.uber.org/zap"
)

// loadOptions reads the consumer settings from the environment. Without
// DATABASE_URL events are only logged.
func loadOptions() *container.Options {
	return &container.Options{
		RedisAddr:   envOr("REDIS_ADDR", "localhost:6379"),
		DatabaseURL: envOr("DATABASE_URL", ""),
		LogFormat:   envOr("LOG_FORMAT", "console"),
	}
}

func main() {
	opts := loadOptions()

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)
	defer func() { _ = logger.Sync() }()

	group, err := do.Invoke[*messaging.ConsumerGroup](injector)
	if err != nil {
		logger.Fatal("failed to build consumer group", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("analytics consumer running",
		zap.Int("consumers", group.Len()),
		zap.Bool("postgres", opts.DatabaseURL != ""),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}
