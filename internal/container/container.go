package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

var errNoDatabaseURL = errors.New("database url is not configured")

// Options holds the service configuration, read from flags and SERVICE_*
// environment variables by humacli.
type Options struct {
	Port                 int    `default:"8888"           help:"Port to listen on"                                      short:"p"`
	BaseURL              string `default:""               help:"Public base URL of short links (default http://localhost:<port>)"`
	CodeLength           int    `default:"8"              help:"Length of generated short codes"                        short:"c"`
	RedisAddr            string `default:"localhost:6379" help:"Redis server address"                                   short:"r"`
	DatabaseURL          string `default:""               help:"PostgreSQL URL for the analytics sink"`
	LogFormat            string `default:"json"           help:"Log format: json or console"`
	DefaultQuota         int    `default:"10"             help:"Redirect quota of links created without one"`
	DefaultTTLHours      int    `default:"24"             help:"Lifetime in hours of links created without one"`
	SweepIntervalSeconds int    `default:"60"             help:"Seconds between sweeps of expired links"`
	RateLimitBackend     string `default:"memory"         help:"Rate limit store: memory or redis"`
	Events               bool   `default:"false"          help:"Publish link analytics events to Redis Streams"`
}

// PublicBaseURL returns the prefix of short links.
func (o *Options) PublicBaseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// UsesRedis reports whether any server component depends on Redis.
func (o *Options) UsesRedis() bool {
	return o.Events || o.RateLimitBackend == RateLimitRedis
}

// SweepInterval returns the sweep period.
func (o *Options) SweepInterval() time.Duration {
	return time.Duration(o.SweepIntervalSeconds) * time.Second
}

// LoggerPackage provides *zap.Logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "console" {
			return zap.NewDevelopment()
		}

		return zap.NewProduction()
	})
}

// RedisClient closes the Redis connection pool on injector shutdown.
type RedisClient struct {
	redis.UniversalClient
}

func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// RedisPackage provides *RedisClient.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{
			UniversalClient: redis.NewClient(&redis.Options{Addr: opts.RedisAddr}),
		}, nil
	})
}

// PostgresPool closes the connection pool on injector shutdown.
type PostgresPool struct {
	*pgxpool.Pool
}

func (p *PostgresPool) Shutdown() error {
	p.Close()

	return nil
}

// PostgresPackage provides *PostgresPool. Invoking it fails when no database
// URL is configured.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*PostgresPool, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.DatabaseURL == "" {
			return nil, errNoDatabaseURL
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("ping postgres: %w", err)
		}

		return &PostgresPool{Pool: pool}, nil
	})
}
