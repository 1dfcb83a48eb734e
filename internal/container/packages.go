package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jaevor/go-nanoid"
	"github.com/samber/do"
	"github.com/serroba/quotalink/internal/analytics"
	analyticsstore "github.com/serroba/quotalink/internal/analytics/store"
	"github.com/serroba/quotalink/internal/handlers"
	"github.com/serroba/quotalink/internal/health"
	"github.com/serroba/quotalink/internal/messaging"
	"github.com/serroba/quotalink/internal/middleware"
	"github.com/serroba/quotalink/internal/ratelimit"
	"github.com/serroba/quotalink/internal/shortener"
	"github.com/serroba/quotalink/internal/store"
	"github.com/serroba/quotalink/internal/sweeper"
	"go.uber.org/zap"
)

const consumerGroupName = "quotalink-analytics"

// RepositoryPackage provides the link store, the user registry and the
// service built on them.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*store.MemoryStore, error) {
		return store.NewMemoryStore(), nil
	})

	do.Provide(i, func(_ *do.Injector) (*store.MemoryUserRegistry, error) {
		return store.NewMemoryUserRegistry(), nil
	})

	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)

		generator, err := nanoid.Standard(opts.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("code generator: %w", err)
		}

		return shortener.NewService(
			do.MustInvoke[*store.MemoryStore](i),
			do.MustInvoke[*store.MemoryUserRegistry](i),
			generator,
			shortener.Settings{
				DefaultQuota: opts.DefaultQuota,
				DefaultTTL:   time.Duration(opts.DefaultTTLHours) * time.Hour,
			},
		), nil
	})
}

// RateLimitPackage provides the policy limiter on the configured backend.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Store, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.RateLimitBackend {
		case RateLimitMemory:
			return store.NewRateLimitMemoryStore(), nil
		case RateLimitRedis:
			return store.NewRateLimitRedisStore(do.MustInvoke[*RedisClient](i).UniversalClient)
		default:
			return nil, fmt.Errorf("unknown rate limit backend %q", opts.RateLimitBackend)
		}
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		return ratelimit.NewPolicyLimiter(do.MustInvoke[ratelimit.Store](i), ratelimit.DefaultPolicy()), nil
	})
}

// PublisherGroupPackage provides the analytics publishers. Events go to Redis
// Streams when enabled and are discarded otherwise.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.Events {
			return messaging.NewPublisherGroup(messaging.NewDiscardPublisher()), nil
		}

		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     do.MustInvoke[*RedisClient](i).UniversalClient,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("redis stream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (*analytics.Publishers, error) {
		return analytics.NewPublishers(do.MustInvoke[*messaging.PublisherGroup](i).Publisher()), nil
	})
}

// SweeperPackage provides the expiry sweeper. It publishes an expiry event per
// swept link and is stopped on injector shutdown.
func SweeperPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*sweeper.Sweeper, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		publishers := do.MustInvoke[*analytics.Publishers](i)

		onSwept := func(ctx context.Context, swept []shortener.Link) {
			if err := publishers.PublishExpired(ctx, swept, time.Now()); err != nil {
				logger.Error("failed to publish expiry events", zap.Int("count", len(swept)), zap.Error(err))
			}
		}

		return sweeper.New(do.MustInvoke[*store.MemoryStore](i), opts.SweepInterval(), onSwept, logger), nil
	})
}

// HTTPPackage provides the router and the huma API with every route and
// middleware registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Use(chimiddleware.RequestID, chimiddleware.Recoverer)

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("Quota Link Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.PolicyRateLimiter(
			api,
			do.MustInvoke[*ratelimit.PolicyLimiter](i),
			ratelimit.NewOperationScopeResolver(),
			logger,
		))

		handlers.RegisterRoutes(api, handlers.NewLinkHandler(
			do.MustInvoke[*shortener.Service](i),
			opts.PublicBaseURL(),
			do.MustInvoke[*analytics.Publishers](i),
			logger,
		))

		var redisChecker health.Checker
		if opts.UsesRedis() {
			redisChecker = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).UniversalClient)
		}

		health.RegisterRoutes(api, health.NewHandler(redisChecker, do.MustInvoke[*store.MemoryStore](i)))

		return api, nil
	})
}

// ConsumerGroupPackage provides the analytics consumer group reading Redis
// Streams into PostgreSQL, or into the log when no database is configured.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (analytics.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.DatabaseURL == "" {
			logger.Info("no database configured, analytics events are only logged")

			return analyticsstore.NewNoop(logger), nil
		}

		pg := analyticsstore.NewPostgres(do.MustInvoke[*PostgresPool](i).Pool)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("analytics schema: %w", err)
		}

		return pg, nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        do.MustInvoke[*RedisClient](i).UniversalClient,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: consumerGroupName,
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("redis stream subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(analytics.NewConsumers(subscriber, do.MustInvoke[analytics.Store](i), logger)...)

		return group, nil
	})
}
