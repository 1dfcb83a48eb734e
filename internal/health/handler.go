package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
)

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// Counter reports how many links are currently held.
type Counter interface {
	Len() int
}

// RedisChecker adapts a Redis client to the Checker interface.
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler handles health check operations.
type Handler struct {
	redis Checker
	links Counter
}

// NewHandler creates a new health handler. A nil redis checker means the
// service runs without Redis and reports it as disabled.
func NewHandler(redis Checker, links Counter) *Handler {
	return &Handler{redis: redis, links: links}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status string `doc:"ok, or degraded when a dependency is unhealthy" json:"status"`
		Redis  string `doc:"healthy, unhealthy or disabled"                json:"redis"`
		Links  int    `doc:"Links currently held, expired ones included"    json:"links"`
	}
}

// Check performs a health check of the application and its dependencies.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = statusOK
	resp.Body.Links = h.links.Len()

	switch {
	case h.redis == nil:
		resp.Body.Redis = "disabled"
	case h.redis.Ping(ctx) != nil:
		resp.Body.Redis = "unhealthy"
		resp.Body.Status = statusDegraded
	default:
		resp.Body.Redis = "healthy"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Get(api, "/health", h.Check)
}
