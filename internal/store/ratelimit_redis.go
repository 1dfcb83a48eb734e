package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/quotalink/internal/ratelimit"
)

const rateLimitPrefix = "ratelimit:"

// RateLimitRedisStore is a sliding window ratelimit.Store backed by one Redis
// sorted set per key, scored by request time in microseconds.
type RateLimitRedisStore struct {
	client redis.UniversalClient
	prefix string
	member func() string
	now    func() time.Time
}

// NewRateLimitRedisStore creates a Redis-backed rate limit store.
func NewRateLimitRedisStore(client redis.UniversalClient) (*RateLimitRedisStore, error) {
	member, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("member generator: %w", err)
	}

	return &RateLimitRedisStore{
		client: client,
		prefix: rateLimitPrefix,
		member: member,
		now:    time.Now,
	}, nil
}

// WithPrefix namespaces every key written by the store.
func (s *RateLimitRedisStore) WithPrefix(prefix string) *RateLimitRedisStore {
	s.prefix = prefix

	return s
}

func (s *RateLimitRedisStore) Record(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := s.now()
	redisKey := s.prefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixMicro(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: s.member()})
	card := pipe.ZCard(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("ratelimit record: %w", err)
	}

	return card.Val(), nil
}

// Compile-time check.
var _ ratelimit.Store = (*RateLimitRedisStore)(nil)
