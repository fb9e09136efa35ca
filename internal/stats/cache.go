package stats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"number-inventory/internal/metrics"
)

// Cache stores JSON-encodable views. A miss is (false, nil).
// Callers embed Generation in their keys; Bump moves every reader to a fresh
// generation, so a value computed before a write can never be read after it.
type Cache interface {
	Generation(ctx context.Context) (int64, error)
	Bump(ctx context.Context) error
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Generation(context.Context) (int64, error)      { return 0, nil }
func (NopCache) Bump(context.Context) error                     { return nil }
func (NopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NopCache) Set(context.Context, string, any) error         { return nil }

const (
	redisKeyPrefix = "inventory:stats:"
	redisGenKey    = redisKeyPrefix + "gen"
)

// RedisCache keeps views in redis so every API instance sees the same invalidation.
// The generation counter lives under its own key with no expiry; entries of
// retired generations are left to ttl.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.StatsCacheLookups.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		metrics.StatsCacheLookups.WithLabelValues("error").Inc()
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		metrics.StatsCacheLookups.WithLabelValues("error").Inc()
		return false, err
	}
	metrics.StatsCacheLookups.WithLabelValues("hit").Inc()
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, redisKeyPrefix+key, b, c.ttl).Err()
}

func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	n, err := c.rdb.Get(ctx, redisGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *RedisCache) Bump(ctx context.Context) error {
	return c.rdb.Incr(ctx, redisGenKey).Err()
}
