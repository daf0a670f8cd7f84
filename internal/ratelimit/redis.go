package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces rate limit keys in a shared Redis.
const DefaultRedisPrefix = "ratelimit:"

// RedisCounter keeps window counts in Redis so that every server instance
// sees the same totals. Each window gets its own key, which expires with it.
type RedisCounter struct {
	rdb    redis.Cmdable
	prefix string
}

// Ensure RedisCounter implements Counter interface
var _ Counter = (*RedisCounter)(nil)

// NewRedisCounter wraps an existing Redis client.
func NewRedisCounter(rdb redis.Cmdable, prefix string) *RedisCounter {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCounter{rdb: rdb, prefix: prefix}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// Incr implements Counter with INCR and PEXPIRE in one transaction.
func (c *RedisCounter) Incr(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	windowStart := now.Truncate(window)
	redisKey := c.prefix + key + ":" + strconv.FormatInt(windowStart.UnixMilli(), 10)
	ttl := windowStart.Add(window).Sub(now)
	if ttl <= 0 {
		ttl = window
	}

	var incr *redis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
