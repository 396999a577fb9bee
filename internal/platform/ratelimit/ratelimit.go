// Copyright (c) 2026 Keygate. All rights reserved.

/*
Package ratelimit implements the shared fixed-window rate limiter on Redis.

It is a generic primitive keyed by an arbitrary string (email address,
client IP, ...). Because handlers may run across multiple worker processes,
the count and the window expiry live in the ephemeral store, not in process
memory: INCR is atomic, and EXPIRE ... NX pins the window exactly once, so
concurrent callers sharing a key can never observe a stale count and
collectively exceed the limit.
*/
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/constants"
)

// Limiter is the contract consumed by domain services. It exists as an
// interface so tests can substitute a deterministic fake.
type Limiter interface {

	// Allow atomically increments the counter for key and reports whether
	// the caller is within limit for the current window. The first
	// increment of a window fixes its expiry.
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)
}

// RedisLimiter implements [Limiter] on a shared Redis client.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter creates a Redis-backed [Limiter].
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

// Allow implements [Limiter].
//
// Both commands ride one pipeline: INCR is atomic on its own, and
// EXPIRE ... NX only takes effect for the caller that created the key, so
// every concurrent caller sees the same window boundary.
func (limiter *RedisLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	redisKey := constants.RedisPrefixRateLimit + key

	var count *redis.IntCmd
	_, err := limiter.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		return false, apperr.Upstream(fmt.Errorf("ratelimit: pipeline failed for %q: %w", key, err))
	}

	return count.Val() <= limit, nil
}
