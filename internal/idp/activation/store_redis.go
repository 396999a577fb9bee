// Copyright (c) 2026 Keygate. All rights reserved.

package activation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/constants"
)

// RedisCodeStore implements [CodeStore] on Redis.
type RedisCodeStore struct {
	client *redis.Client
}

// NewRedisCodeStore creates the Redis-backed activation code store.
func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

/*
Put stores an activation code with its lifetime.

Parameters:
  - ctx: context.Context
  - code: string
  - userID: string
  - ttl: time.Duration

Returns:
  - error: upstream_unavailable on Redis failure
*/
func (store *RedisCodeStore) Put(ctx context.Context, code, userID string, ttl time.Duration) error {
	key := constants.RedisPrefixActivationCode + code

	if err := store.client.Set(ctx, key, userID, ttl).Err(); err != nil {
		return apperr.Upstream(fmt.Errorf("activation: store code: %w", err))
	}

	return nil
}

/*
Consume atomically redeems an activation code.

Description: GETDEL is the atomicity point, Redis removes the key in the
same step that returns its value, so concurrent redemptions of one code
resolve to exactly one winner without any lock on our side.

Parameters:
  - ctx: context.Context
  - code: string

Returns:
  - string: The user ID the code was issued for
  - error: invalid_code when absent or expired, upstream_unavailable on failure
*/
func (store *RedisCodeStore) Consume(ctx context.Context, code string) (string, error) {
	key := constants.RedisPrefixActivationCode + code

	userID, err := store.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.InvalidCode()
		}
		return "", apperr.Upstream(fmt.Errorf("activation: consume code: %w", err))
	}

	return userID, nil
}
