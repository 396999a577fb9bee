// Copyright (c) 2026 Keygate. All rights reserved.

package token

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/constants"
)

// RedisUsageStore implements [UsageStore] on Redis.
type RedisUsageStore struct {
	client *redis.Client
}

// NewRedisUsageStore creates the Redis-backed single-use marker store.
func NewRedisUsageStore(client *redis.Client) *RedisUsageStore {
	return &RedisUsageStore{client: client}
}

/*
MarkUsed marks an authorization code as exchanged.

Description: SET NX is the atomicity point. Exactly one of any number of
concurrent exchanges for the same code observes the set succeeding; the rest
see the key already present and report a replay. The marker lives as long as
the code itself could, after expiry the signature check refuses the code
anyway.

Parameters:
  - ctx: context.Context
  - code: string (the compact JWS of the authorization code)

Returns:
  - bool: true on first use, false on replay
  - error: upstream_unavailable on Redis failure
*/
func (store *RedisUsageStore) MarkUsed(ctx context.Context, code string) (bool, error) {
	key := constants.RedisPrefixUsedAuthCode + code

	set, err := store.client.SetNX(ctx, key, "1", constants.AuthorizationCodeTTL).Result()
	if err != nil {
		return false, apperr.Upstream(fmt.Errorf("token: mark code used: %w", err))
	}

	return set, nil
}
