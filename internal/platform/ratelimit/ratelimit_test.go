// Copyright (c) 2026 Keygate. All rights reserved.

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/ratelimit"
)

func newLimiter(t *testing.T) (*ratelimit.RedisLimiter, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return ratelimit.NewRedisLimiter(client), server
}

// TestAllow_WindowLifecycle drives one key through a full window: the first
// call passes, the second is refused, and once the window elapses the key
// is fresh again.
func TestAllow_WindowLifecycle(t *testing.T) {
	limiter, server := newLimiter(t)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "activation_email:alice@example.com", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "activation_email:alice@example.com", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	server.FastForward(time.Minute + time.Second)

	allowed, err = limiter.Allow(ctx, "activation_email:alice@example.com", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

// TestAllow_RefusalsDoNotExtendWindow pins the window at the first increment.
// A refused attempt mid-window must not push the expiry out, so the key still
// clears one window after its creation.
func TestAllow_RefusalsDoNotExtendWindow(t *testing.T) {
	limiter, server := newLimiter(t)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "activation_email:alice@example.com", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)

	server.FastForward(40 * time.Second)

	allowed, err = limiter.Allow(ctx, "activation_email:alice@example.com", 1, time.Minute)
	require.NoError(t, err)
	require.False(t, allowed)

	// 65 seconds since creation, 25 since the refused attempt.
	server.FastForward(25 * time.Second)

	allowed, err = limiter.Allow(ctx, "activation_email:alice@example.com", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAllow_IndependentKeys(t *testing.T) {
	limiter, _ := newLimiter(t)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "activation_email:alice@example.com", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "activation_email:alice@example.com", 1, time.Minute)
	require.NoError(t, err)
	require.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "activation_email:bob@example.com", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAllow_StoreDown(t *testing.T) {
	limiter, server := newLimiter(t)
	server.Close()

	_, err := limiter.Allow(context.Background(), "activation_email:alice@example.com", 1, time.Minute)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeUpstream))
}
