package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRateLimiter(client, 3, 30*time.Minute), mr
}

func TestRateLimiterBlocksAfterMaxAttempts(t *testing.T) {
	limiter, _ := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		blocked, err := limiter.Blocked(ctx, "login", "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, blocked, "attempt %d should not be blocked", i+1)
		require.NoError(t, limiter.RecordFailure(ctx, "login", "10.0.0.1"))
	}

	blocked, err := limiter.Blocked(ctx, "login", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, blocked, "fourth attempt should be blocked")
}

func TestRateLimiterKeysScopedPerActionAndIP(t *testing.T) {
	limiter, _ := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.RecordFailure(ctx, "login", "10.0.0.1"))
	}

	blocked, err := limiter.Blocked(ctx, "register", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, blocked, "other action must not be blocked")

	blocked, err = limiter.Blocked(ctx, "login", "10.0.0.2")
	require.NoError(t, err)
	assert.False(t, blocked, "other ip must not be blocked")
}

func TestRateLimiterResetClearsCounter(t *testing.T) {
	limiter, _ := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.RecordFailure(ctx, "login", "10.0.0.1"))
	}
	require.NoError(t, limiter.Reset(ctx, "login", "10.0.0.1"))

	blocked, err := limiter.Blocked(ctx, "login", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestRateLimiterWindowExpires(t *testing.T) {
	limiter, mr := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.RecordFailure(ctx, "login", "10.0.0.1"))
	}

	mr.FastForward(31 * time.Minute)

	blocked, err := limiter.Blocked(ctx, "login", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, blocked, "counter should expire with the window")
}

func TestRateLimiterWindowSlidesOnEachFailure(t *testing.T) {
	limiter, mr := setupLimiter(t)
	ctx := context.Background()

	// Failures 20 minutes apart: a window anchored at the first failure
	// would have expired 40 minutes in, a sliding one keeps counting.
	require.NoError(t, limiter.RecordFailure(ctx, "login", "10.0.0.1"))
	mr.FastForward(20 * time.Minute)
	require.NoError(t, limiter.RecordFailure(ctx, "login", "10.0.0.1"))
	mr.FastForward(20 * time.Minute)
	require.NoError(t, limiter.RecordFailure(ctx, "login", "10.0.0.1"))

	blocked, err := limiter.Blocked(ctx, "login", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, blocked, "three failures within sliding windows must block")
}
