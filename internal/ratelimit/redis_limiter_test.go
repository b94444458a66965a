package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRedisLimiterAllowsWithinBudget(t *testing.T) {
	limiter := NewRedisLimiter(newTestClient(t), discardLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, UserKey(42), 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 5-(i+1), result.Remaining)
	}
}

func TestRedisLimiterRejectsWhenExhausted(t *testing.T) {
	limiter := NewRedisLimiter(newTestClient(t), discardLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, UserKey(7), 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, UserKey(7), 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

func TestRedisLimiterIsolatesUsers(t *testing.T) {
	limiter := NewRedisLimiter(newTestClient(t), discardLogger())
	ctx := context.Background()

	_, err := limiter.Check(ctx, UserKey(1), 1, time.Minute)
	require.NoError(t, err)

	result, err := limiter.Check(ctx, UserKey(2), 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRedisLimiterSlidingWindow(t *testing.T) {
	limiter := NewRedisLimiter(newTestClient(t), discardLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, UserKey(9), 2, time.Second)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	time.Sleep(1100 * time.Millisecond)

	result, err := limiter.Check(ctx, UserKey(9), 2, time.Second)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryLimiterRejectsAndRecovers(t *testing.T) {
	limiter := NewMemoryLimiter(discardLogger())
	ctx := context.Background()

	result, err := limiter.Check(ctx, UserKey(3), 1, 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = limiter.Check(ctx, UserKey(3), 1, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.False(t, result.Allowed)

	time.Sleep(60 * time.Millisecond)

	result, err = limiter.Check(ctx, UserKey(3), 1, 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
