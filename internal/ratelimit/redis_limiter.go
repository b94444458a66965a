package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// RedisLimiter keeps one sorted set per user, scored by arrival time in
// milliseconds, and counts the members inside the sliding window.
type RedisLimiter struct {
	client *redis.Client
	log    *slog.Logger
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates the Redis-backed Limiter shared by all bot
// instances.
func NewRedisLimiter(client *redis.Client, log *slog.Logger) Limiter {
	if log == nil {
		log = slog.Default()
	}

	return &RedisLimiter{
		client: client,
		log:    log,
	}
}

func (l *RedisLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if l.client == nil {
		return nil, errors.New("redis client is not configured for rate limiting")
	}
	if limit <= 0 {
		return &Result{Allowed: false, ResetAt: time.Now().Add(window)}, nil
	}

	now := time.Now()
	windowStart := now.Add(-window)
	redisKey := keyPrefix + key

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("(%d", windowStart.UnixMilli()))
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.NewString(),
	})
	countCmd := pipe.ZCard(ctx, redisKey)
	// keep the set around long enough for the cleaner to find it empty
	pipe.Expire(ctx, redisKey, window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Error("rate limit pipeline failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return nil, err
	}

	used := int(countCmd.Val())
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   used <= limit,
		Remaining: remaining,
		ResetAt:   now.Add(window),
	}, nil
}

// UserKey builds the limiter key for a Telegram user.
func UserKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}
