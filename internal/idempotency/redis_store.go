package idempotency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Status of a deduplicated update key.
type Status string

const (
	// StatusUnknown means no record exists for the key.
	StatusUnknown Status = ""
	// StatusCompleted means the update was fully processed.
	StatusCompleted Status = "completed"
)

// Store persists dedup markers and the short-lived processing locks.
type Store interface {
	Acquire(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	Status(ctx context.Context, key string) (Status, error)
	MarkCompleted(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// RedisStore keeps dedup markers in Redis under the dedup: prefix.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, log *slog.Logger) Store {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{
		client: client,
		log:    log,
	}
}

func (s *RedisStore) Acquire(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, lockKey(key), 1, lockTTL).Result()
	if err != nil {
		s.log.Error("failed to acquire dedup lock", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return acquired, nil
}

func (s *RedisStore) Status(ctx context.Context, key string) (Status, error) {
	value, err := s.client.Get(ctx, markerKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return StatusUnknown, nil
		}
		s.log.Error("failed to read dedup marker", slog.String("key", key), slog.Any("error", err))
		return StatusUnknown, err
	}

	return Status(value), nil
}

func (s *RedisStore) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Set(ctx, markerKey(key), string(StatusCompleted), ttl).Err(); err != nil {
		s.log.Error("failed to write dedup marker", slog.String("key", key), slog.Any("error", err))
		return err
	}

	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, lockKey(key)).Err()
}

func markerKey(key string) string {
	return fmt.Sprintf("dedup:%s", key)
}

func lockKey(key string) string {
	return fmt.Sprintf("dedup:%s:lock", key)
}
