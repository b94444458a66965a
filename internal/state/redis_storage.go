package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	convStateKeyPattern  = "conv:state:%d:%d"
	convStateScanPattern = "conv:state:*"
)

// RedisStorage persists conversation FSM states in Redis. State survives bot
// restarts for as long as the TTL allows, which is a strict improvement over
// a purely in-memory session store.
type RedisStorage struct {
	client *redis.Client
	log    *slog.Logger
	ttl    time.Duration
}

// NewRedisStorage initializes a Redis-backed Storage implementation.
func NewRedisStorage(client *redis.Client, log *slog.Logger, ttl time.Duration) Storage {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &RedisStorage{
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

// GetState returns the stored conversation state or ErrStateNotFound when absent.
func (s *RedisStorage) GetState(ctx context.Context, userID, chatID int64) (*UserState, error) {
	key := convStateKey(userID, chatID)

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}

		s.log.Error("failed to get state from redis", "user_id", userID, "chat_id", chatID, "error", err)
		return nil, err
	}

	var state UserState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		s.log.Error("failed to decode conversation state", "user_id", userID, "chat_id", chatID, "error", err)
		return nil, err
	}

	return &state, nil
}

// SetState saves the provided conversation state with the configured TTL.
func (s *RedisStorage) SetState(ctx context.Context, state *UserState) error {
	state.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(state)
	if err != nil {
		s.log.Error("failed to encode conversation state", "user_id", state.UserID, "error", err)
		return err
	}

	key := convStateKey(state.UserID, state.ChatID)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.Error("failed to save state in redis", "user_id", state.UserID, "chat_id", state.ChatID, "error", err)
		return err
	}

	return nil
}

// ClearState removes the stored state for the given conversation.
func (s *RedisStorage) ClearState(ctx context.Context, userID, chatID int64) error {
	key := convStateKey(userID, chatID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Error("failed to clear conversation state", "user_id", userID, "chat_id", chatID, "error", err)
		return err
	}

	return nil
}

// GetAllStates retrieves every stored conversation state by scanning Redis keys.
func (s *RedisStorage) GetAllStates(ctx context.Context) ([]*UserState, error) {
	var (
		cursor uint64
		result []*UserState
	)

	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, convStateScanPattern, 100).Result()
		if err != nil {
			s.log.Error("failed to scan conversation states", "error", err)
			return nil, err
		}

		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}

				s.log.Error("failed to fetch conversation state", "key", key, "error", err)
				return nil, err
			}

			var userState UserState
			if err := json.Unmarshal([]byte(data), &userState); err != nil {
				s.log.Error("failed to decode conversation state", "key", key, "error", err)
				continue
			}

			copied := userState
			result = append(result, &copied)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return result, nil
}

func convStateKey(userID, chatID int64) string {
	return fmt.Sprintf(convStateKeyPattern, userID, chatID)
}
