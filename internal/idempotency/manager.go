// Package idempotency deduplicates Telegram updates: long polling and
// webhooks may both redeliver an update, and a replayed message must not
// advance a conversation twice.
package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrInFlight indicates another worker currently processes the same update.
var ErrInFlight = errors.New("update is already being processed")

// lock TTL bounds how long a crashed worker can block a key
const processingLockTTL = 5 * time.Minute

// Manager runs an operation at most once per update key.
type Manager interface {
	// Execute runs fn unless the key was already completed or is being
	// processed right now. It reports whether fn actually ran. A completed
	// duplicate returns (false, nil); a concurrent duplicate returns
	// (false, ErrInFlight).
	Execute(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) (bool, error)
}

type manager struct {
	store Store
	log   *slog.Logger
}

// NewManager builds a Manager on top of the provided Store.
func NewManager(store Store, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{
		store: store,
		log:   log,
	}
}

func (m *manager) Execute(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if fn == nil {
		return false, errors.New("operation fn cannot be nil")
	}

	acquired, err := m.store.Acquire(ctx, key, processingLockTTL)
	if err != nil {
		return false, err
	}

	if !acquired {
		status, err := m.store.Status(ctx, key)
		if err != nil {
			return false, err
		}
		if status == StatusCompleted {
			m.log.Debug("duplicate update skipped", slog.String("key", key))
			return false, nil
		}
		return false, ErrInFlight
	}

	defer func() {
		if err := m.store.Release(ctx, key); err != nil {
			m.log.Warn("failed to release dedup lock", slog.String("key", key), slog.Any("error", err))
		}
	}()

	// The completed marker outlives the processing lock, so a redelivery
	// that arrives after the original finished can acquire the lock again.
	// Re-check under the lock before running anything.
	status, err := m.store.Status(ctx, key)
	if err != nil {
		return false, err
	}
	if status == StatusCompleted {
		m.log.Debug("duplicate update skipped", slog.String("key", key))
		return false, nil
	}

	if err := fn(ctx); err != nil {
		// A failed handler stays unmarked so a redelivery can retry it.
		return true, err
	}

	if err := m.store.MarkCompleted(ctx, key, ttl); err != nil {
		m.log.Warn("failed to mark update as processed", slog.String("key", key), slog.Any("error", err))
	}

	return true, nil
}
