package state

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Cleaner discards conversations abandoned mid-flow. A user who walks away
// between steps would otherwise hold their state until the storage TTL fires;
// the cleaner makes abandonment explicit and observable.
type Cleaner struct {
	storage  Storage
	log      *slog.Logger
	ttl      time.Duration
	interval time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(storage Storage, log *slog.Logger, ttl, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		storage:  storage,
		log:      log,
		ttl:      ttl,
		interval: interval,
	}
}

// Run starts the cleanup loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.storage == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("state cleaner stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	states, err := c.storage.GetAllStates(ctx)
	if err != nil {
		c.log.Error("state cleaner failed to list states", slog.Any("error", err))
		return
	}

	for _, st := range states {
		if st == nil || st.CurrentState == StateIdle {
			continue
		}

		if time.Since(st.UpdatedAt) <= c.ttl {
			continue
		}

		if err := c.storage.ClearState(ctx, st.UserID, st.ChatID); err != nil {
			if !errors.Is(err, ErrStateNotFound) {
				c.log.Error("state cleaner failed to clear state",
					slog.Int64("user_id", st.UserID),
					slog.Int64("chat_id", st.ChatID),
					slog.Any("error", err),
				)
			}
			continue
		}

		c.log.Info("abandoned conversation cleared",
			slog.Int64("user_id", st.UserID),
			slog.Int64("chat_id", st.ChatID),
			slog.String("state", string(st.CurrentState)),
		)
	}
}
