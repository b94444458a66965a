package idempotency

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cleaner removes dedup keys that lost their TTL (for example after a Redis
// restore from an RDB snapshot) and would otherwise block updates forever.
type Cleaner struct {
	client   *redis.Client
	log      *slog.Logger
	interval time.Duration
}

func NewCleaner(client *redis.Client, log *slog.Logger, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		client:   client,
		log:      log,
		interval: interval,
	}
}

// Run sweeps periodically until ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	var cursor uint64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, "dedup:*", 100).Result()
		if err != nil {
			c.log.Error("dedup sweep scan failed", slog.Any("error", err))
			return
		}

		for _, key := range keys {
			ttl, err := c.client.TTL(ctx, key).Result()
			if err != nil {
				c.log.Warn("failed to read dedup key ttl", slog.String("key", key), slog.Any("error", err))
				continue
			}

			// -1s means the key exists without an expiry
			if ttl == -time.Second {
				if err := c.client.Del(ctx, key).Err(); err != nil {
					c.log.Warn("failed to delete stale dedup key", slog.String("key", key), slog.Any("error", err))
				}
			}
		}

		cursor = next
		if cursor == 0 {
			return
		}
	}
}
