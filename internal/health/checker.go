// Package health aggregates reachability checks for the bot's dependencies:
// Postgres (users, search history), Redis (conversation state, dedup,
// limits) and the Telegram API.
package health

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gopkg.in/telebot.v3"
)

// Checkable reports whether one component is healthy.
type Checkable interface {
	HealthCheck(ctx context.Context) error
}

// Checker runs all registered component checks.
type Checker struct {
	log    *slog.Logger
	checks map[string]Checkable
}

func NewChecker(log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}

	return &Checker{
		log:    log,
		checks: make(map[string]Checkable),
	}
}

// AddCheck registers a component by name. Later registrations under the same
// name replace earlier ones.
func (c *Checker) AddCheck(name string, check Checkable) {
	if name == "" || check == nil {
		return
	}
	c.checks[name] = check
}

// Check runs every registered check and returns the per-component outcome,
// nil for healthy components.
func (c *Checker) Check(ctx context.Context) map[string]error {
	results := make(map[string]error, len(c.checks))

	for name, check := range c.checks {
		err := check.HealthCheck(ctx)
		if err != nil {
			c.log.Error("health check failed",
				slog.String("component", name),
				slog.Any("error", err),
			)
		}
		results[name] = err
	}

	return results
}

// DBChecker pings the Postgres pool holding users and history.
type DBChecker struct {
	db *sql.DB
}

func NewDBChecker(db *sql.DB) *DBChecker {
	return &DBChecker{db: db}
}

func (c *DBChecker) HealthCheck(ctx context.Context) error {
	if c == nil || c.db == nil {
		return sql.ErrConnDone
	}
	return c.db.PingContext(ctx)
}

// Pinger is the slice of redis.Client the check needs.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisChecker pings the Redis instance backing conversation state.
type RedisChecker struct {
	pinger Pinger
}

func NewRedisChecker(pinger Pinger) *RedisChecker {
	return &RedisChecker{pinger: pinger}
}

func (c *RedisChecker) HealthCheck(ctx context.Context) error {
	if c == nil || c.pinger == nil {
		return redis.ErrClosed
	}
	return c.pinger.Ping(ctx).Err()
}

// TelegramChecker confirms the bot authenticated against the Telegram API.
// Me is populated by getMe during startup, so a nil Me means the token never
// worked.
type TelegramChecker struct {
	bot *telebot.Bot
}

func NewTelegramChecker(bot *telebot.Bot) *TelegramChecker {
	return &TelegramChecker{bot: bot}
}

func (c *TelegramChecker) HealthCheck(context.Context) error {
	if c == nil || c.bot == nil || c.bot.Me == nil {
		return errors.New("telegram bot is not authenticated")
	}
	return nil
}
