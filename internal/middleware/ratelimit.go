package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/tooeasytravel/hotel-bot/internal/errors"
	"github.com/tooeasytravel/hotel-bot/internal/ratelimit"
)

// RateLimitMiddleware enforces per-user rate limits for incoming Telegram
// updates, protecting the hotel API quota from chat flooding.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	reject  func(telebot.Context) string
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component. The
// reject func supplies the localized refusal message.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, reject func(telebot.Context) string, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		reject:  reject,
		log:     log,
	}
}

// Handle returns a telebot middleware that enforces per-user rate limits.
func (m *RateLimitMiddleware) Handle(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if m.limiter == nil || m.rules == nil || !m.rules.Enabled() {
			return next(c)
		}

		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		userID := sender.ID
		if m.rules.IsWhitelisted(userID) {
			return next(c)
		}

		limit, window, err := m.rules.GetPerUserLimit()
		if err != nil {
			m.log.Error("failed to load per-user rate limit", slog.Int64("user_id", userID), slog.Any("error", err))
			return next(c)
		}

		result, err := m.limiter.Check(context.Background(), ratelimit.UserKey(userID), limit, window)
		if err != nil && !errors.Is(err, ratelimit.ErrLimitExceeded) {
			m.log.Warn("rate limiter error", slog.Int64("user_id", userID), slog.Any("error", err))
			return next(c)
		}

		if result == nil || !result.Allowed {
			retryAfter := 0
			if result != nil {
				retryAfter = int(time.Until(result.ResetAt).Seconds())
				if retryAfter < 0 {
					retryAfter = 0
				}
			}
			appErr := apperrors.NewRateLimitError(retryAfter)
			m.log.Warn("rate limit exceeded",
				slog.Int64("user_id", userID),
				slog.String("code", appErr.Code),
				slog.Int("retry_after", retryAfter),
			)
			msg := appErr.UserMessage
			if m.reject != nil {
				msg = m.reject(c)
			}
			return c.Send(msg)
		}

		return next(c)
	}
}
