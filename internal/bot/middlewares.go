package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/bot/handlers"
	errors "github.com/tooeasytravel/hotel-bot/internal/errors"
	"github.com/tooeasytravel/hotel-bot/internal/user"
	"github.com/tooeasytravel/hotel-bot/pkg/logger"
)

// RecoveryMiddleware catches panics, reports them via the centralized handler,
// and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *errors.Handler, fallbackMsg func(telebot.Context) string) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					if errHandler != nil {
						appErr := errors.NewStateError(fmt.Sprintf("panic recovered: %v", r))
						errHandler.Handle(context.Background(), appErr)
					}

					if c != nil && fallbackMsg != nil {
						if sendErr := c.Send(fallbackMsg(c)); sendErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for
// handler failures. Handlers that already replied return nil; anything else
// surfaces here, gets classified and answered once.
func ErrorHandlingMiddleware(errHandler *errors.Handler, fallbackMsg func(telebot.Context) string) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			userMsg := ""
			if errHandler != nil {
				userMsg, _ = errHandler.Handle(context.Background(), err)
			}
			if userMsg == "" && fallbackMsg != nil {
				userMsg = fallbackMsg(c)
			}

			if c != nil && userMsg != "" {
				_ = c.Send(userMsg)
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates, tagging each
// one with a correlation id so log lines of one turn can be grouped.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			correlationID := uuid.NewString()

			userID := int64(0)
			if c != nil && c.Sender() != nil {
				userID = c.Sender().ID
			}

			action := ""
			if c != nil {
				if cb := c.Callback(); cb != nil {
					action = cb.Data
				} else {
					action = c.Text()
				}
			}

			log.Info("handling update",
				slog.Int64("user_id", userID),
				slog.String("action", action),
				slog.String(logger.CorrelationIDKey, correlationID),
			)
			err := next(c)
			log.Info("handled update",
				slog.Int64("user_id", userID),
				slog.String("action", action),
				slog.String(logger.CorrelationIDKey, correlationID),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

// AuthMiddleware upserts the sender into the user registry on every update.
func AuthMiddleware(userService *user.Service, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if userService == nil || c == nil || c.Sender() == nil {
				return next(c)
			}

			if _, err := userService.Register(context.Background(), c.Sender()); err != nil {
				// registration failure must not block the conversation
				log.Error("failed to register user", slog.Int64("user_id", c.Sender().ID), slog.Any("error", err))
			}

			return next(c)
		}
	}
}

// LastActiveMiddleware records user activity timestamps without blocking
// request flow.
func LastActiveMiddleware(userService *user.Service) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if userService != nil && c != nil && c.Sender() != nil {
				userID := c.Sender().ID

				go func(id int64) {
					_ = userService.TouchLastActive(context.Background(), id)
				}(userID)
			}

			return next(c)
		}
	}
}
