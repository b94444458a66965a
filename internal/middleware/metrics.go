package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/bot/handlers"
	"github.com/tooeasytravel/hotel-bot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them
// to Prometheus. Free text turns are folded into one label to keep the
// cardinality bounded.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		command := extractCommandName(c)
		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordCommand(command, status, time.Since(start))

		return err
	}
}

func extractCommandName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		data := strings.TrimPrefix(cb.Data, "\f")
		if i := strings.Index(data, ":"); i != -1 {
			data = data[:i]
		}
		return "cb:" + data
	}

	if text := c.Text(); strings.HasPrefix(text, "/") {
		if i := strings.IndexAny(text, " @\n"); i != -1 {
			text = text[:i]
		}
		return text
	}

	return "text"
}
