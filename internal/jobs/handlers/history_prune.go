package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tooeasytravel/hotel-bot/internal/history"
	"github.com/tooeasytravel/hotel-bot/internal/jobs"
)

const defaultRetention = 90 * 24 * time.Hour

type HistoryPruneHandler struct {
	history *history.Service
	log     *slog.Logger
}

func NewHistoryPruneHandler(historySvc *history.Service, log *slog.Logger) *HistoryPruneHandler {
	return &HistoryPruneHandler{history: historySvc, log: log}
}

func (h *HistoryPruneHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.HistoryPrunePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "history prune: failed to decode payload",
				slog.Any("task_type", t.Type()),
				slog.String("error", err.Error()),
			)
		}
		return err
	}

	retention := payload.Retention
	if retention <= 0 {
		retention = defaultRetention
	}

	removed, err := h.history.Prune(ctx, retention)
	if err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "history prune failed", slog.Any("error", err))
		}
		return err
	}

	if h.log != nil {
		h.log.InfoContext(ctx, "history prune finished",
			slog.Duration("retention", retention),
			slog.Int64("removed", removed),
		)
	}

	return nil
}
