package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
	apperrors "github.com/tooeasytravel/hotel-bot/internal/errors"
	"github.com/tooeasytravel/hotel-bot/internal/repository"
	"github.com/tooeasytravel/hotel-bot/pkg/metrics"
)

// Service records completed searches and serves the history commands.
type Service struct {
	repo repository.HistoryRepository
	log  *slog.Logger
}

func NewService(repo repository.HistoryRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "history"),
	}
}

// Record appends one entry for a finished search. Every search is recorded,
// including ones that matched no hotels. Failures are retried and then
// logged; a history write must never break the search reply itself.
func (s *Service) Record(ctx context.Context, userID int64, command string, results []domain.HotelResult) {
	rec := &domain.HistoryRecord{
		UserID:    userID,
		Command:   command,
		Value:     FormatResults(results),
		CreatedAt: time.Now().UTC(),
	}

	err := apperrors.WithRetry(ctx, func() error {
		return s.repo.Append(ctx, rec)
	})
	if err != nil {
		metrics.RecordHistoryWrite("error")
		s.log.ErrorContext(ctx, "history write failed",
			slog.Int64("user_id", userID),
			slog.String("command", command),
			slog.Any("error", err),
		)
		return
	}
	metrics.RecordHistoryWrite("success")
}

// List returns the user's history, oldest search first.
func (s *Service) List(ctx context.Context, userID int64) ([]domain.HistoryRecord, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Clear deletes the user's entire history and reports how many records
// were removed. Clearing an already empty history succeeds with zero.
func (s *Service) Clear(ctx context.Context, userID int64) (int64, error) {
	return s.repo.DeleteByUser(ctx, userID)
}

// Prune removes records older than the retention window.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	removed, err := s.repo.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.log.InfoContext(ctx, "pruned history records",
			slog.Int64("removed", removed),
			slog.Time("cutoff", cutoff),
		)
	}
	return removed, nil
}
