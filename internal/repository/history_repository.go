package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
	apperrors "github.com/tooeasytravel/hotel-bot/internal/errors"
)

// HistoryRepository defines persistence operations for search history.
type HistoryRepository interface {
	Append(ctx context.Context, rec *domain.HistoryRecord) error
	// ListByUser returns the user's records oldest first.
	ListByUser(ctx context.Context, userID int64) ([]domain.HistoryRecord, error)
	// DeleteByUser removes all of the user's records. Deleting an empty
	// history is not an error.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	// PruneOlderThan removes records created before the cutoff, any user.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type historyRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewHistoryRepository creates a new SQL-backed history repository.
func NewHistoryRepository(db *sql.DB, log *slog.Logger) HistoryRepository {
	return &historyRepository{
		db:  db,
		log: log,
	}
}

func (r *historyRepository) Append(ctx context.Context, rec *domain.HistoryRecord) error {
	const query = `
		INSERT INTO search_history (user_id, command, value, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.ExecContext(ctx, query, rec.UserID, rec.Command, rec.Value, rec.CreatedAt); err != nil {
		if r.log != nil {
			r.log.Error("failed to append history", slog.Int64("user_id", rec.UserID), slog.Any("error", err))
		}
		// Typed as a database error so the retry helper treats it as
		// transient.
		return apperrors.NewDatabaseError(fmt.Errorf("insert history record: %w", err))
	}
	return nil
}

func (r *historyRepository) ListByUser(ctx context.Context, userID int64) ([]domain.HistoryRecord, error) {
	const query = `
		SELECT id, user_id, command, value, created_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Errorf("select history: %w", err))
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Command, &rec.Value, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	return records, nil
}

func (r *historyRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	const query = `DELETE FROM search_history WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to delete history", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return 0, apperrors.NewDatabaseError(fmt.Errorf("delete history: %w", err))
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

func (r *historyRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM search_history WHERE created_at < $1`

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, apperrors.NewDatabaseError(fmt.Errorf("prune history: %w", err))
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
