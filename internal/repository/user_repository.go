package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
	apperrors "github.com/tooeasytravel/hotel-bot/internal/errors"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	// Upsert inserts the user on first contact and refreshes the mutable
	// profile fields plus last_active_at on every later one.
	Upsert(ctx context.Context, user *domain.User) error
	TouchLastActive(ctx context.Context, telegramID int64) error
	SetLanguage(ctx context.Context, telegramID int64, lang string) error
}

type userRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewUserRepository creates a new SQL-backed user repository.
func NewUserRepository(db *sql.DB, log *slog.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log,
	}
}

// FindByTelegramID retrieves a user by their Telegram identifier.
func (r *userRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	const query = `
		SELECT id, telegram_id, first_name, last_name, username, language_code, created_at, last_active_at
		FROM users
		WHERE telegram_id = $1
	`

	row := r.db.QueryRowContext(ctx, query, telegramID)

	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.LanguageCode,
		&user.CreatedAt,
		&user.LastActiveAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}

		if r.log != nil {
			r.log.Error("failed to fetch user by telegram id", slog.Int64("telegram_id", telegramID), slog.Any("error", err))
		}
		return nil, apperrors.NewDatabaseError(fmt.Errorf("select user by telegram id: %w", err))
	}

	return &user, nil
}

// Upsert persists the user, updating profile fields when the row exists.
func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (telegram_id, first_name, last_name, username, language_code, created_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (telegram_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			username = EXCLUDED.username,
			language_code = EXCLUDED.language_code,
			last_active_at = EXCLUDED.last_active_at
	`

	if _, err := r.db.ExecContext(
		ctx,
		query,
		user.TelegramID,
		user.FirstName,
		user.LastName,
		user.Username,
		user.LanguageCode,
		user.CreatedAt,
	); err != nil {
		if r.log != nil {
			r.log.Error("failed to upsert user", slog.Int64("telegram_id", user.TelegramID), slog.Any("error", err))
		}
		return apperrors.NewDatabaseError(fmt.Errorf("upsert user: %w", err))
	}

	return nil
}

// TouchLastActive bumps last_active_at for an existing user.
func (r *userRepository) TouchLastActive(ctx context.Context, telegramID int64) error {
	const query = `UPDATE users SET last_active_at = NOW() WHERE telegram_id = $1`

	if _, err := r.db.ExecContext(ctx, query, telegramID); err != nil {
		return apperrors.NewDatabaseError(fmt.Errorf("touch last active: %w", err))
	}
	return nil
}

// SetLanguage stores the user's preferred reply language.
func (r *userRepository) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	const query = `UPDATE users SET language_code = $2 WHERE telegram_id = $1`

	if _, err := r.db.ExecContext(ctx, query, telegramID, lang); err != nil {
		return apperrors.NewDatabaseError(fmt.Errorf("set language: %w", err))
	}
	return nil
}
