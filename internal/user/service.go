package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
	"github.com/tooeasytravel/hotel-bot/internal/repository"
	"github.com/tooeasytravel/hotel-bot/internal/usercache"
)

const cacheTTL = 15 * time.Minute

// Service provides business operations over users.
type Service struct {
	repo  repository.UserRepository
	cache *usercache.Cache
	log   *slog.Logger
}

// NewService constructs a new Service instance. The cache may be nil.
func NewService(repo repository.UserRepository, cache *usercache.Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// Register upserts the sender's profile on every update so the registry
// tracks profile changes and activity without an explicit signup step.
func (s *Service) Register(ctx context.Context, tg *telebot.User) (*domain.User, error) {
	if tg == nil {
		return nil, errors.New("telegram user is nil")
	}

	now := time.Now().UTC()
	u := &domain.User{
		TelegramID:   tg.ID,
		FirstName:    tg.FirstName,
		LastName:     tg.LastName,
		Username:     tg.Username,
		LanguageCode: tg.LanguageCode,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	if err := s.repo.Upsert(ctx, u); err != nil {
		s.logError("register", tg.ID, err)
		return nil, fmt.Errorf("register user: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tg.ID, u, cacheTTL); err != nil {
			s.logError("register.cache", tg.ID, err)
		}
	}

	return u, nil
}

// TouchLastActive refreshes the last_active_at field for the user.
func (s *Service) TouchLastActive(ctx context.Context, telegramID int64) error {
	if err := s.repo.TouchLastActive(ctx, telegramID); err != nil {
		s.logError("touch_last_active", telegramID, err)
		return err
	}
	return nil
}

// PreferredLanguage returns the language the bot should answer in. A stored
// preference wins over what the Telegram client reports.
func (s *Service) PreferredLanguage(ctx context.Context, telegramID int64, clientLang string) string {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, telegramID); err == nil && cached != nil && cached.LanguageCode != "" {
			return cached.LanguageCode
		}
	}

	u, err := s.repo.FindByTelegramID(ctx, telegramID)
	if err == nil && u.LanguageCode != "" {
		if s.cache != nil {
			_ = s.cache.Set(ctx, telegramID, u, cacheTTL)
		}
		return u.LanguageCode
	}

	return clientLang
}

// SetLanguage stores a reply-language preference chosen via the bot.
func (s *Service) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	if err := s.repo.SetLanguage(ctx, telegramID, lang); err != nil {
		s.logError("set_language", telegramID, err)
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, telegramID); err != nil {
			s.logError("set_language.cache", telegramID, err)
		}
	}

	return nil
}

func (s *Service) logError(operation string, telegramID int64, err error) {
	if s == nil || s.log == nil || err == nil {
		return
	}

	s.log.Error("user service operation failed",
		slog.String("operation", operation),
		slog.Int64("telegram_id", telegramID),
		slog.Any("error", err),
	)
}
