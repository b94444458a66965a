package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/bot/keyboard"
	"github.com/tooeasytravel/hotel-bot/internal/history"
	"github.com/tooeasytravel/hotel-bot/internal/hotels"
	"github.com/tooeasytravel/hotel-bot/internal/i18n"
	"github.com/tooeasytravel/hotel-bot/internal/search"
	"github.com/tooeasytravel/hotel-bot/internal/state"
	"github.com/tooeasytravel/hotel-bot/internal/user"
)

// Deps bundles the collaborators every conversation handler needs.
type Deps struct {
	FSM      state.Machine
	Hotels   hotels.API
	Search   *search.Orchestrator
	History  *history.Service
	Users    *user.Service
	Keyboard *keyboard.Builder
	I18n     *i18n.Manager
	Log      *slog.Logger
}

// Translator picks the translator for the sender, preferring a language the
// user chose over the one their Telegram client reports.
func (d *Deps) Translator(c telebot.Context) i18n.Translator {
	lang := ""
	if c != nil && c.Sender() != nil {
		lang = c.Sender().LanguageCode
		if d.Users != nil {
			lang = d.Users.PreferredLanguage(context.Background(), c.Sender().ID, lang)
		}
	}
	return d.I18n.Translator(lang)
}

// conversationIDs extracts the (user, chat) pair a turn belongs to.
func conversationIDs(c telebot.Context) (userID, chatID int64, ok bool) {
	if c == nil || c.Sender() == nil || c.Chat() == nil {
		return 0, 0, false
	}
	return c.Sender().ID, c.Chat().ID, true
}
