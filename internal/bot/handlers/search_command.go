package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
	"github.com/tooeasytravel/hotel-bot/internal/state"
)

// NewSearchCommand starts a fresh search conversation. Issuing a search
// command always discards whatever conversation was in flight.
func NewSearchCommand(d *Deps, searchType domain.SearchType) Handler {
	return func(c telebot.Context) error {
		userID, chatID, ok := conversationIDs(c)
		if !ok {
			return nil
		}

		return d.FSM.WithTurn(context.Background(), userID, chatID, func(ctx context.Context) error {
			query := &domain.SearchQuery{
				Command: "/" + string(searchType),
				Type:    searchType,
			}

			first := state.StateAwaitingCity
			if searchType == domain.SearchBestDeal {
				first = state.StateAwaitingDistanceMin
			}

			if err := d.FSM.SetState(ctx, userID, chatID, first, query); err != nil {
				return err
			}

			return sendPrompt(c, first, d.Translator(c), d.Keyboard)
		})
	}
}
