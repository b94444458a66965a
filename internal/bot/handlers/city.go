package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/bot/keyboard"
	"github.com/tooeasytravel/hotel-bot/internal/state"
)

// CityChosen handles the city disambiguation button press. The callback data
// carries the region identifier; the conversation must still be waiting for
// the choice, otherwise the press is a leftover from an abandoned search.
func CityChosen(d *Deps) CallbackHandler {
	return func(c telebot.Context) error {
		userID, chatID, ok := conversationIDs(c)
		if !ok {
			return nil
		}

		cb := c.Callback()
		if cb == nil {
			return nil
		}

		_, regionID, err := keyboard.DecodeCallback(cb.Data)
		if err != nil || regionID == "" {
			d.Log.Warn("malformed city callback", slog.String("data", cb.Data))
			return c.Respond()
		}

		return d.FSM.WithTurn(context.Background(), userID, chatID, func(ctx context.Context) error {
			us, err := d.FSM.GetState(ctx, userID, chatID)
			if err != nil {
				if errors.Is(err, state.ErrStateNotFound) {
					return c.Respond()
				}
				return err
			}

			if us.CurrentState != state.StateAwaitingCityChoice || us.Query == nil {
				// stale button from an earlier conversation
				return c.Respond()
			}

			us.Query.RegionID = regionID
			if err := d.FSM.Advance(ctx, userID, chatID, state.StateAwaitingCheckIn, us.Query); err != nil {
				return err
			}

			if err := c.Respond(); err != nil {
				d.Log.Warn("failed to ack city callback", slog.Any("error", err))
			}
			return sendPrompt(c, state.StateAwaitingCheckIn, d.Translator(c), d.Keyboard)
		})
	}
}
