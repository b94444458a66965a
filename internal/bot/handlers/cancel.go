package handlers

import (
	"context"
	"errors"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/state"
)

// NewCancelHandler abandons the conversation in flight, if any.
func NewCancelHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		userID, chatID, ok := conversationIDs(c)
		if !ok {
			return nil
		}

		return d.FSM.WithTurn(context.Background(), userID, chatID, func(ctx context.Context) error {
			t := d.Translator(c)

			us, err := d.FSM.GetState(ctx, userID, chatID)
			if err != nil {
				if errors.Is(err, state.ErrStateNotFound) {
					return c.Send(t.T("cancel.nothing"))
				}
				return err
			}
			if us.CurrentState == state.StateIdle {
				return c.Send(t.T("cancel.nothing"))
			}

			if err := d.FSM.ClearState(ctx, userID, chatID); err != nil {
				return err
			}
			return c.Send(t.T("cancel.done"), d.Keyboard.Remove())
		})
	}
}
