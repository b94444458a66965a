package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/bot/keyboard"
	"github.com/tooeasytravel/hotel-bot/internal/domain"
	"github.com/tooeasytravel/hotel-bot/internal/i18n"
	"github.com/tooeasytravel/hotel-bot/internal/state"
)

// promptFor returns the message that asks for the input the given state
// collects, plus any keyboard that should accompany it. It is sent whenever
// a conversation enters the state, regardless of where it came from.
func promptFor(s state.State, t i18n.Translator, kb *keyboard.Builder) (string, []any) {
	switch s {
	case state.StateAwaitingDistanceMin:
		return t.T("prompt.distance_min"), nil
	case state.StateAwaitingDistanceMax:
		return t.T("prompt.distance_max"), nil
	case state.StateAwaitingCity:
		return t.T("prompt.city"), nil
	case state.StateAwaitingCityChoice:
		// the city step sends this one itself, with the candidate keyboard
		return t.T("prompt.city_choice"), nil
	case state.StateAwaitingCheckIn:
		return t.T("prompt.checkin"), nil
	case state.StateAwaitingCheckOut:
		return t.T("prompt.checkout"), nil
	case state.StateAwaitingHotelCount:
		return t.Tf("prompt.hotel_count", domain.MaxHotelCount), nil
	case state.StateAwaitingPhotoChoice:
		var opts []any
		if kb != nil {
			opts = append(opts, kb.YesNo(t))
		}
		return t.T("prompt.photo_choice"), opts
	case state.StateAwaitingPhotoCount:
		var opts []any
		if kb != nil {
			opts = append(opts, kb.Remove())
		}
		return t.Tf("prompt.photo_count", domain.MaxPhotoCount), opts
	}
	return "", nil
}

// SendStatePrompt delivers the prompt for the state the conversation just
// entered, used by the dispatcher after a successful transition.
func SendStatePrompt(c telebot.Context, s state.State, d *Deps) error {
	return sendPrompt(c, s, d.Translator(c), d.Keyboard)
}

// sendPrompt delivers the prompt for the state the conversation just entered.
func sendPrompt(c telebot.Context, s state.State, t i18n.Translator, kb *keyboard.Builder) error {
	text, opts := promptFor(s, t, kb)
	if text == "" {
		return nil
	}
	return c.Send(text, opts...)
}
