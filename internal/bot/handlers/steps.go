package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
	"github.com/tooeasytravel/hotel-bot/internal/hotels"
	"github.com/tooeasytravel/hotel-bot/internal/input"
	"github.com/tooeasytravel/hotel-bot/internal/state"
)

// NewSteps builds the per-state turn handlers. Each step validates the text
// of the incoming message; on invalid input it re-prompts and returns nil so
// the conversation stays in place.
func NewSteps(d *Deps) map[state.State]Step {
	return map[state.State]Step{
		state.StateAwaitingDistanceMin: stepDistanceMin(d),
		state.StateAwaitingDistanceMax: stepDistanceMax(d),
		state.StateAwaitingCity:        stepCity(d),
		state.StateAwaitingCityChoice:  stepCityChoice(d),
		state.StateAwaitingCheckIn:     stepCheckIn(d),
		state.StateAwaitingCheckOut:    stepCheckOut(d),
		state.StateAwaitingHotelCount:  stepHotelCount(d),
		state.StateAwaitingPhotoChoice: stepPhotoChoice(d),
		state.StateAwaitingPhotoCount:  stepPhotoCount(d),
	}
}

func stepDistanceMin(d *Deps) Step {
	return func(ctx context.Context, c telebot.Context, us *state.UserState) (*StepResult, error) {
		t := d.Translator(c)

		v, ok := input.ParseDistance(c.Text())
		if !ok {
			return nil, c.Send(t.T("error.distance_format"))
		}

		us.Query.DistanceMin = v
		return &StepResult{Next: state.StateAwaitingDistanceMax}, nil
	}
}

func stepDistanceMax(d *Deps) Step {
	return func(ctx context.Context, c telebot.Context, us *state.UserState) (*StepResult, error) {
		t := d.Translator(c)

		v, ok := input.ParseDistance(c.Text())
		if !ok {
			return nil, c.Send(t.T("error.distance_format"))
		}
		if v <= us.Query.DistanceMin {
			return nil, c.Send(t.Tf("error.distance_order", us.Query.DistanceMin))
		}

		us.Query.DistanceMax = v
		return &StepResult{Next: state.StateAwaitingCity}, nil
	}
}

func stepCity(d *Deps) Step {
	return func(ctx context.Context, c telebot.Context, us *state.UserState) (*StepResult, error) {
		t := d.Translator(c)

		name := c.Text()
		candidates, err := d.Hotels.SearchCities(ctx, name)
		if err != nil {
			if errors.Is(err, hotels.ErrNoCitiesFound) {
				return nil, c.Send(t.T("error.city_not_found"))
			}
			d.Log.ErrorContext(ctx, "city search failed", slog.String("city", name), slog.Any("error", err))
			return nil, c.Send(t.T("error.city_server"))
		}

		markup, err := d.Keyboard.CityChoice(candidates)
		if err != nil {
			return nil, err
		}

		us.Query.City = name
		if err := c.Send(t.T("prompt.city_choice"), markup); err != nil {
			return nil, err
		}
		return &StepResult{Next: state.StateAwaitingCityChoice}, nil
	}
}

// stepCityChoice handles plain text sent while a city keyboard is pending.
// The actual choice arrives as a callback, handled by CityChosen.
func stepCityChoice(d *Deps) Step {
	return func(ctx context.Context, c telebot.Context, us *state.UserState) (*StepResult, error) {
		t := d.Translator(c)
		return nil, c.Send(t.T("prompt.city_choice"))
	}
}

func stepCheckIn(d *Deps) Step {
	return func(ctx context.Context, c telebot.Context, us *state.UserState) (*StepResult, error) {
		t := d.Translator(c)

		date, ok := input.ParseDate(c.Text())
		if !ok {
			return nil, c.Send(t.T("error.date_format"))
		}
		if !date.Valid() {
			return nil, c.Send(t.T("error.date_invalid"))
		}
		// Midnight of the entered day must still be ahead, so today itself
		// is already too late to check in.
		if !date.Time().After(time.Now().UTC()) {
			return nil, c.Send(t.T("error.checkin_past"))
		}

		us.Query.CheckIn = date
		return &StepResult{Next: state.StateAwaitingCheckOut}, nil
	}
}

func stepCheckOut(d *Deps) Step {
	return func(ctx context.Context, c telebot.Context, us *state.UserState) (*StepResult, error) {
		t := d.Translator(c)

		date, ok := input.ParseDate(c.Text())
		if !ok {
			return nil, c.Send(t.T("error.date_format"))
		}
		if !date.Valid() {
			return nil, c.Send(t.T("error.date_invalid"))
		}
		if !date.After(us.Query.CheckIn) {
			return nil, c.Send(t.T("error.checkout_before"))
		}

		us.Query.CheckOut = date
		return &StepResult{Next: state.StateAwaitingHotelCount}, nil
	}
}

func stepHotelCount(d *Deps) Step {
	return func(ctx context.Context, c telebot.Context, us *state.UserState) (*StepResult, error) {
		t := d.Translator(c)

		n, ok := input.ParseBoundedInt(c.Text(), domain.MaxHotelCount)
		if !ok {
			return nil, c.Send(t.Tf("error.count_range", domain.MaxHotelCount))
		}

		us.Query.HotelCount = n
		return &StepResult{Next: state.StateAwaitingPhotoChoice}, nil
	}
}

func stepPhotoChoice(d *Deps) Step {
	return func(ctx context.Context, c telebot.Context, us *state.UserState) (*StepResult, error) {
		t := d.Translator(c)

		switch input.ParseYesNo(c.Text(), t.T("answer.yes"), t.T("answer.no")) {
		case input.AnswerYes:
			us.Query.WantPhotos = true
			return &StepResult{Next: state.StateAwaitingPhotoCount}, nil
		case input.AnswerNo:
			us.Query.WantPhotos = false
			us.Query.PhotoCount = 0
			return &StepResult{Terminal: true}, nil
		default:
			return nil, c.Send(t.T("error.yes_no"), d.Keyboard.YesNo(t))
		}
	}
}

func stepPhotoCount(d *Deps) Step {
	return func(ctx context.Context, c telebot.Context, us *state.UserState) (*StepResult, error) {
		t := d.Translator(c)

		n, ok := input.ParseBoundedInt(c.Text(), domain.MaxPhotoCount)
		if !ok {
			return nil, c.Send(t.Tf("error.count_range", domain.MaxPhotoCount))
		}

		us.Query.PhotoCount = n
		return &StepResult{Terminal: true}, nil
	}
}
