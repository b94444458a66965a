package state

import (
	"time"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
)

// State represents one point of the search conversation awaiting a specific
// piece of user input.
type State string

const (
	// StateIdle indicates that the bot is waiting for the next command.
	StateIdle State = "idle"
	// StateAwaitingDistanceMin is the first bestdeal step collecting the lower distance bound.
	StateAwaitingDistanceMin State = "awaiting_distance_min"
	// StateAwaitingDistanceMax collects the upper distance bound.
	StateAwaitingDistanceMax State = "awaiting_distance_max"
	// StateAwaitingCity collects the free-text city name.
	StateAwaitingCity State = "awaiting_city"
	// StateAwaitingCityChoice waits for the user to pick one city candidate.
	StateAwaitingCityChoice State = "awaiting_city_choice"
	// StateAwaitingCheckIn collects the check-in date.
	StateAwaitingCheckIn State = "awaiting_check_in"
	// StateAwaitingCheckOut collects the check-out date.
	StateAwaitingCheckOut State = "awaiting_check_out"
	// StateAwaitingHotelCount collects how many hotels to show.
	StateAwaitingHotelCount State = "awaiting_hotel_count"
	// StateAwaitingPhotoChoice collects whether photos are wanted.
	StateAwaitingPhotoChoice State = "awaiting_photo_choice"
	// StateAwaitingPhotoCount collects how many photos to show.
	StateAwaitingPhotoCount State = "awaiting_photo_count"
)

// All returns every conversation state, idle first.
func All() []State {
	return []State{
		StateIdle,
		StateAwaitingDistanceMin,
		StateAwaitingDistanceMax,
		StateAwaitingCity,
		StateAwaitingCityChoice,
		StateAwaitingCheckIn,
		StateAwaitingCheckOut,
		StateAwaitingHotelCount,
		StateAwaitingPhotoChoice,
		StateAwaitingPhotoCount,
	}
}

// UserState captures one (user, chat) conversation: the current FSM state
// plus the search parameters collected so far.
type UserState struct {
	UserID       int64               `json:"user_id"`
	ChatID       int64               `json:"chat_id"`
	CurrentState State               `json:"current_state"`
	Query        *domain.SearchQuery `json:"query,omitempty"`
	UpdatedAt    time.Time           `json:"updated_at"`
}
