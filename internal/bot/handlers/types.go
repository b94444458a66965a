package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/state"
)

// Handler processes bot commands.
type Handler func(c telebot.Context) error

// CallbackHandler processes inline callback events.
type CallbackHandler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// Step processes one conversation turn for the state the user currently sits
// in. A nil result means the user stays put; the step has already sent its
// re-prompt in that case.
type Step func(ctx context.Context, c telebot.Context, us *state.UserState) (*StepResult, error)

// StepResult tells the dispatcher what to do after a step accepted input.
type StepResult struct {
	// Next is the state to advance to. Empty means no transition.
	Next state.State
	// Terminal requests the search to run and the conversation to end.
	Terminal bool
}
