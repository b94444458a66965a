// Package state manages per-conversation FSM state for the bot.
package state

import "context"

// Storage defines the persistence contract for conversation FSM state.
type Storage interface {
	// GetState returns the current state for the specified conversation.
	GetState(ctx context.Context, userID, chatID int64) (*UserState, error)
	// SetState saves the provided state for its conversation.
	SetState(ctx context.Context, state *UserState) error
	// ClearState removes the state for the specified conversation.
	ClearState(ctx context.Context, userID, chatID int64) error
	// GetAllStates returns every stored conversation state.
	GetAllStates(ctx context.Context) ([]*UserState, error)
}
