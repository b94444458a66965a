package state

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStorage is an in-process Storage implementation used in tests and
// single-instance development setups.
type MemoryStorage struct {
	mu     sync.RWMutex
	states map[string]*UserState
}

// NewMemoryStorage constructs an empty in-memory Storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		states: make(map[string]*UserState),
	}
}

// GetState returns the stored conversation state or ErrStateNotFound.
func (s *MemoryStorage) GetState(_ context.Context, userID, chatID int64) (*UserState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[memKey(userID, chatID)]
	if !ok {
		return nil, ErrStateNotFound
	}

	copied := *state
	return &copied, nil
}

// SetState saves the provided conversation state.
func (s *MemoryStorage) SetState(_ context.Context, state *UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.UpdatedAt = time.Now().UTC()
	copied := *state
	s.states[memKey(state.UserID, state.ChatID)] = &copied
	return nil
}

// ClearState removes the stored state for the given conversation.
func (s *MemoryStorage) ClearState(_ context.Context, userID, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, memKey(userID, chatID))
	return nil
}

// GetAllStates returns every stored conversation state.
func (s *MemoryStorage) GetAllStates(_ context.Context) ([]*UserState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*UserState, 0, len(s.states))
	for _, state := range s.states {
		copied := *state
		result = append(result, &copied)
	}
	return result, nil
}

func memKey(userID, chatID int64) string {
	return fmt.Sprintf("%d:%d", userID, chatID)
}
