package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) GetState(ctx context.Context, userID, chatID int64) (*UserState, error) {
	args := m.Called(ctx, userID, chatID)
	state, _ := args.Get(0).(*UserState)
	return state, args.Error(1)
}

func (m *mockStorage) SetState(ctx context.Context, state *UserState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockStorage) ClearState(ctx context.Context, userID, chatID int64) error {
	args := m.Called(ctx, userID, chatID)
	return args.Error(0)
}

func (m *mockStorage) GetAllStates(ctx context.Context) ([]*UserState, error) {
	args := m.Called(ctx)
	states, _ := args.Get(0).([]*UserState)
	return states, args.Error(1)
}

func TestMachine_Advance(t *testing.T) {
	ctx := context.Background()
	userID, chatID := int64(42), int64(42)
	log := testLogger()

	testCases := []struct {
		name        string
		setupMocks  func(ms *mockStorage)
		newState    State
		expectedErr error
	}{
		{
			name: "successful transition",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID, chatID).
					Return(&UserState{CurrentState: StateAwaitingCity}, nil).Once()
				ms.On("SetState", mock.Anything, mock.MatchedBy(func(state *UserState) bool {
					return state.CurrentState == StateAwaitingCityChoice
				})).Return(nil).Once()
			},
			newState:    StateAwaitingCityChoice,
			expectedErr: nil,
		},
		{
			name: "invalid transition",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID, chatID).
					Return(&UserState{CurrentState: StateAwaitingCity}, nil).Once()
			},
			newState:    StateAwaitingPhotoCount,
			expectedErr: ErrInvalidTransition,
		},
		{
			name: "new conversation starts from idle",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID, chatID).
					Return((*UserState)(nil), ErrStateNotFound).Once()
				ms.On("SetState", mock.Anything, mock.MatchedBy(func(state *UserState) bool {
					return state.CurrentState == StateAwaitingCity
				})).Return(nil).Once()
			},
			newState:    StateAwaitingCity,
			expectedErr: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockStorage{}
			tc.setupMocks(ms)

			fsm := NewMachine(ms, log, nil)
			err := fsm.Advance(ctx, userID, chatID, tc.newState, nil)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			ms.AssertExpectations(t)
		})
	}
}

func TestMachine_AdvancePersistsQuery(t *testing.T) {
	ctx := context.Background()
	log := testLogger()

	query := &domain.SearchQuery{Type: domain.SearchCheapestFirst, City: "Paris"}

	ms := &mockStorage{}
	ms.On("GetState", mock.Anything, int64(1), int64(2)).
		Return(&UserState{CurrentState: StateAwaitingCity}, nil).Once()
	ms.On("SetState", mock.Anything, mock.MatchedBy(func(state *UserState) bool {
		return state.Query != nil && state.Query.City == "Paris" &&
			state.UserID == 1 && state.ChatID == 2
	})).Return(nil).Once()

	fsm := NewMachine(ms, log, nil)
	require.NoError(t, fsm.Advance(ctx, 1, 2, StateAwaitingCityChoice, query))
	ms.AssertExpectations(t)
}

func TestMachine_WithTurnSerializesSameConversation(t *testing.T) {
	fsm := NewMachine(NewMemoryStorage(), testLogger(), nil)
	ctx := context.Background()

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		wg      sync.WaitGroup
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = fsm.WithTurn(ctx, 7, 7, func(context.Context) error {
				mu.Lock()
				running++
				if running > maxSeen {
					maxSeen = running
				}
				mu.Unlock()

				time.Sleep(5 * time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, maxSeen, "turns of one conversation must not interleave")
}

func TestMachine_WithTurnRedisLock(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	fsm := NewMachine(NewMemoryStorage(), testLogger(), client)

	done := make(chan struct{})
	err := fsm.WithTurn(context.Background(), 1, 1, func(context.Context) error {
		close(done)
		return nil
	})

	require.NoError(t, err)
	select {
	case <-done:
	default:
		t.Fatal("turn body was not executed")
	}

	// The lock must be released afterwards.
	exists, err := client.Exists(context.Background(), "conv:lock:1:1").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
