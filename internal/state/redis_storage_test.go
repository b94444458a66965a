package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
)

func TestRedisStorage_SetAndGet(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger(), time.Hour)

	ctx := context.Background()
	userState := &UserState{
		UserID:       123,
		ChatID:       456,
		CurrentState: StateAwaitingCheckIn,
		Query: &domain.SearchQuery{
			Command:  "/lowprice",
			Type:     domain.SearchCheapestFirst,
			City:     "Paris",
			RegionID: "2734",
		},
	}

	err := storage.SetState(ctx, userState)
	require.NoError(t, err)

	result, err := storage.GetState(ctx, 123, 456)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, userState.UserID, result.UserID)
	assert.Equal(t, userState.ChatID, result.ChatID)
	assert.Equal(t, userState.CurrentState, result.CurrentState)
	require.NotNil(t, result.Query)
	assert.Equal(t, "2734", result.Query.RegionID)
	assert.False(t, result.UpdatedAt.IsZero())
}

func TestRedisStorage_GetNotFound(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger(), time.Hour)

	state, err := storage.GetState(context.Background(), 999, 999)
	assert.Nil(t, state)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStorage_ClearState(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger(), time.Hour)

	ctx := context.Background()
	userState := &UserState{
		UserID:       456,
		ChatID:       456,
		CurrentState: StateAwaitingHotelCount,
	}

	require.NoError(t, storage.SetState(ctx, userState))
	require.NoError(t, storage.ClearState(ctx, 456, 456))

	state, err := storage.GetState(ctx, 456, 456)
	assert.Nil(t, state)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStorage_GetAllStates(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger(), time.Hour)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, storage.SetState(ctx, &UserState{
			UserID:       i,
			ChatID:       i,
			CurrentState: StateAwaitingCity,
		}))
	}

	states, err := storage.GetAllStates(ctx)
	require.NoError(t, err)
	assert.Len(t, states, 3)
}
