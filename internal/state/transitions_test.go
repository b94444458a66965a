package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransitionAllowed_HappyPath(t *testing.T) {
	// The full price-search flow in order.
	path := []State{
		StateIdle,
		StateAwaitingCity,
		StateAwaitingCityChoice,
		StateAwaitingCheckIn,
		StateAwaitingCheckOut,
		StateAwaitingHotelCount,
		StateAwaitingPhotoChoice,
		StateAwaitingPhotoCount,
	}

	for i := 0; i < len(path)-1; i++ {
		assert.True(t, IsTransitionAllowed(path[i], path[i+1]),
			"expected %s -> %s to be allowed", path[i], path[i+1])
	}
}

func TestIsTransitionAllowed_BestDealBranch(t *testing.T) {
	// bestdeal collects distance bounds before the city and then rejoins
	// the shared path.
	assert.True(t, IsTransitionAllowed(StateIdle, StateAwaitingDistanceMin))
	assert.True(t, IsTransitionAllowed(StateAwaitingDistanceMin, StateAwaitingDistanceMax))
	assert.True(t, IsTransitionAllowed(StateAwaitingDistanceMax, StateAwaitingCity))
}

func TestIsTransitionAllowed_NoSkipping(t *testing.T) {
	testCases := []struct {
		from State
		to   State
	}{
		{StateIdle, StateAwaitingCheckIn},
		{StateAwaitingCity, StateAwaitingCheckIn},
		{StateAwaitingCityChoice, StateAwaitingHotelCount},
		{StateAwaitingCheckIn, StateAwaitingHotelCount},
		{StateAwaitingPhotoChoice, StateAwaitingCity},
		{StateAwaitingDistanceMin, StateAwaitingCity},
		{StateAwaitingPhotoCount, StateAwaitingPhotoChoice},
	}

	for _, tc := range testCases {
		assert.False(t, IsTransitionAllowed(tc.from, tc.to),
			"expected %s -> %s to be rejected", tc.from, tc.to)
	}
}

func TestIsTransitionAllowed_IdleAlwaysReachable(t *testing.T) {
	for _, from := range All() {
		assert.True(t, IsTransitionAllowed(from, StateIdle),
			"expected %s -> idle to be allowed", from)
	}
}
