package state

// validTransitions contains the permitted forward transitions of the search
// conversation. The bestdeal flow enters at awaiting_distance_min and rejoins
// the shared path at awaiting_city; re-prompts are not transitions.
var validTransitions = map[State][]State{
	StateIdle: {
		StateAwaitingCity,
		StateAwaitingDistanceMin,
	},
	StateAwaitingDistanceMin: {
		StateAwaitingDistanceMax,
	},
	StateAwaitingDistanceMax: {
		StateAwaitingCity,
	},
	StateAwaitingCity: {
		StateAwaitingCityChoice,
	},
	StateAwaitingCityChoice: {
		StateAwaitingCheckIn,
	},
	StateAwaitingCheckIn: {
		StateAwaitingCheckOut,
	},
	StateAwaitingCheckOut: {
		StateAwaitingHotelCount,
	},
	StateAwaitingHotelCount: {
		StateAwaitingPhotoChoice,
	},
	StateAwaitingPhotoChoice: {
		StateAwaitingPhotoCount,
	},
	StateAwaitingPhotoCount: {},
}

// IsTransitionAllowed reports whether moving from one state to another is
// valid. Returning to idle (completion, cancellation, command overwrite) is
// always permitted.
func IsTransitionAllowed(from, to State) bool {
	if to == StateIdle {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
