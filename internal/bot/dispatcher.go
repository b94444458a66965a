package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/bot/handlers"
	"github.com/tooeasytravel/hotel-bot/internal/state"
)

// Dispatcher routes plain text updates to the step handler of the state the
// conversation currently sits in, serializing turns per (user, chat) pair so
// two racing messages cannot both advance the same conversation.
type Dispatcher struct {
	deps  *handlers.Deps
	steps map[state.State]handlers.Step
	log   *slog.Logger
	mu    sync.RWMutex
}

// NewDispatcher creates a Dispatcher with an empty step registry.
func NewDispatcher(deps *handlers.Deps, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		deps:  deps,
		steps: make(map[state.State]handlers.Step),
		log:   log,
	}
}

// RegisterStep registers the step handler for a state.
func (d *Dispatcher) RegisterStep(s state.State, step handlers.Step) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.steps[s] = step
}

// Dispatch runs one conversation turn. It returns (false, nil) when there is
// no conversation to apply the message to.
func (d *Dispatcher) Dispatch(c telebot.Context) (bool, error) {
	if c == nil || c.Sender() == nil || c.Chat() == nil {
		d.log.Warn("cannot dispatch without sender information")
		return false, nil
	}

	userID := c.Sender().ID
	chatID := c.Chat().ID

	handled := false
	err := d.deps.FSM.WithTurn(context.Background(), userID, chatID, func(ctx context.Context) error {
		us, err := d.deps.FSM.GetState(ctx, userID, chatID)
		if err != nil {
			if errors.Is(err, state.ErrStateNotFound) {
				return nil
			}
			return err
		}
		if us.CurrentState == state.StateIdle || us.Query == nil {
			return nil
		}

		step := d.getStep(us.CurrentState)
		if step == nil {
			d.log.Warn("no step registered for state",
				slog.String("state", string(us.CurrentState)),
				slog.Int64("user_id", userID),
			)
			return nil
		}

		handled = true
		result, err := step(ctx, c, us)
		if err != nil {
			return err
		}
		if result == nil {
			// invalid input, the step already re-prompted
			return nil
		}

		if result.Next != "" {
			if err := d.deps.FSM.Advance(ctx, userID, chatID, result.Next, us.Query); err != nil {
				return err
			}
			if result.Next != state.StateAwaitingCityChoice {
				if err := handlers.SendStatePrompt(c, result.Next, d.deps); err != nil {
					return err
				}
			}
		}

		if result.Terminal {
			return handlers.RunSearch(ctx, c, d.deps, us)
		}
		return nil
	})

	return handled, err
}

func (d *Dispatcher) getStep(s state.State) handlers.Step {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.steps[s]
}
