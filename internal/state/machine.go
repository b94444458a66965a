package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
)

const (
	turnLockKeyPattern = "conv:lock:%d:%d"
	// A turn may span a full search round trip, so the lock TTL is generous.
	turnLockTTL       = 2 * time.Minute
	turnLockPollDelay = 50 * time.Millisecond
)

var (
	// ErrInvalidTransition indicates that a requested FSM transition is not allowed.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrStateNotFound indicates that a conversation state record does not exist.
	ErrStateNotFound = errors.New("conversation state not found")
)

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe FSM transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// Machine describes the operations supported by the conversation FSM.
//
// WithTurn serializes whole turns per (user, chat) key: each step's validity
// depends on state written by the immediately preceding step, so turns for
// one conversation must never interleave. Conversations for different keys
// share nothing and proceed concurrently.
type Machine interface {
	GetState(ctx context.Context, userID, chatID int64) (*UserState, error)
	SetState(ctx context.Context, userID, chatID int64, state State, query *domain.SearchQuery) error
	Advance(ctx context.Context, userID, chatID int64, newState State, query *domain.SearchQuery) error
	ClearState(ctx context.Context, userID, chatID int64) error
	GetAllStates(ctx context.Context) ([]*UserState, error)
	WithTurn(ctx context.Context, userID, chatID int64, fn func(context.Context) error) error
}

// machine is a concrete Machine backed by Storage, using Redis for the
// cross-process turn lock with an in-process fallback for tests.
type machine struct {
	storage     Storage
	log         *slog.Logger
	redisClient *redis.Client

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMachine creates the FSM controller. redisClient may be nil, in which
// case turns are serialized with in-process mutexes only.
func NewMachine(storage Storage, log *slog.Logger, redisClient *redis.Client) Machine {
	if log == nil {
		log = slog.Default()
	}

	return &machine{
		storage:     storage,
		log:         log,
		redisClient: redisClient,
		locks:       make(map[string]*sync.Mutex),
	}
}

// GetState proxies to the underlying storage implementation.
func (m *machine) GetState(ctx context.Context, userID, chatID int64) (*UserState, error) {
	return m.storage.GetState(ctx, userID, chatID)
}

// GetAllStates returns every persisted conversation state.
func (m *machine) GetAllStates(ctx context.Context) ([]*UserState, error) {
	return m.storage.GetAllStates(ctx)
}

// SetState persists the state unconditionally. Command handlers use it to
// overwrite whatever conversation was in flight when a new top-level command
// arrives.
func (m *machine) SetState(ctx context.Context, userID, chatID int64, state State, query *domain.SearchQuery) error {
	return m.storage.SetState(ctx, &UserState{
		UserID:       userID,
		ChatID:       chatID,
		CurrentState: state,
		Query:        query,
	})
}

// Advance changes the state only if the transition is allowed, persisting the
// mutated query alongside it.
func (m *machine) Advance(ctx context.Context, userID, chatID int64, newState State, query *domain.SearchQuery) error {
	current := StateIdle

	stored, err := m.storage.GetState(ctx, userID, chatID)
	if err != nil {
		if !errors.Is(err, ErrStateNotFound) {
			return err
		}
	} else if stored != nil {
		current = stored.CurrentState
	}

	if !IsTransitionAllowed(current, newState) {
		m.log.Warn("invalid state transition",
			slog.Int64("user_id", userID),
			slog.Int64("chat_id", chatID),
			slog.String("from", string(current)),
			slog.String("to", string(newState)),
		)
		return ErrInvalidTransition
	}

	transitionRecorder(string(current), string(newState))

	return m.storage.SetState(ctx, &UserState{
		UserID:       userID,
		ChatID:       chatID,
		CurrentState: newState,
		Query:        query,
	})
}

// ClearState discards the conversation, returning the user to idle.
func (m *machine) ClearState(ctx context.Context, userID, chatID int64) error {
	return m.storage.ClearState(ctx, userID, chatID)
}

// WithTurn runs fn while holding the conversation's turn lock. Waiting turns
// block until the holder releases, preserving arrival order within one
// conversation without ever blocking other conversations.
func (m *machine) WithTurn(ctx context.Context, userID, chatID int64, fn func(context.Context) error) error {
	local := m.localLock(userID, chatID)
	local.Lock()
	defer local.Unlock()

	if m.redisClient == nil {
		return fn(ctx)
	}

	key := fmt.Sprintf(turnLockKeyPattern, userID, chatID)
	for {
		acquired, err := m.redisClient.SetNX(ctx, key, 1, turnLockTTL).Result()
		if err != nil {
			m.log.Error("failed to acquire turn lock",
				slog.Int64("user_id", userID),
				slog.Int64("chat_id", chatID),
				slog.Any("error", err),
			)
			return err
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(turnLockPollDelay):
		}
	}

	defer func() {
		if err := m.redisClient.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
			m.log.Error("failed to release turn lock",
				slog.Int64("user_id", userID),
				slog.Int64("chat_id", chatID),
				slog.Any("error", err),
			)
		}
	}()

	return fn(ctx)
}

func (m *machine) localLock(userID, chatID int64) *sync.Mutex {
	key := fmt.Sprintf("%d:%d", userID, chatID)

	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}
