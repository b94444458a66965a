// Package ratelimit throttles per-user update volume. The hotel API quota is
// shared by every conversation, so one user flooding the chat must not starve
// everyone else's searches.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrLimitExceeded is returned together with a rejecting Result when the
// user's window is exhausted.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Result is the outcome of one limit evaluation.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter evaluates a sliding-window limit for a key.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
