package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryLimiter is the process-local fallback used while Redis is down. It
// is stricter than the shared limiter on purpose: with several bot instances
// each counting independently, a halved budget keeps the combined volume
// near the configured one.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	checks  int
	log     *slog.Logger
}

// every sweepEvery checks, buckets idle longer than sweepIdle are dropped
const (
	sweepEvery = 1024
	sweepIdle  = 10 * time.Minute
)

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter returns an in-memory sliding-window limiter.
func NewMemoryLimiter(log *slog.Logger) Limiter {
	if log == nil {
		log = slog.Default()
	}

	return &MemoryLimiter{
		buckets: make(map[string][]time.Time),
		log:     log,
	}
}

func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.checks++
	if m.checks%sweepEvery == 0 {
		m.sweepLocked(now.Add(-sweepIdle))
	}

	hits := trimBefore(m.buckets[key], windowStart)

	allowed := len(hits) < limit
	if allowed {
		hits = append(hits, now)
	}
	m.buckets[key] = hits

	remaining := limit - len(hits)
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   now.Add(window),
	}

	if !allowed {
		return result, ErrLimitExceeded
	}
	return result, nil
}

// sweepLocked drops buckets whose newest hit predates cutoff, bounding
// memory during long Redis outages. Caller holds mu.
func (m *MemoryLimiter) sweepLocked(cutoff time.Time) {
	for key, hits := range m.buckets {
		if len(hits) == 0 || hits[len(hits)-1].Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}

func trimBefore(hits []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(hits) && hits[idx].Before(cutoff) {
		idx++
	}
	if idx == 0 {
		return hits
	}

	copy(hits, hits[idx:])
	return hits[:len(hits)-idx]
}
