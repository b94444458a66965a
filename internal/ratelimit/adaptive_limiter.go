package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	limiterChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratelimit_checks_total",
		Help: "Rate limit checks by backend and result.",
	}, []string{"backend", "result"})

	limiterRedisErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratelimit_redis_errors_total",
		Help: "Redis errors encountered by the limiter.",
	})
)

// AdaptiveLimiter asks the shared Redis limiter first and degrades to the
// in-memory one when Redis errors, halving the budget since each instance
// then counts alone.
type AdaptiveLimiter struct {
	primary  Limiter
	fallback Limiter
	log      *slog.Logger
}

var _ Limiter = (*AdaptiveLimiter)(nil)

// NewAdaptiveLimiter combines the Redis limiter with its in-memory fallback.
func NewAdaptiveLimiter(primary, fallback Limiter, log *slog.Logger) Limiter {
	if log == nil {
		log = slog.Default()
	}

	return &AdaptiveLimiter{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

func (a *AdaptiveLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	result, err := a.primary.Check(ctx, key, limit, window)
	if err == nil {
		return observe("redis", result)
	}

	limiterRedisErrorsTotal.Inc()
	a.log.Warn("redis limiter failed, degrading to in-memory",
		slog.String("key", key),
		slog.Any("error", err),
	)

	if a.fallback == nil {
		return result, err
	}

	degraded := limit / 2
	if degraded <= 0 {
		degraded = 1
	}

	result, err = a.fallback.Check(ctx, key, degraded, window)
	if err != nil && err != ErrLimitExceeded {
		return result, err
	}
	return observe("memory", result)
}

func observe(backend string, result *Result) (*Result, error) {
	if result.Allowed {
		limiterChecksTotal.WithLabelValues(backend, "allowed").Inc()
		return result, nil
	}

	limiterChecksTotal.WithLabelValues(backend, "rejected").Inc()
	return result, ErrLimitExceeded
}
