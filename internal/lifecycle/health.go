package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tooeasytravel/hotel-bot/internal/health"
)

// HealthChecker exposes liveness and readiness probes.
type HealthChecker interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) error
}

// Probes implements HealthChecker on top of the component health checker.
type Probes struct {
	checker *health.Checker
	log     *slog.Logger
}

// NewProbes creates a new Probes instance. The checker may be nil, in which
// case readiness always succeeds.
func NewProbes(checker *health.Checker, log *slog.Logger) *Probes {
	if log == nil {
		log = slog.Default()
	}
	return &Probes{checker: checker, log: log}
}

// Liveness reports whether the process itself is running.
func (p *Probes) Liveness(ctx context.Context) error {
	return nil
}

// Readiness fails when any registered dependency check fails.
func (p *Probes) Readiness(ctx context.Context) error {
	if p.checker == nil {
		return nil
	}

	for name, err := range p.checker.Check(ctx) {
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
