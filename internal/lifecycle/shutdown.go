// Package lifecycle owns process-level concerns: coordinated shutdown of the
// bot's components and the HTTP health probes.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// Shutdown runs registered hooks in parallel when the process stops. The
// bot, the job worker and the scheduler have no ordering dependencies
// between them, so sequential teardown would only waste the shutdown
// deadline.
type Shutdown struct {
	mu    sync.Mutex
	hooks []hook
	log   *slog.Logger
}

func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{log: log}
}

// Register adds a named hook. Registration order does not matter.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook{name: name, fn: fn})
}

// Execute runs every hook concurrently and waits for all of them, collecting
// failures into one error.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	hooks := append([]hook(nil), s.hooks...)
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("hooks", len(hooks)))

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)

	for _, h := range hooks {
		wg.Add(1)
		go func(h hook) {
			defer wg.Done()

			if err := h.fn(ctx); err != nil {
				s.log.Error("shutdown hook failed",
					slog.String("hook", h.name),
					slog.Any("error", err),
				)
				errMu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
				errMu.Unlock()
				return
			}

			s.log.Debug("shutdown hook completed", slog.String("hook", h.name))
		}(h)
	}

	wg.Wait()
	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))

	return errors.Join(errs...)
}
