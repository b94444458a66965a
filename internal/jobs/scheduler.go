package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

type Scheduler interface {
	RegisterTasks() error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	pruneSchedule  string
	retention      time.Duration
	log            *slog.Logger
}

// NewScheduler builds the cron-style scheduler. pruneSchedule is a cron
// expression; retention is the history age the prune task enforces.
func NewScheduler(redisOpt asynq.RedisConnOpt, pruneSchedule string, retention time.Duration, log *slog.Logger) Scheduler {
	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		pruneSchedule:  pruneSchedule,
		retention:      retention,
		log:            log,
	}
}

func (s *scheduler) RegisterTasks() error {
	task, err := NewHistoryPruneTask(s.retention)
	if err != nil {
		return err
	}

	if _, err := s.asynqScheduler.Register(s.pruneSchedule, task); err != nil {
		return err
	}

	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: registered history prune task",
			slog.String("schedule", s.pruneSchedule),
			slog.Duration("retention", s.retention),
		)
	}

	return nil
}

func (s *scheduler) Run() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: starting")
	}

	go func() {
		if err := s.asynqScheduler.Run(); err != nil && s.log != nil {
			s.log.ErrorContext(context.Background(), "scheduler: run failed", "error", err)
		}
	}()
}

func (s *scheduler) Shutdown() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: shutting down")
	}

	s.asynqScheduler.Shutdown()
}
