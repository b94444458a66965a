package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Worker processes the bot's maintenance queues (history pruning). It is
// deliberately low-concurrency: every task it runs today issues bulk SQL
// deletes, and stacking those up buys nothing.
type Worker interface {
	RegisterHandler(taskType string, handler asynq.Handler)
	Run() error
	Shutdown()
}

type worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *slog.Logger
}

var _ Worker = (*worker)(nil)

// NewWorker constructs a Worker consuming the given queues.
func NewWorker(redisOpt asynq.RedisConnOpt, queues map[string]int, log *slog.Logger) Worker {
	if log == nil {
		log = slog.Default()
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Queues:      queues,
		Concurrency: 2,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.ErrorContext(ctx, "maintenance task failed",
				slog.String("type", task.Type()),
				slog.Any("error", err),
			)
		}),
	})

	return &worker{
		server: server,
		mux:    asynq.NewServeMux(),
		log:    log,
	}
}

func (w *worker) RegisterHandler(taskType string, handler asynq.Handler) {
	w.mux.Handle(taskType, handler)
}

// Run blocks processing tasks until Shutdown is called.
func (w *worker) Run() error {
	w.log.Info("maintenance worker: starting")
	return w.server.Run(w.mux)
}

func (w *worker) Shutdown() {
	w.log.Info("maintenance worker: shutting down")
	w.server.Shutdown()
}
