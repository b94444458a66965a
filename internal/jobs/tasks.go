package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeHistoryPrune = "history:prune"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type HistoryPrunePayload struct {
	Retention time.Duration `json:"retention"`
}

// NewHistoryPruneTask builds the periodic task that trims search history
// past the retention window.
func NewHistoryPruneTask(retention time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(HistoryPrunePayload{Retention: retention})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeHistoryPrune, payload, asynq.Queue(QueueLow)), nil
}
