package domain

import "time"

// HistoryRecord is one durable, append-only log entry of a completed search.
// Value holds the already-rendered result text; it may be empty when the
// search found nothing.
type HistoryRecord struct {
	ID        int64
	UserID    int64
	Command   string
	Value     string
	CreatedAt time.Time
}
