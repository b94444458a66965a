// Package metrics exposes Prometheus collectors for the bot.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tooeasytravel/hotel-bot/internal/state"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_transitions_total",
			Help: "Total number of conversation state transitions",
		},
		[]string{"from", "to"},
	)
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_searches_total",
			Help: "Completed hotel searches labeled by search type and status",
		},
		[]string{"type", "status"},
	)
	searchResultCount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotel_search_result_count",
			Help:    "Number of hotels returned per completed search",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
		[]string{"type"},
	)
	hotelsAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotels_api_request_duration_seconds",
			Help:    "Latency of hotel API requests labeled by endpoint and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)
	historyWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_writes_total",
			Help: "History record writes labeled by status",
		},
		[]string{"status"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	activeConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_conversations",
			Help: "Current number of users with an in-flight conversation",
		},
	)
	usersByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "users_by_state",
			Help: "Number of users per conversation state",
		},
		[]string{"state"},
	)
)

func init() {
	state.RegisterTransitionRecorder(RecordStateTransition)
}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordStateTransition tracks FSM transitions.
func RecordStateTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordSearch tracks one completed (or failed) search dispatch.
func RecordSearch(searchType, status string, results int) {
	if searchType == "" {
		searchType = "unknown"
	}

	searchesTotal.WithLabelValues(searchType, status).Inc()
	if status == "ok" {
		searchResultCount.WithLabelValues(searchType).Observe(float64(results))
	}
}

// RecordAPIRequest tracks one hotel API round trip.
func RecordAPIRequest(endpoint, status string, duration time.Duration) {
	hotelsAPIRequestDuration.WithLabelValues(endpoint, status).Observe(duration.Seconds())
}

// RecordHistoryWrite tracks a history persistence attempt.
func RecordHistoryWrite(status string) {
	historyWritesTotal.WithLabelValues(status).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// StateCollector periodically gathers FSM state counts and emits gauge metrics.
type StateCollector struct {
	fsm state.Machine
}

// NewStateCollector builds a metrics collector bound to the provided FSM.
func NewStateCollector(fsm state.Machine) *StateCollector {
	return &StateCollector{fsm: fsm}
}

// Run polls the FSM every 10 seconds, updating conversation gauges until ctx is cancelled.
func (c *StateCollector) Run(ctx context.Context) {
	if c == nil || c.fsm == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		_ = c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}
}

func (c *StateCollector) collect(ctx context.Context) error {
	states, err := c.fsm.GetAllStates(ctx)
	if err != nil {
		return err
	}

	active := 0
	stateCounts := make(map[string]int, len(states))
	for _, st := range states {
		if st == nil {
			continue
		}
		stateCounts[string(st.CurrentState)]++
		if st.CurrentState != state.StateIdle {
			active++
		}
	}

	activeConversations.Set(float64(active))

	usersByState.Reset()
	for _, tracked := range state.All() {
		label := string(tracked)
		usersByState.WithLabelValues(label).Set(float64(stateCounts[label]))
		delete(stateCounts, label)
	}
	for label, count := range stateCounts {
		usersByState.WithLabelValues(label).Set(float64(count))
	}

	return nil
}
