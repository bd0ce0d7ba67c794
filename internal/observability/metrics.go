package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capstone_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records transaction latency by operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "capstone_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// TxAttempts counts optimistic transaction attempts by operation.
	TxAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capstone_tx_attempts_total",
		Help: "Total optimistic transaction attempts by operation",
	}, []string{"operation"})

	// TxConflicts counts attempts that aborted on a concurrent write.
	TxConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capstone_tx_conflicts_total",
		Help: "Total optimistic transaction conflicts by operation",
	}, []string{"operation"})

	// TxOutcomes counts finished transactions by operation and outcome
	// (committed, failed, exhausted).
	TxOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capstone_tx_outcomes_total",
		Help: "Total optimistic transactions by final outcome",
	}, []string{"operation", "outcome"})

	// StateTransitions counts committed lifecycle transitions per entity.
	StateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capstone_state_transitions_total",
		Help: "Committed lifecycle transitions by entity and target state",
	}, []string{"entity", "to"})

	// CapacityViewLookups counts capacity view reads by cache result.
	CapacityViewLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capstone_capacity_view_lookups_total",
		Help: "Supervisor capacity view lookups by cache result",
	}, []string{"result"})
)

// ObserveQuery records the latency of a store operation.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// RecordTransition counts one committed state change.
func RecordTransition(entity, to string) {
	StateTransitions.WithLabelValues(entity, to).Inc()
}
