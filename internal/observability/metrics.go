package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelhub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reelhub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ToggleTotal counts like and follow toggles by resulting state.
	ToggleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelhub_toggle_total",
		Help: "Total number of like/follow toggles by kind and resulting state",
	}, []string{"kind", "state"})

	// UploadsTotal counts stored files by bucket and outcome.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelhub_uploads_total",
		Help: "Total number of file uploads by bucket and outcome",
	}, []string{"bucket", "outcome"})

	// FanoutExclusions counts items dropped from aggregated results.
	FanoutExclusions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelhub_fanout_exclusions_total",
		Help: "Items excluded from aggregated results because a lookup failed",
	}, []string{"operation"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reelhub_websocket_connections",
		Help: "Number of active WebSocket connections by endpoint",
	}, []string{"endpoint"})

	// WebSocketBackpressureDrops counts messages dropped for slow or closed clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelhub_websocket_backpressure_drops_total",
		Help: "Total number of websocket messages dropped by hub and reason",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordToggle counts a toggle; on reports the state after the toggle.
func RecordToggle(kind string, on bool) {
	state := "off"
	if on {
		state = "on"
	}
	ToggleTotal.WithLabelValues(kind, state).Inc()
}
