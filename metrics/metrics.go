package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and path
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contests_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contests_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RequestInProgress counts HTTP requests currently being processed
	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "contests_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "path"},
	)

	// RateLimiterRejections counts rejected requests due to rate limiting
	RateLimiterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contests_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
		[]string{"ip"},
	)

	// DatabaseOperationDuration measures database operation duration
	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contests_db_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// SignupOutcomes counts processed signup requests by outcome
	SignupOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contests_signup_outcomes_total",
			Help: "Total number of signup requests by outcome",
		},
		[]string{"outcome"},
	)

	// NotificationFailures counts signup notifications that could not be delivered
	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contests_notification_failures_total",
			Help: "Total number of failed signup notifications",
		},
	)

	// RealtimeClients tracks connected scoreboard websocket clients
	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contests_realtime_clients",
			Help: "Number of connected scoreboard websocket clients",
		},
	)

	// RealtimeDroppedUpdates counts scoreboard updates that were not delivered, by reason
	RealtimeDroppedUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contests_realtime_dropped_updates_total",
			Help: "Total number of scoreboard updates dropped before reaching a client",
		},
		[]string{"reason"},
	)

	// MemoryStats tracks memory usage stats
	MemoryStats = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "contests_memory_stats_bytes",
			Help: "Memory statistics in bytes",
		},
		[]string{"type"},
	)

	// GoroutineCount tracks the number of goroutines
	GoroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contests_goroutine_count",
			Help: "Number of goroutines",
		},
	)

	// SystemCPUUsage tracks CPU usage percentage
	SystemCPUUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "contests_system_cpu_usage_percent",
			Help: "CPU usage percentage by core",
		},
		[]string{"core"},
	)

	// SystemLoadAverage tracks system load averages
	SystemLoadAverage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "contests_system_load_average",
			Help: "System load average",
		},
		[]string{"period"}, // "1min", "5min", "15min"
	)
)

// RecordDBOperation records the duration of a database operation
func RecordDBOperation(operation string, table string, startTime time.Time) {
	duration := time.Since(startTime).Seconds()
	DatabaseOperationDuration.WithLabelValues(operation, table).Observe(duration)
}
