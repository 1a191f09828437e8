package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts all HTTP requests with labels
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolchest_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDurationHistogram records request duration in seconds
	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toolchest_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BulkOperationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolchest_bulk_tag_operations_total",
			Help: "Executed bulk tag operations by type",
		},
		[]string{"type"},
	)

	BulkChangesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolchest_bulk_tag_changes_total",
			Help: "Tool-tag pairs written by bulk operations",
		},
		[]string{"type"},
	)

	AlertCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolchest_alerts_raised_total",
			Help: "Alerts raised by the evaluation pass",
		},
		[]string{"metric", "severity"},
	)

	ToolUsageCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolchest_tool_usage_total",
			Help: "Usage events recorded per tool",
		},
		[]string{"tool", "success"},
	)

	SystemMemoryGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "toolchest_system_memory_used_percent",
		Help: "Host memory usage at the last snapshot",
	})

	SystemCPUGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "toolchest_system_cpu_percent",
		Help: "Host CPU usage at the last snapshot",
	})
)

func observeHTTP(method, route string, status int, d time.Duration) {
	RequestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	RequestDurationHistogram.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordBulkOperation counts one executed bulk operation and its written pairs
func RecordBulkOperation(opType string, changes int) {
	BulkOperationCounter.WithLabelValues(opType).Inc()
	BulkChangesCounter.WithLabelValues(opType).Add(float64(changes))
}

func RecordAlert(metric, severity string) {
	AlertCounter.WithLabelValues(metric, severity).Inc()
}

func RecordToolUsage(slug string, success bool) {
	ToolUsageCounter.WithLabelValues(slug, strconv.FormatBool(success)).Inc()
}
