// Package metrics defines Prometheus metrics for the audit ledger.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "healthaudit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthaudit_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthaudit_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	AppendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthaudit_appends_total",
			Help: "Entries appended to the chain, by action",
		},
		[]string{"action"},
	)

	AppendRejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthaudit_append_rejects_total",
			Help: "Appends rejected before mutating the chain, by reason",
		},
		[]string{"reason"},
	)

	ChainLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "healthaudit_chain_length",
			Help: "Number of entries in the chain",
		},
	)

	VerifyRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthaudit_verify_runs_total",
			Help: "Chain verification runs, by result",
		},
		[]string{"result"},
	)

	ArchiveQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "healthaudit_archive_queue_depth",
			Help: "Entries waiting to be mirrored to the archive",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "healthaudit_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		AppendsTotal, AppendRejectsTotal, ChainLength,
		VerifyRunsTotal, ArchiveQueueDepth, WSConnections,
	)
}
