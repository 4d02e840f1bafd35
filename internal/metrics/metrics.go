// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "supplyflow"

var (
	// ReorderChecks counts completed reorder checks by trigger (manual, tick).
	ReorderChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reorder_checks_total",
			Help:      "Total number of reorder checks run",
		},
		[]string{"trigger"},
	)

	// ReorderTicksSkipped counts scheduler ticks dropped because a check was still running.
	ReorderTicksSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reorder_ticks_skipped_total",
			Help:      "Scheduler ticks skipped because the previous check had not finished",
		},
	)

	ReorderCandidates = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reorder_candidates",
			Help:      "Number of products at or below their reorder point in the last check",
		},
	)

	ItemsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_skipped_total",
			Help:      "Products skipped by a batch operation because of malformed data",
		},
		[]string{"operation"},
	)

	PlansCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reorder_plans_created_total",
			Help:      "Total number of persisted reorder plans",
		},
		[]string{"origin"},
	)

	// PlanningShared counts planning requests that joined an in-flight pass.
	PlanningShared = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "planning_requests_shared_total",
			Help:      "Auto-reorder requests answered by an already running planning pass",
		},
	)

	StockAdjustments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustments_total",
			Help:      "Stock adjustments by operation and result",
		},
		[]string{"operation", "result"},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to a notification sink",
		},
		[]string{"sink", "event_type", "result"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(
		ReorderChecks,
		ReorderTicksSkipped,
		ReorderCandidates,
		ItemsSkipped,
		PlansCreated,
		PlanningShared,
		StockAdjustments,
		EventsPublished,
		HTTPRequests,
		HTTPLatency,
	)
}

// Result returns the "ok" or "error" label value for err.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
