// Package metrics defines and registers all custom Prometheus metrics for the
// Bikerlight store API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is loaded, so importing it is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bikerlight"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "active_session" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Sales metrics ─────────────────────────────────────────────────────────────

// CheckoutsTotal counts checkout attempts.
// Label:
//   - result: "success" or the rejection reason (e.g. "insufficient_stock", "empty_cart", "error")
var CheckoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Total number of checkout attempts, by result.",
	},
	[]string{"result"},
)

// CheckoutDuration measures committed checkout transactions.
var CheckoutDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_duration_seconds",
		Help:      "Duration of successful checkout transactions.",
		Buckets:   prometheus.DefBuckets,
	},
)

// SalesRevenueTotal accumulates the total of committed sales.
var SalesRevenueTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_revenue_total",
		Help:      "Accumulated revenue of committed checkouts.",
	},
)

// SubscriptionsPurchasedTotal counts subscription periods sold.
// Label:
//   - plan: "MONTHLY" or "ANNUAL"
var SubscriptionsPurchasedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscriptions_purchased_total",
		Help:      "Total number of subscription periods purchased, by plan.",
	},
	[]string{"plan"},
)

// PaymentRequestsTotal counts calls to the payment provider.
// Labels:
//   - operation: "token", "create_order" or "capture_order"
//   - result: "success", "error" or "circuit_open"
var PaymentRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_requests_total",
		Help:      "Total number of payment provider requests, by operation and result.",
	},
	[]string{"operation", "result"},
)

// OutboxPublishedTotal counts outbox events handed to the broker.
// Labels:
//   - event_type: e.g. "sale.completed"
//   - result: "success" or "error"
var OutboxPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_published_total",
		Help:      "Total number of outbox events published, by type and result.",
	},
	[]string{"event_type", "result"},
)

// ── Telemetry metrics ─────────────────────────────────────────────────────────

// TelemetryProcessedTotal counts readings persisted successfully.
// Label:
//   - device: the reporting jacket id
var TelemetryProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_processed_total",
		Help:      "Total number of jacket readings successfully processed.",
	},
	[]string{"device"},
)

// TelemetryErrorsTotal counts readings that failed processing.
// Label:
//   - reason: short description of the failure (e.g. "invalid_reading", "upsert_failed", "queue_full")
var TelemetryErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_errors_total",
		Help:      "Total number of jacket readings that failed processing.",
	},
	[]string{"reason"},
)

// TelemetryDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new reading, processed)
var TelemetryDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// TelemetryQueueDepth tracks readings waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var TelemetryQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "telemetry_queue_depth",
		Help:      "Current number of readings pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// TelemetryProcessingDuration measures how long a single reading takes from
// dequeue to persistence.
var TelemetryProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "telemetry_processing_duration_seconds",
		Help:      "Duration of reading processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)
