// Package metrics defines and registers all custom Prometheus metrics for the
// ZapShift parcel API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "zapshift"

// ── Booking metrics ───────────────────────────────────────────────────────────

// QuotesTotal counts pricing quotes served.
// Labels:
//   - parcel_type: "document" or "non-document"
//   - zone: "Within District" or "Outside District"
var QuotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_total",
		Help:      "Total number of pricing quotes served, by parcel type and zone.",
	},
	[]string{"parcel_type", "zone"},
)

// ParcelsBookedTotal counts newly booked parcels.
// Labels:
//   - parcel_type: "document" or "non-document"
//   - zone: "Within District" or "Outside District"
var ParcelsBookedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parcels_booked_total",
		Help:      "Total number of parcels booked, by parcel type and zone.",
	},
	[]string{"parcel_type", "zone"},
)

// RiderAssignmentsTotal counts rider-to-parcel assignments made by admins.
var RiderAssignmentsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rider_assignments_total",
		Help:      "Total number of riders assigned to parcels.",
	},
)

// DeliveryTransitionsTotal counts delivery status transitions applied by riders.
// Label:
//   - status: the new delivery status (e.g. "in_transit", "delivered")
var DeliveryTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_transitions_total",
		Help:      "Total number of delivery status transitions, by resulting status.",
	},
	[]string{"status"},
)

// ── Payment metrics ───────────────────────────────────────────────────────────

// PaymentsConfirmedTotal counts confirmed payments.
// Label:
//   - method: payment method reported by the processor (e.g. "card")
var PaymentsConfirmedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_confirmed_total",
		Help:      "Total number of payments confirmed, by method.",
	},
	[]string{"method"},
)

// WalletCreditsTotal counts rider earnings credited to wallets.
var WalletCreditsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wallet_credits_total",
		Help:      "Total number of delivery earnings credited to rider wallets.",
	},
)

// CashOutsTotal counts rider cash-out requests.
// Label:
//   - method: withdrawal channel ("bkash", "nagad", "rocket", "bank")
var CashOutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cash_outs_total",
		Help:      "Total number of rider cash-out requests, by method.",
	},
	[]string{"method"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsProcessedTotal counts courier events that completed processing.
// Labels:
//   - status: the new delivery status applied by the event
//   - source: the event source reported by the sender (e.g. "rider_app")
var EventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_processed_total",
		Help:      "Total number of delivery events successfully processed.",
	},
	[]string{"status", "source"},
)

// EventsErrorsTotal counts events that failed processing.
// Label:
//   - reason: short description of the failure (e.g. "invalid_transition", "parcel_not_found", "update_failed")
var EventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_errors_total",
		Help:      "Total number of delivery events that failed processing.",
	},
	[]string{"reason"},
)

// EventsDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new event, processed)
var EventsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventProcessingDuration measures how long a single event takes to process end-to-end.
// Label:
//   - status: the resulting delivery status
var EventProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_processing_duration_seconds",
		Help:      "Duration of event processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"status"},
)
