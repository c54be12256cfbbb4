package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentEventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nimbusmart_payment_events_processed_total",
		Help: "Payment provider events handled to completion, by event type.",
	}, []string{"type"})

	PaymentEventsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nimbusmart_payment_events_duplicate_total",
		Help: "Payment provider events skipped by the idempotency gate.",
	})

	PaymentEventsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nimbusmart_payment_events_failed_total",
		Help: "Payment provider events whose handler returned an error.",
	}, []string{"type"})

	PaymentEventsUnhandled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nimbusmart_payment_events_unhandled_total",
		Help: "Payment provider events with no registered handler.",
	})

	ShipmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nimbusmart_shipments_created_total",
		Help: "Shipments created by the assignment engine.",
	})

	RefundsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nimbusmart_refunds_issued_total",
		Help: "Refund requests issued against the payment provider.",
	})

	NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nimbusmart_notifications_failed_total",
		Help: "Notification dispatches that failed (logged, never propagated).",
	})

	PollRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nimbusmart_stripe_poll_runs_total",
		Help: "Completed Stripe reconciliation poll cycles.",
	})
)
