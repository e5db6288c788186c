// Package telemetry registers business-level Prometheus metrics: the
// checkout funnel, order values and webhook processing. HTTP-level metrics
// live in the middleware package.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
type BusinessMetrics struct {
	// Checkout funnel
	CheckoutCompleted *prometheus.CounterVec
	PaymentSucceeded  *prometheus.CounterVec
	PaymentFailed     *prometheus.CounterVec

	// Orders
	OrdersCreated *prometheus.CounterVec
	OrderValue    prometheus.Histogram

	// Webhooks
	WebhookReceived  *prometheus.CounterVec
	WebhookProcessed *prometheus.CounterVec
	WebhookFailed    *prometheus.CounterVec
}

// NewBusinessMetrics creates and registers all business metrics on the
// default registry, which is what the /metrics endpoint serves.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	return newBusinessMetrics(namespace, prometheus.DefaultRegisterer)
}

func newBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "souq"
	}
	subsystem := "business"

	m := &BusinessMetrics{
		CheckoutCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_completed_total",
				Help:      "Total successful checkouts",
			},
			[]string{"payment_method"},
		),
		PaymentSucceeded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_succeeded_total",
				Help:      "Total payments settled",
			},
			[]string{"payment_method"},
		),
		PaymentFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_failed_total",
				Help:      "Total payments marked failed",
			},
			[]string{"payment_method"},
		),
		OrdersCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders created",
			},
			[]string{"payment_method"},
		),
		OrderValue: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Order total distribution in currency units",
				Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000},
			},
		),
		WebhookReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_received_total",
				Help:      "Total webhook events received",
			},
			[]string{"event_type"},
		),
		WebhookProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_processed_total",
				Help:      "Total webhook events successfully processed",
			},
			[]string{"event_type"},
		),
		WebhookFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_failed_total",
				Help:      "Total webhook processing failures",
			},
			[]string{"event_type"},
		),
	}

	reg.MustRegister(
		m.CheckoutCompleted,
		m.PaymentSucceeded,
		m.PaymentFailed,
		m.OrdersCreated,
		m.OrderValue,
		m.WebhookReceived,
		m.WebhookProcessed,
		m.WebhookFailed,
	)
	return m
}

// Business is the global instance, nil until InitBusinessMetrics runs.
// Call sites nil-check it so tests run without a registry.
var Business *BusinessMetrics

// InitBusinessMetrics initializes the global business metrics instance.
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace)
	return Business
}
