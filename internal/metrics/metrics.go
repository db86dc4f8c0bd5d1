package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Quote metrics
	QuotesComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fare_quotes_computed_total",
			Help: "Total number of fare quotes computed, by tier and floor fallback",
		},
		[]string{"tier", "floored"},
	)

	QuoteAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fare_quote_amount",
			Help:    "Quoted fare amount distribution",
			Buckets: []float64{10, 20, 35, 50, 75, 100, 150, 250, 500},
		},
		[]string{"tier"},
	)

	// Booking metrics
	BookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of bookings created",
		},
		[]string{"tier"},
	)

	BookingStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_status_transitions_total",
			Help: "Total number of booking status transitions",
		},
		[]string{"from", "to"},
	)

	// Checkout metrics
	CheckoutSessionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_sessions_created_total",
			Help: "Total number of checkout sessions created",
		},
		[]string{"provider", "status"},
	)

	WebhookEventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_webhook_events_total",
			Help: "Total number of billing webhook events received",
		},
		[]string{"event_type", "status"},
	)

	// Route provider metrics
	RouteLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_lookups_total",
			Help: "Total number of route provider lookups",
		},
		[]string{"status"},
	)
)
