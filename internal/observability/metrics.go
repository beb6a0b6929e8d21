package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "api_requests_total", Help: "Total backend API calls issued"},
		[]string{"endpoint", "status"},
	)
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rideshare",
			Name:      "api_request_duration_seconds",
			Help:      "Backend API call latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EventsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "events_received_total", Help: "Push events received per event name"},
		[]string{"event"},
	)
	EventsStaleTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "events_stale_total", Help: "Push events discarded by the monotonic-status rule"},
	)
	EventsUnknownTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "events_unknown_total", Help: "Push events with an unrecognized name"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "payments_total", Help: "Completed payments per method"},
		[]string{"method"},
	)
	RatingsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "ratings_submitted_total", Help: "Driver ratings submitted"},
	)
)
