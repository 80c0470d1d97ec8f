// Package metrics provides Prometheus metrics for Ressurstorg.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "ressurstorg"
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight tracks concurrent HTTP requests.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)

// Marketplace metrics
var (
	// ThreadsStartedTotal counts new negotiation threads.
	ThreadsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "threads_started_total",
			Help:      "Total negotiation threads opened",
		},
	)

	// MessagesSentTotal counts sent messages, including system messages.
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "messages_sent_total",
			Help:      "Total messages appended to threads",
		},
		[]string{"kind"}, // request, reply, system
	)

	// DisclosuresTotal counts successful contact disclosures.
	DisclosuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "disclosures_total",
			Help:      "Total contact disclosures created",
		},
	)

	// ResourcesTakenTotal counts successful is_taken transitions.
	ResourcesTakenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "resources_taken_total",
			Help:      "Total resources marked as taken",
		},
	)
)

// Event feed metrics
var (
	// EventStreamsActive tracks open SSE subscriptions.
	EventStreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "streams_active",
			Help:      "Number of active SSE event subscriptions",
		},
	)

	// EventsDroppedTotal counts events dropped on slow subscribers.
	EventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Total events dropped because a subscriber was slow",
		},
	)
)
