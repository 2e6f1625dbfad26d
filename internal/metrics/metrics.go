// Package metrics exposes Prometheus collectors for the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ChatRequests counts handled chat turns by outcome: "confirmation" for
// first-message registrations, "reply" for relayed turns, "error" for
// failures surfaced as 500s.
var ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chat_requests_total",
	Help: "Chat requests handled, labeled by outcome.",
}, []string{"outcome"})

// CompletionDuration observes the latency of upstream completion calls.
var CompletionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "openai_request_seconds",
	Help:    "Latency of upstream chat-completion calls.",
	Buckets: prometheus.DefBuckets,
})

// CSVLogFailures counts CSV records that failed to write or were dropped
// because the queue was full. The chat response is unaffected either way.
var CSVLogFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "csv_log_failures_total",
	Help: "CSV log writes that failed or were dropped.",
})
