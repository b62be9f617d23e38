// Package metrics exposes the engine's Prometheus instruments. The sink
// (HTTP handler, push gateway) is the caller's concern.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModelCalls counts completion requests by terminal outcome of the
	// individual call: ok, retryable_error, fatal_error.
	ModelCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "entityxtract",
		Name:      "model_calls_total",
		Help:      "Completion requests sent to the model provider.",
	}, []string{"outcome"})

	// Retries counts backoff-delayed re-attempts.
	Retries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "entityxtract",
		Name:      "retries_total",
		Help:      "Re-attempts after transient provider failures.",
	})

	// EntityResults counts per-entity outcomes: success, not_found, failed.
	EntityResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "entityxtract",
		Name:      "entity_results_total",
		Help:      "Per-entity extraction outcomes.",
	}, []string{"outcome"})

	// Tokens accumulates provider-reported usage by direction (input/output).
	Tokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "entityxtract",
		Name:      "tokens_total",
		Help:      "Provider-reported token usage.",
	}, []string{"direction"})
)
