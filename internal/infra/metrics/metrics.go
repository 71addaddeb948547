// Package metrics provides Prometheus metrics for the Pulse engine:
// evaluation throughput, decisions, suppression reasons, guardrail
// rewrites and commit failures.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Evaluation ─────────────────────────────────────────────────────────────

// EvaluationsTotal counts evaluation cycles started.
var EvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pulse",
	Name:      "evaluations_total",
	Help:      "Total evaluation cycles started.",
})

// EvaluateLatency tracks evaluation cycle duration in seconds.
var EvaluateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "pulse",
	Name:      "evaluate_latency_seconds",
	Help:      "Evaluation cycle duration in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
})

// ─── Decisions ──────────────────────────────────────────────────────────────

// DecisionsTotal counts committed send decisions by notification type.
var DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pulse",
	Name:      "decisions_total",
	Help:      "Total committed send decisions.",
}, []string{"type"})

// SuppressedTotal counts non-sends by suppression reason.
var SuppressedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pulse",
	Name:      "suppressed_total",
	Help:      "Total suppressed candidates by reason.",
}, []string{"reason"})

// CommitFailures counts decision commits that rolled back.
var CommitFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pulse",
	Name:      "commit_failures_total",
	Help:      "Total decision commits that failed and rolled back.",
})

// ─── Content Safety ─────────────────────────────────────────────────────────

// SanitizerRewrites counts templates the guardrail filter had to rewrite.
var SanitizerRewrites = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pulse",
	Name:      "sanitizer_rewrites_total",
	Help:      "Total templates rewritten by the guardrail filter.",
})

// ─── Delivery & Outcomes ────────────────────────────────────────────────────

// DeliveredTotal counts delivery acknowledgements by notification type.
var DeliveredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pulse",
	Name:      "delivered_total",
	Help:      "Total delivery acknowledgements from the delivery sink.",
}, []string{"type"})

// OutcomesTotal counts reported outcomes (opened, dismissed, converted).
var OutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pulse",
	Name:      "outcomes_total",
	Help:      "Total reported notification outcomes.",
}, []string{"outcome"})
