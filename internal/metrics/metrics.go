// Package metrics exposes Prometheus instrumentation for the assistant.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// MessagesTotal counts processed inbound messages by outcome
	// (ok, error, reset, empty).
	MessagesTotal *prometheus.CounterVec

	// LLMRequestsTotal counts model backend calls by outcome (ok, error).
	LLMRequestsTotal *prometheus.CounterVec

	// LLMLatency tracks model backend call duration. Buckets reach into
	// minutes because cold starts are expected.
	LLMLatency prometheus.Histogram

	// ToolInvocationsTotal counts tool executions by tool name and outcome
	// (ok, error, blocked, unknown).
	ToolInvocationsTotal *prometheus.CounterVec
)

func init() {
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assistant",
			Name:      "messages_total",
			Help:      "Total inbound messages processed",
		},
		[]string{"outcome"},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assistant",
			Name:      "llm_requests_total",
			Help:      "Total model backend requests",
		},
		[]string{"outcome"},
	)

	LLMLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "assistant",
			Name:      "llm_request_duration_seconds",
			Help:      "Model backend request duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 180},
		},
	)

	ToolInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assistant",
			Name:      "tool_invocations_total",
			Help:      "Total tool invocations",
		},
		[]string{"tool", "outcome"},
	)

	prometheus.MustRegister(MessagesTotal, LLMRequestsTotal, LLMLatency, ToolInvocationsTotal)
}
