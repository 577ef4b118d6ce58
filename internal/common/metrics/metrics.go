// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by the counters below.
const (
	OutcomeSuccess       = "success"
	OutcomeClarification = "clarification"
	OutcomeError         = "error"
)

var (
	AgentRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_runs_total",
			Help: "Total number of agent node executions",
		},
		[]string{"agent", "outcome"},
	)

	AgentRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "agent_run_duration_seconds",
			Help: "Duration of agent node executions in seconds",
		},
		[]string{"agent"},
	)

	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "Total number of language model calls per tier",
		},
		[]string{"tier", "outcome"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "Duration of language model calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"tier"},
	)

	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Total number of tool executions requested by models",
		},
		[]string{"tool", "outcome"},
	)

	AgentFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_fallbacks_total",
			Help: "Number of times an agent dropped to a lower-fidelity data source",
		},
		[]string{"agent", "stage"},
	)

	OAuthTokenExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oauth_token_exchanges_total",
			Help: "Number of OAuth client-credentials exchanges",
		},
		[]string{"outcome"},
	)

	TipsCacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tips_cache_requests_total",
			Help: "Tips cache lookups by result",
		},
		[]string{"result"},
	)

	RequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "api_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
		[]string{"route"},
	)
)
