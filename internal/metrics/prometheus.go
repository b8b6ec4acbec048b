package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksense_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stocksense_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stocksense_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Agent metrics
	AgentCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksense_agent_cycles_total",
			Help: "Total number of agent observe-think-act cycles",
		},
		[]string{"status"}, // status: success|error
	)

	AgentCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stocksense_agent_cycle_duration_seconds",
			Help:    "Agent cycle duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
	)

	ActionsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksense_actions_dispatched_total",
			Help: "Total number of agent actions dispatched",
		},
		[]string{"kind"},
	)

	// Provider metrics
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksense_provider_calls_total",
			Help: "Total number of market data provider calls",
		},
		[]string{"provider", "endpoint", "source"}, // source: live|fallback
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stocksense_provider_latency_seconds",
			Help:    "Market data provider call latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "endpoint"},
	)

	// Knowledge metrics
	SearchesAnalyzed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksense_searches_analyzed_total",
			Help: "Total number of search terms classified",
		},
		[]string{"tier"},
	)

	// Focus metrics
	FocusSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksense_focus_sessions_total",
			Help: "Total number of closed focus sessions",
		},
		[]string{"kind", "outcome"}, // outcome: completed|interrupted
	)

	FocusScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stocksense_focus_score",
			Help: "Current attention focus score (0-100)",
		},
	)

	// System metrics
	WebSocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stocksense_websocket_connections",
			Help: "Current number of active WebSocket clients",
		},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	prometheus.MustRegister(AgentCycles)
	prometheus.MustRegister(AgentCycleDuration)
	prometheus.MustRegister(ActionsDispatched)

	prometheus.MustRegister(ProviderCalls)
	prometheus.MustRegister(ProviderLatency)

	prometheus.MustRegister(SearchesAnalyzed)

	prometheus.MustRegister(FocusSessions)
	prometheus.MustRegister(FocusScore)

	prometheus.MustRegister(WebSocketConnections)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
