package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat service metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travelbro",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "travelbro",
			Subsystem: "chat",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Turn counters per detected intent
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travelbro",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total conversational turns processed",
		},
		[]string{"intent", "status"},
	)

	// Tool call counters
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travelbro",
			Subsystem: "chat",
			Name:      "tool_calls_total",
			Help:      "Total grounding tool invocations",
		},
		[]string{"tool_name", "status"},
	)

	// Vision call counter
	VisionCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travelbro",
			Subsystem: "chat",
			Name:      "vision_calls_total",
			Help:      "Total image-understanding calls",
		},
		[]string{"status"},
	)

	// Model token usage
	TokensUsedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travelbro",
			Subsystem: "chat",
			Name:      "tokens_used_total",
			Help:      "Total model tokens consumed",
		},
		[]string{"kind"},
	)

	// Model spend in euros
	CostEURTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travelbro",
			Subsystem: "chat",
			Name:      "cost_eur_total",
			Help:      "Total model spend in euros",
		},
		[]string{"kind"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordTurn records one processed turn
func RecordTurn(intent, status string) {
	TurnsTotal.WithLabelValues(intent, status).Inc()
}

// RecordToolCall records a grounding tool invocation
func RecordToolCall(toolName, status string) {
	ToolCallsTotal.WithLabelValues(toolName, status).Inc()
}

// RecordVisionCall records an image-understanding call
func RecordVisionCall(status string) {
	VisionCallsTotal.WithLabelValues(status).Inc()
}

// RecordSpend records token and euro accounting for one model call
func RecordSpend(kind string, tokens int, eur float64) {
	TokensUsedTotal.WithLabelValues(kind).Add(float64(tokens))
	CostEURTotal.WithLabelValues(kind).Add(eur)
}
