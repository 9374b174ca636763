package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Relay outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeUpstreamError = "upstream_error"
)

var (
	RelayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neem_relay_requests_total",
			Help: "Relay requests by outcome.",
		},
		[]string{"outcome"},
	)

	UpstreamDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "neem_relay_upstream_duration_seconds",
			Help:    "Latency of upstream AI calls.",
			Buckets: prometheus.DefBuckets,
		},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "neem_sessions_active",
			Help: "Conversation sessions currently open.",
		},
	)

	MessagesAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neem_session_messages_total",
			Help: "Messages appended to session logs by origin and category.",
		},
		[]string{"origin", "category"},
	)

	ConnectionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neem_connection_transitions_total",
			Help: "Connection state changes observed by sessions.",
		},
		[]string{"state"},
	)
)

func init() {
	prometheus.MustRegister(RelayRequests)
	prometheus.MustRegister(UpstreamDuration)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(MessagesAppended)
	prometheus.MustRegister(ConnectionTransitions)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
