package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes recorded in taskdesk_api_requests_total.
const (
	OutcomeOK           = "ok"
	OutcomeServerError  = "server_error"
	OutcomeNetworkError = "network_error"
	OutcomeSetupError   = "setup_error"
)

// Metrics records outbound API calls.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskdesk_api_requests_total",
				Help: "Total number of API requests by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskdesk_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	if outcome != OutcomeSetupError {
		m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
	}
}
