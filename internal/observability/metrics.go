package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeNoContent = "no_content"
	OutcomeFailed    = "failed"
	OutcomeNoAPIKey  = "no_api_key"
)

// Metrics holds the service's prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	requests        *prometheus.CounterVec
	generations     *prometheus.CounterVec
	renders         *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_generations_total",
				Help: "AI-assisted resume generations by outcome",
			},
			[]string{"outcome"},
		),
		renders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_renders_total",
				Help: "Rendered resumes by layout",
			},
			[]string{"layout"},
		),
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path, statusCode string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path, statusCode).Observe(d.Seconds())
	m.requests.WithLabelValues(method, path, statusCode).Inc()
}

// Generation records the outcome of one generation.
func (m *Metrics) Generation(outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
}

// Render records the layout used for one render.
func (m *Metrics) Render(layout string) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(layout).Inc()
}
