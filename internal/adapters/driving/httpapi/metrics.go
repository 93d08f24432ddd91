package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "faqrag"

// Metrics holds the collectors exported on /metrics.
// Each server owns its registry so tests can build servers repeatedly.
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	answers   *prometheus.CounterVec
	passages  prometheus.Histogram
	feedback  *prometheus.CounterVec
	streaming prometheus.Gauge
}

// NewMetrics registers the HTTP and pipeline collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "route"}),
		answers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "answers_total",
			Help:      "Answers produced, by mode and outcome",
		}, []string{"mode", "outcome"}),
		passages: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "passages",
			Help:      "Passages retrieved per question",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		feedback: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feedback",
			Name:      "ratings_total",
			Help:      "Recorded answer ratings",
		}, []string{"rating"}),
		streaming: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "active_streams",
			Help:      "Answer streams currently open",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeAnswer(mode string, noContext bool, passages int) {
	outcome := "grounded"
	if noContext {
		outcome = "no_context"
	}
	m.answers.WithLabelValues(mode, outcome).Inc()
	m.passages.Observe(float64(passages))
}
