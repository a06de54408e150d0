package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/mathsheet/internal/worksheet"
)

// Metrics holds the Prometheus collectors for worksheet generation. It
// implements batch.Observer.
type Metrics struct {
	registry *prometheus.Registry

	batches  *prometheus.CounterVec
	problems *prometheus.CounterVec
	retries  prometheus.Histogram
}

// NewMetrics creates collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mathsheet",
			Name:      "batches_total",
			Help:      "Worksheet batches requested, by problem type, operator category and outcome.",
		}, []string{"problem_type", "operators", "result"}),
		problems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mathsheet",
			Name:      "problems_total",
			Help:      "Problems generated, by problem type.",
		}, []string{"problem_type"}),
		retries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mathsheet",
			Name:      "batch_retries",
			Help:      "Discarded problem drafts per batch.",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500},
		}),
	}
	m.registry.MustRegister(m.batches, m.problems, m.retries)
	return m
}

// ObserveBatch records one generation call.
func (m *Metrics) ObserveBatch(spec worksheet.BatchSpec, stats worksheet.Stats, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.batches.WithLabelValues(spec.Kind.String(), spec.Category.String(), result).Inc()
	m.problems.WithLabelValues(spec.Kind.String()).Add(float64(stats.Problems))
	m.retries.Observe(float64(stats.Retries()))
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
