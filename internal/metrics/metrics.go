// Package metrics exposes Prometheus counters for outline extraction on a
// private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records extraction outcomes. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry  *prometheus.Registry
	documents *prometheus.CounterVec
	headings  *prometheus.CounterVec
	duration  prometheus.Histogram
	spans     prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docoutline",
			Name:      "documents_total",
			Help:      "Documents processed, by final status.",
		}, []string{"status"}),
		headings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docoutline",
			Name:      "headings_total",
			Help:      "Headings emitted, by level.",
		}, []string{"level"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docoutline",
			Name:      "extraction_duration_seconds",
			Help:      "Time spent parsing and extracting one document.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		spans: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docoutline",
			Name:      "document_spans",
			Help:      "Raw text spans per parsed document.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),
	}
	m.registry.MustRegister(m.documents, m.headings, m.duration, m.spans)
	return m
}

// Document records one finished document.
func (m *Metrics) Document(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(status).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// Heading counts one emitted heading.
func (m *Metrics) Heading(level string) {
	if m == nil {
		return
	}
	m.headings.WithLabelValues(level).Inc()
}

// Spans records the size of a parsed document.
func (m *Metrics) Spans(n int) {
	if m == nil {
		return
	}
	m.spans.Observe(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
