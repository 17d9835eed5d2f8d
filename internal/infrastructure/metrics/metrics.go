package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the upload classifier collectors on a private registry
type Metrics struct {
	registry    *prometheus.Registry
	results     *prometheus.CounterVec
	latency     prometheus.Histogram
	uploadBytes prometheus.Histogram
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uploader",
			Name:      "classifications_total",
			Help:      "Classification requests by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "uploader",
			Name:      "classification_duration_seconds",
			Help:      "Round trip time of classification requests.",
			Buckets:   prometheus.DefBuckets,
		}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "uploader",
			Name:      "upload_bytes",
			Help:      "Size of uploaded files.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}

	m.registry.MustRegister(
		m.results,
		m.latency,
		m.uploadBytes,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveResult records one finished request
func (m *Metrics) ObserveResult(outcome string, elapsed time.Duration, size int) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(outcome).Inc()
	m.latency.Observe(elapsed.Seconds())
	m.uploadBytes.Observe(float64(size))
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
