// Package metrics exposes Prometheus instrumentation for the query and
// rebuild paths.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service collectors on a private registry so tests can
// create independent instances.
type Metrics struct {
	registry *prometheus.Registry

	QueriesTotal  *prometheus.CounterVec
	QueryDuration prometheus.Histogram
	RebuildsTotal prometheus.Counter
	CorpusChunks  prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kotae",
			Name:      "queries_total",
			Help:      "Answer queries served, labeled by outcome.",
		}, []string{"status"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kotae",
			Name:      "query_duration_seconds",
			Help:      "End-to-end answer latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		RebuildsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kotae",
			Name:      "corpus_rebuilds_total",
			Help:      "Completed corpus rebuilds.",
		}),
		CorpusChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kotae",
			Name:      "corpus_chunks",
			Help:      "Chunks in the active snapshot.",
		}),
	}
	m.registry.MustRegister(
		m.QueriesTotal,
		m.QueryDuration,
		m.RebuildsTotal,
		m.CorpusChunks,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveQuery records one served query.
func (m *Metrics) ObserveQuery(status string, d time.Duration) {
	m.QueriesTotal.WithLabelValues(status).Inc()
	m.QueryDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
