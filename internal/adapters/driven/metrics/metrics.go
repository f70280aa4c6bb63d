// Package metrics records operational events as Prometheus series.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure the implementations satisfy the interface.
var (
	_ driven.Metrics = (*Prometheus)(nil)
	_ driven.Metrics = Nop{}
)

const namespace = "docqa"

// Prometheus records metrics on its own registry.
type Prometheus struct {
	registry      *prometheus.Registry
	ingests       *prometheus.CounterVec
	queries       *prometheus.CounterVec
	generation    *prometheus.HistogramVec
	inconsistency *prometheus.CounterVec
}

// New creates a registry with the docqa series and the Go runtime collectors.
func New() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		ingests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestions_total",
			Help:      "Document ingestions by outcome",
		}, []string{"outcome"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Questions answered or declined, by outcome",
		}, []string{"outcome"}),
		generation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of answer generation calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"result"}),
		inconsistency: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consistency_errors_total",
			Help:      "Mismatches between index positions and document rows",
		}, []string{"kind"}),
	}
	p.registry.MustRegister(
		p.ingests, p.queries, p.generation, p.inconsistency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Registry exposes the underlying registry for tests and extra collectors.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// IngestCompleted records an ingestion outcome.
func (p *Prometheus) IngestCompleted(outcome string) {
	p.ingests.WithLabelValues(outcome).Inc()
}

// QueryCompleted records a query outcome.
func (p *Prometheus) QueryCompleted(outcome string) {
	p.queries.WithLabelValues(outcome).Inc()
}

// GenerationObserved records a generation call's latency.
func (p *Prometheus) GenerationObserved(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.generation.WithLabelValues(result).Observe(d.Seconds())
}

// InconsistencyObserved counts mismatches by kind.
func (p *Prometheus) InconsistencyObserved(kind string, n int) {
	if n <= 0 {
		return
	}
	p.inconsistency.WithLabelValues(kind).Add(float64(n))
}

// Nop discards all events.
type Nop struct{}

func (Nop) IngestCompleted(string)                  {}
func (Nop) QueryCompleted(string)                   {}
func (Nop) GenerationObserved(time.Duration, error) {}
func (Nop) InconsistencyObserved(string, int)       {}
