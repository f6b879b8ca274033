package render

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts renders. A nil *Metrics records nothing.
type Metrics struct {
	renders   *prometheus.CounterVec
	fallbacks prometheus.Counter
	failures  prometheus.Counter
	duration  prometheus.Histogram
}

// NewMetrics creates the render metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paperview_renders_total",
				Help: "Total number of papers rendered, by backend.",
			},
			[]string{"backend"},
		),
		fallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "paperview_markdown_fallbacks_total",
				Help: "Total number of renders where the Markdown backend failed.",
			},
		),
		failures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "paperview_render_failures_total",
				Help: "Total number of papers that could not be loaded or rendered.",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "paperview_render_duration_seconds",
				Help:    "Time spent rendering a paper.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.renders, m.fallbacks, m.failures, m.duration)
	return m
}

func (m *Metrics) rendered(backend string, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(backend).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) fallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

func (m *Metrics) failure() {
	if m == nil {
		return
	}
	m.failures.Inc()
}
