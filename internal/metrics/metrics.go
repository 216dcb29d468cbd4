package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service's prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	JobsSubmitted      prometheus.Counter
	JobsCompleted      prometheus.Counter
	JobsFailed         prometheus.Counter
	PollFallbacks      prometheus.Counter
	GenerationDuration prometheus.Histogram
}

// New registers and returns the service collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		JobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediastudio",
			Name:      "jobs_submitted_total",
			Help:      "Video generation jobs accepted by submit.",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediastudio",
			Name:      "jobs_completed_total",
			Help:      "Jobs that reached the completed state.",
		}),
		JobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediastudio",
			Name:      "jobs_failed_total",
			Help:      "Jobs that reached the failed state.",
		}),
		PollFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediastudio",
			Name:      "poll_handle_fallbacks_total",
			Help:      "Polls that had to fall back to the original operation handle.",
		}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mediastudio",
			Name:      "generation_duration_seconds",
			Help:      "Wall time of a background generation run.",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 9),
		}),
	}

	registry.MustRegister(
		m.JobsSubmitted,
		m.JobsCompleted,
		m.JobsFailed,
		m.PollFallbacks,
		m.GenerationDuration,
	)

	return m
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
