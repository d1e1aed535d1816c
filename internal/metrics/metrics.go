// Package metrics records per-collector outcomes of a gather run as
// Prometheus metrics, for export through the node-exporter textfile
// collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fakeyudi/recall/internal/gather"
)

// Recorder is a gather.Sink that turns notices into metrics on its own
// registry.
type Recorder struct {
	registry *prometheus.Registry

	events   *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	last     *prometheus.GaugeVec
}

// New creates a Recorder with a fresh registry.
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}
	r.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recall",
		Name:      "collector_events_total",
		Help:      "Events returned by a collector",
	}, []string{"collector"})
	r.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recall",
		Name:      "collector_failures_total",
		Help:      "Collector calls that returned an error",
	}, []string{"collector"})
	r.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recall",
		Name:      "collector_duration_seconds",
		Help:      "Time spent in a collector call",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"collector"})
	r.last = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "recall",
		Name:      "collector_last_success",
		Help:      "1 if the collector's last call succeeded, 0 otherwise",
	}, []string{"collector"})
	r.registry.MustRegister(r.events, r.failures, r.duration, r.last)
	return r
}

// Notify implements gather.Sink.
func (r *Recorder) Notify(n gather.Notice) {
	r.duration.WithLabelValues(n.Collector).Observe(n.Elapsed.Seconds())
	if n.OK() {
		r.events.WithLabelValues(n.Collector).Add(float64(n.Count))
		r.last.WithLabelValues(n.Collector).Set(1)
		return
	}
	r.failures.WithLabelValues(n.Collector).Inc()
	r.last.WithLabelValues(n.Collector).Set(0)
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the metrics to path in the text exposition format,
// atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
