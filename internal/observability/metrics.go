package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsSink adapts a family of prometheus vectors to the
// MetricsSink interface, following the same CounterVec/HistogramVec/GaugeVec
// registration pattern the pack's telemetry package uses for its HTTP
// metrics.
type PrometheusMetricsSink struct {
	counters   *prometheus.CounterVec
	timings    *prometheus.HistogramVec
	events     *prometheus.CounterVec
	registerer prometheus.Registerer
}

// NewPrometheusMetricsSink builds and registers the sink's vectors under the
// given namespace (e.g. "konditional"), registering them with registerer.
// Use prometheus.DefaultRegisterer for the global registry, or a dedicated
// prometheus.NewRegistry() in tests to avoid collisions across test runs.
func NewPrometheusMetricsSink(namespace string, registerer prometheus.Registerer) *PrometheusMetricsSink {
	s := &PrometheusMetricsSink{
		counters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total count events recorded by name",
		}, []string{"name"}),
		timings: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "timing_seconds",
			Help:      "Observed durations recorded by name",
			Buckets:   prometheus.DefBuckets,
		}, []string{"name"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "structured_events_total",
			Help:      "Total structured events recorded by name",
		}, []string{"name"}),
		registerer: registerer,
	}
	registerer.MustRegister(s.counters, s.timings, s.events)
	return s
}

func (s *PrometheusMetricsSink) Count(name string, tags map[string]string) {
	s.counters.WithLabelValues(name).Inc()
}

func (s *PrometheusMetricsSink) Timing(name string, tags map[string]string, durationNanos int64) {
	s.timings.WithLabelValues(name).Observe(time.Duration(durationNanos).Seconds())
}

func (s *PrometheusMetricsSink) Event(name string, fields map[string]any) {
	s.events.WithLabelValues(name).Inc()
}
