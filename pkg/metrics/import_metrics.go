package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ImportMetrics describes one import run. The CLI exits after a single run,
// so the collectors live on a private registry that is written to a
// node_exporter textfile instead of being scraped.
type ImportMetrics struct {
	registry *prometheus.Registry

	inserted    *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

func NewImportMetrics() *ImportMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &ImportMetrics{
		registry: reg,
		inserted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cr",
			Subsystem: "import",
			Name:      "records_inserted_total",
			Help:      "Territorial records inserted by the import, by hierarchy level.",
		}, []string{"level"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cr",
			Subsystem: "import",
			Name:      "failures_total",
			Help:      "Failed import runs by error kind.",
		}, []string{"kind"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cr",
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Wall time of an import run.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cr",
			Subsystem: "import",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last committed import.",
		}),
	}
}

func (m *ImportMetrics) ObserveInserted(level string, n int) {
	m.inserted.WithLabelValues(level).Add(float64(n))
}

func (m *ImportMetrics) ObserveFailure(kind string) {
	m.failures.WithLabelValues(kind).Inc()
}

func (m *ImportMetrics) ObserveDuration(d time.Duration) {
	m.duration.Observe(d.Seconds())
}

func (m *ImportMetrics) MarkSuccess(at time.Time) {
	m.lastSuccess.Set(float64(at.Unix()))
}

// WriteTextfile writes the collected metrics atomically to path.
func (m *ImportMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
