package blankscan

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects run counters on a private registry so they can be written
// as a node_exporter textfile after a batch run.
type Metrics struct {
	registry *prometheus.Registry
	files    *prometheus.CounterVec
	bytes    prometheus.Counter
	duration prometheus.Gauge
	lastRun  prometheus.Gauge
}

// NewMetrics creates and registers the blankscan collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blankscan_files_total",
			Help: "Candidate image files processed, by outcome.",
		}, []string{"outcome"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blankscan_moved_bytes_total",
			Help: "Bytes relocated to the destination tree.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blankscan_run_duration_seconds",
			Help: "Wall-clock duration of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blankscan_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
	m.registry.MustRegister(m.files, m.bytes, m.duration, m.lastRun)

	// Expose every outcome, even at zero.
	for _, o := range []Outcome{OutcomeKept, OutcomeMatched, OutcomeMoved, OutcomeFailed} {
		m.files.WithLabelValues(o.String())
	}
	return m
}

// Observe records one file result. Usable as Config.OnResult.
func (m *Metrics) Observe(r FileResult) {
	m.files.WithLabelValues(r.Outcome.String()).Inc()
	if r.Outcome == OutcomeMoved {
		m.bytes.Add(float64(r.Bytes))
	}
}

// Finish records run-level values from s.
func (m *Metrics) Finish(s *Summary) {
	m.duration.Set(s.Elapsed.Seconds())
	m.lastRun.SetToCurrentTime()
}

// Gatherer exposes the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the collected metrics to path in the Prometheus text
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
