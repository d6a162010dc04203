package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the Prometheus metrics of one batch run. Each Recorder has
// its own registry so a process can run several batches, and tests stay
// isolated.
type Recorder struct {
	registry *prometheus.Registry

	// InvocationsTotal counts renderer invocations by status.
	InvocationsTotal *prometheus.CounterVec

	// InvocationDuration tracks how long the renderer ran.
	InvocationDuration *prometheus.HistogramVec

	// ConfigsDiscovered is the number of configuration files found.
	ConfigsDiscovered prometheus.Gauge

	// BatchDuration is the wall time of the last batch.
	BatchDuration prometheus.Gauge

	// LastBatchTimestamp is set when a batch finishes.
	LastBatchTimestamp prometheus.Gauge
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		InvocationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fontbatch",
				Subsystem: "renderer",
				Name:      "invocations_total",
				Help:      "Total number of renderer invocations by status",
			},
			[]string{"status"},
		),
		InvocationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fontbatch",
				Subsystem: "renderer",
				Name:      "invocation_duration_seconds",
				Help:      "Duration of renderer invocations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
			[]string{"status"},
		),
		ConfigsDiscovered: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "fontbatch",
				Subsystem: "batch",
				Name:      "configs_discovered",
				Help:      "Number of configuration files discovered in the last batch",
			},
		),
		BatchDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "fontbatch",
				Subsystem: "batch",
				Name:      "duration_seconds",
				Help:      "Wall time of the last batch in seconds",
			},
		),
		LastBatchTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "fontbatch",
				Subsystem: "batch",
				Name:      "last_completion_timestamp_seconds",
				Help:      "Unix time the last batch finished",
			},
		),
	}
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordInvocation records metrics for a finished renderer invocation.
func (r *Recorder) RecordInvocation(status string, duration time.Duration) {
	r.InvocationsTotal.WithLabelValues(status).Inc()
	r.InvocationDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordBatch records the end of a batch.
func (r *Recorder) RecordBatch(discovered int, duration time.Duration) {
	r.ConfigsDiscovered.Set(float64(discovered))
	r.BatchDuration.Set(duration.Seconds())
	r.LastBatchTimestamp.SetToCurrentTime()
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node_exporter textfile collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
