package thumbnail

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records batch outcomes on a private registry so they can be flushed
// to a node_exporter textfile after a CLI run. A nil *Metrics is a no-op.
type Metrics struct {
	registry       *prometheus.Registry
	records        *prometheus.CounterVec
	sizeFailures   prometheus.Counter
	recordDuration prometheus.Histogram
	lastBatch      prometheus.Gauge
	lastCanceled   prometheus.Gauge
}

// NewMetrics registers the thumbnail collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spritedeck",
			Subsystem: "thumbnail",
			Name:      "records_total",
			Help:      "Records processed by thumbnail batches, by outcome.",
		}, []string{"outcome"}),
		sizeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spritedeck",
			Subsystem: "thumbnail",
			Name:      "size_failures_total",
			Help:      "Individual thumbnail sizes that failed to encode or write.",
		}),
		recordDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spritedeck",
			Subsystem: "thumbnail",
			Name:      "generate_duration_seconds",
			Help:      "Time to decode a source and write all of its sizes.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		lastBatch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spritedeck",
			Subsystem: "thumbnail",
			Name:      "last_batch_timestamp_seconds",
			Help:      "Unix time the last batch finished.",
		}),
		lastCanceled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spritedeck",
			Subsystem: "thumbnail",
			Name:      "last_batch_canceled",
			Help:      "1 when the last batch was canceled before finishing.",
		}),
	}
	m.registry.MustRegister(m.records, m.sizeFailures, m.recordDuration, m.lastBatch, m.lastCanceled)
	for _, outcome := range []string{"generated", "failed", "skipped"} {
		m.records.WithLabelValues(outcome)
	}
	return m
}

// Registry exposes the private registry (tests, custom exporters).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes the current values in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observeRecord(o outcome, d time.Duration) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(o.String()).Inc()
	if o == outcomeGenerated || o == outcomeFailed {
		m.recordDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) observeSizeFailure() {
	if m == nil {
		return
	}
	m.sizeFailures.Inc()
}

func (m *Metrics) observeBatch(s Summary) {
	if m == nil {
		return
	}
	m.lastBatch.SetToCurrentTime()
	if s.Canceled {
		m.lastCanceled.Set(1)
	} else {
		m.lastCanceled.Set(0)
	}
}
