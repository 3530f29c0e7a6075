package prometheus

import (
	"errors"
	"fmt"

	"github.com/Swind/service-watcher/watcher"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	// ByteBuckets overrides the histogram buckets of sampled byte counts.
	ByteBuckets []float64
}

// MetricsExporter adapts watcher.Metrics to Prometheus collectors.
type MetricsExporter struct {
	launchTotal       *prom.CounterVec
	launchFailedTotal prom.Counter
	queueDepth        prom.Gauge
	bytesSampled      prom.Histogram
	samplerTerminated *prom.CounterVec
}

var _ watcher.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for watcher.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "servicewatcher"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.ByteBuckets
	if len(buckets) == 0 {
		// 1 KiB .. 16 GiB
		buckets = prom.ExponentialBuckets(1024, 4, 13)
	}

	launchVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "launch_total",
		Help:      "Total number of launched tasks by mode.",
	}, []string{"mode"})
	launchFailed := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "launch_failed_total",
		Help:      "Total number of launches that failed and consumed their descriptor.",
	})
	queueDepth := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current number of queued launch requests.",
	})
	bytesSampled := prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "bytes_sampled",
		Help:      "Byte counts forwarded to progress sinks.",
		Buckets:   buckets,
	})
	terminatedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "sampler_terminated_total",
		Help:      "Total number of terminated progress samplers by reason.",
	}, []string{"reason"})

	var err error
	if launchVec, err = registerCollector(reg, launchVec); err != nil {
		return nil, err
	}
	if launchFailed, err = registerCollector(reg, launchFailed); err != nil {
		return nil, err
	}
	if queueDepth, err = registerCollector(reg, queueDepth); err != nil {
		return nil, err
	}
	if bytesSampled, err = registerCollector(reg, bytesSampled); err != nil {
		return nil, err
	}
	if terminatedVec, err = registerCollector(reg, terminatedVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		launchTotal:       launchVec,
		launchFailedTotal: launchFailed,
		queueDepth:        queueDepth,
		bytesSampled:      bytesSampled,
		samplerTerminated: terminatedVec,
	}, nil
}

// RecordLaunch records a successful launch.
func (m *MetricsExporter) RecordLaunch(mode string) {
	if m == nil {
		return
	}
	m.launchTotal.WithLabelValues(normalizeLabel(mode, "unknown")).Inc()
}

// RecordLaunchFailure records a failed launch.
func (m *MetricsExporter) RecordLaunchFailure() {
	if m == nil {
		return
	}
	m.launchFailedTotal.Inc()
}

// RecordQueueDepth records queue depth.
func (m *MetricsExporter) RecordQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

// RecordBytesSampled records a forwarded byte count.
func (m *MetricsExporter) RecordBytesSampled(written int64) {
	if m == nil {
		return
	}
	m.bytesSampled.Observe(float64(written))
}

// RecordSamplerTerminated records why a sampler stopped.
func (m *MetricsExporter) RecordSamplerTerminated(reason string) {
	if m == nil {
		return
	}
	m.samplerTerminated.WithLabelValues(normalizeLabel(reason, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
