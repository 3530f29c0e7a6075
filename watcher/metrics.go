package watcher

// Launch modes reported to Metrics.RecordLaunch.
const (
	LaunchImmediate = "immediate"
	LaunchQueued    = "queued"
)

// Sampler termination reasons.
const (
	ReasonCompleted = "completed"
	ReasonCancelled = "cancelled"
	ReasonSinkFatal = "sink_fatal"
	ReasonStopped   = "stopped"
)

// Metrics defines the interface for collecting watcher metrics.
// Methods should be non-blocking and fast; they run on tick goroutines
// and under the serializer lock.
type Metrics interface {
	// RecordLaunch records a successful launch. mode is LaunchImmediate or LaunchQueued.
	RecordLaunch(mode string)

	// RecordLaunchFailure records a launch whose descriptor was consumed by an error.
	RecordLaunchFailure()

	// RecordQueueDepth records the pending queue length after a change.
	RecordQueueDepth(depth int)

	// RecordBytesSampled records the value just forwarded to a sink.
	RecordBytesSampled(written int64)

	// RecordSamplerTerminated records why a sampler stopped.
	RecordSamplerTerminated(reason string)
}

// NilMetrics provides a no-op metrics implementation.
type NilMetrics struct{}

func (m *NilMetrics) RecordLaunch(mode string)              {}
func (m *NilMetrics) RecordLaunchFailure()                  {}
func (m *NilMetrics) RecordQueueDepth(depth int)            {}
func (m *NilMetrics) RecordBytesSampled(written int64)      {}
func (m *NilMetrics) RecordSamplerTerminated(reason string) {}
