package watcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/Swind/service-watcher/core"
)

const (
	// DefaultSampleInterval is how often the sampler forwards the counter.
	DefaultSampleInterval = time.Second

	// DefaultWaitInterval is how often the startup watcher re-checks the running task.
	DefaultWaitInterval = 5 * time.Second

	// DefaultIndicatorID is the fixed identifier of the waiting indicator.
	DefaultIndicatorID = 9248

	// DefaultWaitingTitle and DefaultWaitingText are shown while a task waits in the queue.
	DefaultWaitingTitle = "Waiting…"
	DefaultWaitingText  = "Another operation is in progress"

	samplerRunnerName = "service_progress_watcher"
	watcherRunnerName = "service_startup_watcher"
)

// QueueOrder selects which pending descriptor the startup watcher launches next.
type QueueOrder int

const (
	// LIFO launches the most recently submitted descriptor first.
	LIFO QueueOrder = iota
	// FIFO launches descriptors in submission order.
	FIFO
)

// String returns "lifo" or "fifo".
func (o QueueOrder) String() string {
	switch o {
	case LIFO:
		return "lifo"
	case FIFO:
		return "fifo"
	default:
		return fmt.Sprintf("QueueOrder(%d)", int(o))
	}
}

// ParseQueueOrder parses "lifo" or "fifo", case-insensitively.
func ParseQueueOrder(s string) (QueueOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lifo", "":
		return LIFO, nil
	case "fifo":
		return FIFO, nil
	default:
		return LIFO, fmt.Errorf("unknown queue order %q", s)
	}
}

// Options tunes samplers and serializers. The zero value is not used
// directly; start from DefaultOptions.
type Options struct {
	SampleInterval time.Duration
	WaitInterval   time.Duration

	IndicatorID  int
	WaitingTitle string
	WaitingText  string

	QueueOrder QueueOrder

	Logger             core.Logger
	Metrics            Metrics
	LaunchErrorHandler LaunchErrorHandler
}

// DefaultOptions returns the documented tuning constants.
func DefaultOptions() Options {
	return Options{
		SampleInterval: DefaultSampleInterval,
		WaitInterval:   DefaultWaitInterval,
		IndicatorID:    DefaultIndicatorID,
		WaitingTitle:   DefaultWaitingTitle,
		WaitingText:    DefaultWaitingText,
		QueueOrder:     LIFO,
		Logger:         core.NewNoOpLogger(),
		Metrics:        &NilMetrics{},
	}
}

// Option mutates Options.
type Option func(*Options)

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.SampleInterval <= 0 {
		o.SampleInterval = DefaultSampleInterval
	}
	if o.WaitInterval <= 0 {
		o.WaitInterval = DefaultWaitInterval
	}
	if o.Logger == nil {
		o.Logger = core.NewNoOpLogger()
	}
	if o.Metrics == nil {
		o.Metrics = &NilMetrics{}
	}
	return o
}

// WithOptions replaces every option at once, e.g. with values from config.
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

// WithSampleInterval sets how often samplers forward the counter.
func WithSampleInterval(d time.Duration) Option {
	return func(o *Options) { o.SampleInterval = d }
}

// WithWaitInterval sets how often the startup watcher re-checks the running task.
func WithWaitInterval(d time.Duration) Option {
	return func(o *Options) { o.WaitInterval = d }
}

// WithIndicatorID sets the identifier passed to the waiting indicator.
func WithIndicatorID(id int) Option {
	return func(o *Options) { o.IndicatorID = id }
}

// WithWaitingText sets the localized title and body of the waiting indicator.
func WithWaitingText(title, text string) Option {
	return func(o *Options) {
		o.WaitingTitle = title
		o.WaitingText = text
	}
}

// WithQueueOrder selects LIFO or FIFO launch order for queued descriptors.
func WithQueueOrder(order QueueOrder) Option {
	return func(o *Options) { o.QueueOrder = order }
}

// WithLogger sets the logger used by samplers, serializers and their runners.
func WithLogger(l core.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetrics sets the metrics hooks.
func WithMetrics(m Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithLaunchErrorHandler sets the handler told about failed launches.
func WithLaunchErrorHandler(h LaunchErrorHandler) Option {
	return func(o *Options) { o.LaunchErrorHandler = h }
}
