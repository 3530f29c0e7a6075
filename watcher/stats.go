package watcher

// SamplerState is the lifecycle phase of a ProgressSampler.
// Terminated is absorbing.
type SamplerState int32

const (
	SamplerCreated SamplerState = iota
	SamplerWatching
	SamplerTerminated
)

func (s SamplerState) String() string {
	switch s {
	case SamplerCreated:
		return "created"
	case SamplerWatching:
		return "watching"
	case SamplerTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// SamplerStats is a point-in-time view of one sampler.
type SamplerStats struct {
	State         SamplerState
	TotalSize     int64
	Position      int64
	LastForwarded int64
	Forwards      int64
	Reason        string
}

// SerializerStats is a point-in-time view of a TaskSerializer.
type SerializerStats struct {
	Pending        int
	WatcherActive  bool
	IndicatorShown bool
	Launched       int64
	LaunchFailures int64
	QueuedTotal    int64
}

// Stats is the combined view exported by Watcher.
type Stats struct {
	Position     int64
	SamplerAlive bool
	Serializer   SerializerStats
}
