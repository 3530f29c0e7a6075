package servicewatcher

import "github.com/Swind/service-watcher/watcher"

// Re-export commonly used types from the watcher package for convenience.
// This allows hosts to import only the servicewatcher package for most use cases.

// Descriptor is an opaque launch request
type Descriptor = watcher.Descriptor

// ProgressSink receives sampled byte counts
type ProgressSink = watcher.ProgressSink

// ProgressWatcher samples the shared counter for one task
type ProgressWatcher = watcher.ProgressSampler

// Launcher starts a task
type Launcher = watcher.Launcher

// LauncherFunc adapts a function to Launcher
type LauncherFunc = watcher.LauncherFunc

// RunningFlag is the host's advisory running signal
type RunningFlag = watcher.RunningFlag

// WaitingIndicator shows and dismisses the waiting notification
type WaitingIndicator = watcher.WaitingIndicator

// Option configures the watcher
type Option = watcher.Option

// Queue orders
const (
	LIFO = watcher.LIFO
	FIFO = watcher.FIFO
)

// NewDescriptor returns a descriptor with a fresh ID
var NewDescriptor = watcher.NewDescriptor
