package servicewatcher

import (
	"sync"

	"github.com/Swind/service-watcher/watcher"
)

// =============================================================================
// Global Watcher Helper (Singleton)
// =============================================================================

var (
	globalWatcher *watcher.Watcher
	globalMu      sync.Mutex
)

// InitGlobal initializes the process-wide watcher. Later calls are no-ops
// until ShutdownGlobal is called.
func InitGlobal(launcher Launcher, flag RunningFlag, indicator WaitingIndicator, opts ...Option) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalWatcher != nil {
		return nil // Already initialized
	}

	w, err := watcher.New(launcher, flag, indicator, opts...)
	if err != nil {
		return err
	}
	globalWatcher = w
	return nil
}

// GetGlobal returns the process-wide watcher.
// It panics if InitGlobal has not been called.
func GetGlobal() *watcher.Watcher {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalWatcher == nil {
		panic("global watcher not initialized. Call InitGlobal() first.")
	}
	return globalWatcher
}

// ShutdownGlobal closes the process-wide watcher and returns the descriptors
// that were still queued.
func ShutdownGlobal() []Descriptor {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalWatcher == nil {
		return nil
	}
	dropped := globalWatcher.Close()
	globalWatcher = nil
	return dropped
}

// RunService launches desc now or queues it behind the running task.
func RunService(desc Descriptor) {
	GetGlobal().RunTask(desc)
}

// NewProgressWatcher creates a sampler for a task of totalSize bytes and
// resets the shared byte counter.
func NewProgressWatcher(sink ProgressSink, totalSize int64) (*ProgressWatcher, error) {
	return GetGlobal().NewProgressSampler(sink, totalSize)
}

// SetPosition publishes the bytes processed by the current worker.
func SetPosition(n int64) {
	GetGlobal().SetPosition(n)
}

// AddPosition advances the shared byte counter.
func AddPosition(delta int64) int64 {
	return GetGlobal().AddPosition(delta)
}

// Position returns the shared byte counter.
func Position() int64 {
	return GetGlobal().Position()
}
