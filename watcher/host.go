package watcher

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// ProgressSink receives sampled byte counts for the running task.
// All methods must be non-blocking.
type ProgressSink interface {
	// FileName returns the item currently being processed, or "" if the
	// worker has not started its first item yet.
	FileName() string

	// AddWrittenLength reports the total bytes written so far. A non-nil
	// error is fatal for the sampler feeding this sink.
	AddWrittenLength(written int64) error

	// Cancelled reports whether the user cancelled the task.
	Cancelled() bool
}

// Descriptor is an opaque launch request for one unit of background work.
// The serializer never inspects Payload and never deduplicates descriptors.
type Descriptor struct {
	ID      uuid.UUID
	Name    string
	Payload any
}

// NewDescriptor returns a descriptor with a fresh random ID.
func NewDescriptor(name string, payload any) Descriptor {
	return Descriptor{ID: uuid.New(), Name: name, Payload: payload}
}

// Launcher starts a task asynchronously and returns immediately.
//
// Launch is called with the serializer's lock held: it must not block and
// must not call TaskSerializer.RunTask synchronously.
type Launcher interface {
	Launch(desc Descriptor) error
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(desc Descriptor) error

// Launch calls f(desc).
func (f LauncherFunc) Launch(desc Descriptor) error { return f(desc) }

// RunningFlag is the host's advisory "a task is bound and active" signal.
type RunningFlag interface {
	IsRunning() bool
}

// RunningFlagFunc adapts a function to RunningFlag.
type RunningFlagFunc func() bool

// IsRunning calls f().
func (f RunningFlagFunc) IsRunning() bool { return f() }

// AtomicRunningFlag is a RunningFlag hosts can flip from their binding callbacks.
type AtomicRunningFlag struct {
	atomic.Bool
}

// IsRunning reports the stored value.
func (f *AtomicRunningFlag) IsRunning() bool { return f.Load() }

// WaitingIndicator is the user-visible "waiting for another operation" surface.
// Show is called again with the same id to update in place.
type WaitingIndicator interface {
	Show(id int, title, text string) error
	Dismiss(id int) error
}

// LaunchErrorHandler is told about descriptors whose launch failed.
// The descriptor has already been consumed when it is called.
type LaunchErrorHandler interface {
	HandleLaunchError(desc Descriptor, err error)
}

// LaunchErrorHandlerFunc adapts a function to LaunchErrorHandler.
type LaunchErrorHandlerFunc func(desc Descriptor, err error)

// HandleLaunchError calls f.
func (f LaunchErrorHandlerFunc) HandleLaunchError(desc Descriptor, err error) { f(desc, err) }

type nopIndicator struct{}

func (nopIndicator) Show(int, string, string) error { return nil }
func (nopIndicator) Dismiss(int) error              { return nil }
