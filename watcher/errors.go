package watcher

import (
	"errors"
	"fmt"
)

var (
	// ErrNilSink is returned when a sampler is created without a sink.
	ErrNilSink = errors.New("progress sink is nil")

	// ErrInvalidTotalSize is returned for a negative total size.
	ErrInvalidTotalSize = errors.New("total size must not be negative")

	// ErrAlreadyWatching is returned by a second Watch call.
	ErrAlreadyWatching = errors.New("sampler is already watching")

	// ErrSamplerTerminated is returned by Watch on a terminated sampler.
	ErrSamplerTerminated = errors.New("sampler is terminated")

	// ErrNilLauncher is returned when a serializer is created without a launcher.
	ErrNilLauncher = errors.New("launcher is nil")

	// ErrNilRunningFlag is returned when a serializer is created without a running flag.
	ErrNilRunningFlag = errors.New("running flag is nil")

	// ErrNilState is returned when a sampler or serializer is created without a State.
	ErrNilState = errors.New("state is nil")
)

// PanicError carries a value recovered from a panicking host callback.
type PanicError struct {
	Op    string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Op, e.Value)
}

// recoverAs turns a panic in fn into a *PanicError.
func recoverAs(op string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Op: op, Value: rec}
		}
	}()
	return fn()
}
