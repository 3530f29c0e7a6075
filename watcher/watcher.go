package watcher

import (
	"sync"
)

// Watcher bundles one State with the TaskSerializer and the samplers that share it.
// It is what a host keeps around for the lifetime of the process.
type Watcher struct {
	state      *State
	serializer *TaskSerializer
	opts       []Option

	mu      sync.Mutex
	sampler *ProgressSampler
}

// New creates a Watcher with a fresh State.
func New(launcher Launcher, flag RunningFlag, indicator WaitingIndicator, opts ...Option) (*Watcher, error) {
	state := NewState()
	serializer, err := NewTaskSerializer(state, launcher, flag, indicator, opts...)
	if err != nil {
		return nil, err
	}
	return &Watcher{
		state:      state,
		serializer: serializer,
		opts:       opts,
	}, nil
}

// NewProgressSampler creates a sampler on the watcher's State, resetting the
// bytes-processed counter. Call Watch on the result to start sampling.
func (w *Watcher) NewProgressSampler(sink ProgressSink, totalSize int64) (*ProgressSampler, error) {
	p, err := NewProgressSampler(w.state, sink, totalSize, w.opts...)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.sampler = p
	w.mu.Unlock()
	return p, nil
}

// RunTask forwards to the TaskSerializer.
func (w *Watcher) RunTask(desc Descriptor) {
	w.serializer.RunTask(desc)
}

// SetPosition publishes the bytes processed by the current worker.
func (w *Watcher) SetPosition(n int64) {
	w.state.SetPosition(n)
}

// AddPosition advances the bytes-processed counter by delta.
func (w *Watcher) AddPosition(delta int64) int64 {
	return w.state.AddPosition(delta)
}

// Position returns the bytes-processed counter.
func (w *Watcher) Position() int64 {
	return w.state.Position()
}

// State returns the shared record behind this watcher.
func (w *Watcher) State() *State { return w.state }

// Serializer returns the watcher's TaskSerializer.
func (w *Watcher) Serializer() *TaskSerializer { return w.serializer }

// Stats returns a combined snapshot.
func (w *Watcher) Stats() Stats {
	return Stats{
		Position:     w.state.Position(),
		SamplerAlive: w.state.SamplerAlive(),
		Serializer:   w.serializer.Stats(),
	}
}

// Close cancels the most recent sampler and closes the serializer,
// returning any descriptors that were still queued.
func (w *Watcher) Close() []Descriptor {
	w.mu.Lock()
	p := w.sampler
	w.sampler = nil
	w.mu.Unlock()

	if p != nil {
		p.Cancel()
	}
	return w.serializer.Close()
}
