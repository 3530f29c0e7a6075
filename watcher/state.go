package watcher

import (
	"sync/atomic"

	"github.com/Swind/service-watcher/core"
)

// State is the process-wide record shared by samplers and serializers:
// the bytes-processed counter written by the worker, and the scheduling
// context of the current sampler.
//
// Hosts normally hold one State, but nothing stops several independent
// States from living in one process.
type State struct {
	position atomic.Int64
	sampler  atomic.Pointer[core.SingleThreadTaskRunner]
}

// NewState returns an empty State.
func NewState() *State {
	return &State{}
}

// SetPosition publishes the bytes processed so far. Called by the worker.
func (s *State) SetPosition(n int64) {
	s.position.Store(n)
}

// AddPosition advances the counter by delta and returns the new value.
func (s *State) AddPosition(delta int64) int64 {
	return s.position.Add(delta)
}

// Position returns the last published byte count.
func (s *State) Position() int64 {
	return s.position.Load()
}

// SamplerAlive reports whether the current sampler's scheduling context exists and is running.
func (s *State) SamplerAlive() bool {
	r := s.sampler.Load()
	return r != nil && !r.IsClosed()
}

// installSampler makes r the current sampler context, replacing any older one.
func (s *State) installSampler(r *core.SingleThreadTaskRunner) {
	s.sampler.Store(r)
}

// releaseSampler clears the current sampler context if it is still r.
func (s *State) releaseSampler(r *core.SingleThreadTaskRunner) {
	s.sampler.CompareAndSwap(r, nil)
}

// taskRunning is the combined liveness predicate: the flag alone is not trusted.
func (s *State) taskRunning(flag RunningFlag) bool {
	return flag.IsRunning() && s.SamplerAlive()
}
