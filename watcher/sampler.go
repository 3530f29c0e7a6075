package watcher

import (
	"context"
	"sync"

	"github.com/Swind/service-watcher/core"
)

// ProgressSampler periodically forwards the shared bytes-processed counter
// to a ProgressSink without touching the worker that writes it.
//
// It handles one task at a time: constructing a sampler resets the shared
// counter and makes the new sampler's context the one the serializer
// checks for liveness.
type ProgressSampler struct {
	state     *State
	sink      ProgressSink
	totalSize int64
	opts      Options
	runner    *core.SingleThreadTaskRunner

	// mu serializes ticks with termination, so nothing reaches the sink
	// once terminate has run.
	mu            sync.Mutex
	phase         SamplerState
	reason        string
	lastForwarded int64
	forwards      int64

	done chan struct{}
}

// NewProgressSampler creates a sampler for a task of totalSize bytes.
// It resets the shared counter to 0 and installs its own scheduling
// context on state. totalSize may be 0.
func NewProgressSampler(state *State, sink ProgressSink, totalSize int64, opts ...Option) (*ProgressSampler, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if sink == nil {
		return nil, ErrNilSink
	}
	if totalSize < 0 {
		return nil, ErrInvalidTotalSize
	}

	o := buildOptions(opts)
	p := &ProgressSampler{
		state:     state,
		sink:      sink,
		totalSize: totalSize,
		opts:      o,
		phase:     SamplerCreated,
		done:      make(chan struct{}),
	}

	state.SetPosition(0)
	p.runner = core.NewSingleThreadTaskRunner(
		core.WithName(samplerRunnerName),
		core.WithRunnerLogger(o.Logger),
	)
	state.installSampler(p.runner)

	return p, nil
}

// Watch starts sampling. The first tick fires one sample interval later.
func (p *ProgressSampler) Watch() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.phase {
	case SamplerWatching:
		return ErrAlreadyWatching
	case SamplerTerminated:
		return ErrSamplerTerminated
	}
	p.phase = SamplerWatching

	interval := p.opts.SampleInterval
	p.runner.PostRepeatingTaskWithInitialDelay(p.tick, interval, interval)

	p.opts.Logger.Info("progress sampler watching",
		core.F("total_size", p.totalSize),
		core.F("interval", interval),
	)
	return nil
}

// Cancel terminates the sampler from outside its ticks.
func (p *ProgressSampler) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminateLocked(ReasonStopped)
}

// Done is closed once the sampler has terminated.
func (p *ProgressSampler) Done() <-chan struct{} {
	return p.done
}

// State returns the current lifecycle phase.
func (p *ProgressSampler) State() SamplerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Reason returns why the sampler terminated, or "" while it is live.
func (p *ProgressSampler) Reason() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

// TotalSize returns the declared size of the task.
func (p *ProgressSampler) TotalSize() int64 {
	return p.totalSize
}

// Stats returns a snapshot of the sampler.
func (p *ProgressSampler) Stats() SamplerStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return SamplerStats{
		State:         p.phase,
		TotalSize:     p.totalSize,
		Position:      p.state.Position(),
		LastForwarded: p.lastForwarded,
		Forwards:      p.forwards,
		Reason:        p.reason,
	}
}

func (p *ProgressSampler) tick(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase != SamplerWatching {
		return
	}

	var name string
	if err := recoverAs("FileName", func() error {
		name = p.sink.FileName()
		return nil
	}); err != nil {
		p.fatalLocked(err)
		return
	}
	if name == "" {
		// Worker has not started its first item yet; only a cancel ends the sampler
		p.opts.Logger.Debug("progress tick deferred, no file name yet")
		p.checkCancelledLocked()
		return
	}

	n := p.state.Position()
	if n < p.lastForwarded {
		// Counter was reset by a newer sampler; never report progress going backwards.
		n = p.lastForwarded
	}

	if err := recoverAs("AddWrittenLength", func() error {
		return p.sink.AddWrittenLength(n)
	}); err != nil {
		p.fatalLocked(err)
		return
	}
	p.lastForwarded = n
	p.forwards++
	p.opts.Metrics.RecordBytesSampled(n)

	// >= so that a worker overshooting its declared total still terminates the sampler.
	if n >= p.totalSize {
		p.terminateLocked(ReasonCompleted)
		return
	}

	p.checkCancelledLocked()
}

func (p *ProgressSampler) checkCancelledLocked() {
	var cancelled bool
	if err := recoverAs("Cancelled", func() error {
		cancelled = p.sink.Cancelled()
		return nil
	}); err != nil {
		p.fatalLocked(err)
		return
	}
	if cancelled {
		p.terminateLocked(ReasonCancelled)
	}
}

func (p *ProgressSampler) fatalLocked(err error) {
	p.opts.Logger.Error("progress sink failed, stopping sampler", core.F("error", err))
	p.terminateLocked(ReasonSinkFatal)
}

func (p *ProgressSampler) terminateLocked(reason string) {
	if p.phase == SamplerTerminated {
		return
	}
	p.phase = SamplerTerminated
	p.reason = reason

	p.runner.Shutdown()
	p.state.releaseSampler(p.runner)

	p.opts.Metrics.RecordSamplerTerminated(reason)
	p.opts.Logger.Info("progress sampler terminated",
		core.F("reason", reason),
		core.F("last_forwarded", p.lastForwarded),
		core.F("total_size", p.totalSize),
	)
	close(p.done)
}
