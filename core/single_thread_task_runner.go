package core

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

const defaultWorkQueueSize = 100

// SingleThreadTaskRunner binds a dedicated Goroutine to execute tasks sequentially.
// It guarantees that all tasks submitted to it run on the same Goroutine (Thread Affinity),
// so state touched only from its tasks needs no locking.
//
// It is the scheduling context behind both the progress sampler and the
// startup watcher: each owns one runner, posts a repeating tick to it, and
// shuts it down from inside the tick when its work is done.
type SingleThreadTaskRunner struct {
	// Task queue: Buffered channel for tasks
	workQueue chan Task

	// Lifecycle control
	ctx    context.Context
	cancel context.CancelFunc

	stopped      chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once
	closed       atomic.Bool

	// Pending delayed tasks, stopped on shutdown
	timersMu sync.Mutex
	timers   map[*time.Timer]struct{}

	name         string
	logger       Logger
	panicHandler PanicHandler
}

// RunnerOption configures a SingleThreadTaskRunner.
type RunnerOption func(*SingleThreadTaskRunner)

// WithName sets the runner name used in logs and panic reports.
func WithName(name string) RunnerOption {
	return func(r *SingleThreadTaskRunner) { r.name = name }
}

// WithRunnerLogger sets the runner logger.
func WithRunnerLogger(logger Logger) RunnerOption {
	return func(r *SingleThreadTaskRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPanicHandler overrides the handler invoked when a task panics.
func WithPanicHandler(h PanicHandler) RunnerOption {
	return func(r *SingleThreadTaskRunner) {
		if h != nil {
			r.panicHandler = h
		}
	}
}

// WithQueueSize sets the work queue buffer size.
func WithQueueSize(n int) RunnerOption {
	return func(r *SingleThreadTaskRunner) {
		if n > 0 {
			r.workQueue = make(chan Task, n)
		}
	}
}

// NewSingleThreadTaskRunner creates and starts a new SingleThreadTaskRunner.
// It immediately spawns a dedicated goroutine for task execution.
func NewSingleThreadTaskRunner(opts ...RunnerOption) *SingleThreadTaskRunner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &SingleThreadTaskRunner{
		workQueue: make(chan Task, defaultWorkQueueSize),
		ctx:       ctx,
		cancel:    cancel,
		stopped:   make(chan struct{}),
		timers:    make(map[*time.Timer]struct{}),
		logger:    NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.panicHandler == nil {
		r.panicHandler = &LoggingPanicHandler{Logger: r.logger}
	}

	// Start the dedicated message loop
	go r.runLoop()

	return r
}

// Name returns the name of the task runner
func (r *SingleThreadTaskRunner) Name() string {
	return r.name
}

// PostTask submits a task for execution. Tasks posted after shutdown are dropped.
func (r *SingleThreadTaskRunner) PostTask(task Task) {
	// Check if runner is closed to avoid queueing into a dead loop
	if r.closed.Load() {
		return
	}

	select {
	case <-r.ctx.Done():
		// Runner stopped, drop task
		return
	case r.workQueue <- task:
	}
}

// PostDelayedTask submits a task to run after delay.
// Uses time.AfterFunc which re-injects the task into the loop when the timer fires.
func (r *SingleThreadTaskRunner) PostDelayedTask(task Task, delay time.Duration) {
	if r.closed.Load() {
		return
	}

	r.timersMu.Lock()
	defer r.timersMu.Unlock()
	if r.closed.Load() {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		r.timersMu.Lock()
		delete(r.timers, timer)
		r.timersMu.Unlock()
		r.PostTask(task)
	})
	r.timers[timer] = struct{}{}
}

// PostRepeatingTask submits a task that repeats at a fixed interval, first run immediately.
func (r *SingleThreadTaskRunner) PostRepeatingTask(task Task, interval time.Duration) RepeatingTaskHandle {
	return r.PostRepeatingTaskWithInitialDelay(task, 0, interval)
}

// PostRepeatingTaskWithInitialDelay submits a repeating task with an initial delay.
// The next run is scheduled interval after the previous run returns, so runs never overlap.
func (r *SingleThreadTaskRunner) PostRepeatingTaskWithInitialDelay(
	task Task,
	initialDelay, interval time.Duration,
) RepeatingTaskHandle {
	handle := &singleThreadRepeatingHandle{
		runner:   r,
		task:     task,
		interval: interval,
	}

	repeatingTask := handle.createRepeatingTask()

	if initialDelay > 0 {
		r.PostDelayedTask(repeatingTask, initialDelay)
	} else {
		r.PostTask(repeatingTask)
	}

	return handle
}

// Shutdown marks the runner as closed and stops its loop.
// Unlike Stop(), it does not wait for the loop to exit, so a task may call
// Shutdown() on its own runner. Queued and delayed tasks are dropped.
func (r *SingleThreadTaskRunner) Shutdown() {
	r.shutdownOnce.Do(func() {
		r.closed.Store(true)
		r.cancel()

		r.timersMu.Lock()
		for t := range r.timers {
			t.Stop()
		}
		r.timers = make(map[*time.Timer]struct{})
		r.timersMu.Unlock()
	})
}

// IsClosed returns true once Shutdown or Stop has been called
func (r *SingleThreadTaskRunner) IsClosed() bool {
	return r.closed.Load()
}

// Stop shuts the runner down and waits for the current task to complete.
// It must not be called from a task running on this runner.
func (r *SingleThreadTaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.Shutdown()
		<-r.stopped
	})
}

// Done returns a channel closed after the loop goroutine has exited.
func (r *SingleThreadTaskRunner) Done() <-chan struct{} {
	return r.stopped
}

// PendingDelayedCount returns the number of timers not yet fired.
func (r *SingleThreadTaskRunner) PendingDelayedCount() int {
	r.timersMu.Lock()
	defer r.timersMu.Unlock()
	return len(r.timers)
}

// runLoop is the core of this runner, it occupies a dedicated goroutine
func (r *SingleThreadTaskRunner) runLoop() {
	defer close(r.stopped)

	runCtx := context.WithValue(r.ctx, taskRunnerKey, TaskRunner(r))

	for {
		select {
		case task := <-r.workQueue:
			// A task may have shut us down while others were still queued
			if r.closed.Load() {
				return
			}
			r.runTask(runCtx, task)

		case <-r.ctx.Done():
			return
		}
	}
}

func (r *SingleThreadTaskRunner) runTask(ctx context.Context, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			r.panicHandler.HandlePanic(ctx, r.name, rec, debug.Stack())
		}
	}()
	task(ctx)
}

// =============================================================================
// Repeating Task Handle for SingleThreadTaskRunner
// =============================================================================

type singleThreadRepeatingHandle struct {
	runner   *SingleThreadTaskRunner
	task     Task
	interval time.Duration
	stopped  atomic.Bool
}

func (h *singleThreadRepeatingHandle) Stop() {
	h.stopped.Store(true)
}

func (h *singleThreadRepeatingHandle) IsStopped() bool {
	return h.stopped.Load()
}

func (h *singleThreadRepeatingHandle) createRepeatingTask() Task {
	return func(ctx context.Context) {
		if h.runner.IsClosed() || h.IsStopped() {
			return
		}

		h.task(ctx)

		// The task itself may have stopped the handle or shut the runner down
		if !h.IsStopped() && !h.runner.IsClosed() {
			h.runner.PostDelayedTask(h.createRepeatingTask(), h.interval)
		}
	}
}

var _ TaskRunner = (*SingleThreadTaskRunner)(nil)
