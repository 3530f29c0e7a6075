package watcher

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Swind/service-watcher/core"
)

// TaskSerializer makes sure at most one task launched through it is
// effectively running, queueing the rest behind a startup watcher.
//
// Launch order of queued descriptors follows Options.QueueOrder (LIFO by
// default). Queued descriptors cannot be withdrawn; Close drops them.
type TaskSerializer struct {
	state     *State
	launcher  Launcher
	flag      RunningFlag
	indicator WaitingIndicator
	opts      Options

	// mu guards everything below and is held across every Launch call,
	// so launches never overlap.
	mu             sync.Mutex
	pending        []Descriptor
	watcher        *core.SingleThreadTaskRunner
	indicatorShown bool

	launched       atomic.Int64
	launchFailures atomic.Int64
	queuedTotal    atomic.Int64
}

// NewTaskSerializer creates a serializer over state. A nil indicator is
// replaced by one that does nothing.
func NewTaskSerializer(
	state *State,
	launcher Launcher,
	flag RunningFlag,
	indicator WaitingIndicator,
	opts ...Option,
) (*TaskSerializer, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if launcher == nil {
		return nil, ErrNilLauncher
	}
	if flag == nil {
		return nil, ErrNilRunningFlag
	}
	if indicator == nil {
		indicator = nopIndicator{}
	}

	return &TaskSerializer{
		state:     state,
		launcher:  launcher,
		flag:      flag,
		indicator: indicator,
		opts:      buildOptions(opts),
	}, nil
}

// RunTask launches desc right away if no task is effectively running,
// otherwise appends it to the pending queue and makes sure the startup
// watcher is running.
func (s *TaskSerializer) RunTask(desc Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.taskRunning(s.flag) {
		s.launchLocked(desc, LaunchImmediate)
		return
	}

	if s.watcher == nil {
		s.startWatcherLocked()
	}
	s.pending = append(s.pending, desc)
	s.queuedTotal.Add(1)
	s.opts.Metrics.RecordQueueDepth(len(s.pending))

	s.opts.Logger.Info("task queued behind running task",
		core.F("task_id", desc.ID.String()),
		core.F("task", desc.Name),
		core.F("pending", len(s.pending)),
	)
}

// Pending returns the number of queued descriptors.
func (s *TaskSerializer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// WatcherActive reports whether the startup watcher exists.
func (s *TaskSerializer) WatcherActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watcher != nil
}

// IndicatorShown reports whether the waiting indicator is currently posted.
func (s *TaskSerializer) IndicatorShown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indicatorShown
}

// Stats returns a snapshot of the serializer.
func (s *TaskSerializer) Stats() SerializerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SerializerStats{
		Pending:        len(s.pending),
		WatcherActive:  s.watcher != nil,
		IndicatorShown: s.indicatorShown,
		Launched:       s.launched.Load(),
		LaunchFailures: s.launchFailures.Load(),
		QueuedTotal:    s.queuedTotal.Load(),
	}
}

// Close stops the startup watcher, dismisses the indicator and returns the
// descriptors that were still queued. They are not launched.
func (s *TaskSerializer) Close() []Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := s.pending
	s.pending = nil
	if s.watcher != nil {
		s.stopWatcherLocked()
	}
	s.opts.Metrics.RecordQueueDepth(0)
	return dropped
}

func (s *TaskSerializer) startWatcherLocked() {
	r := core.NewSingleThreadTaskRunner(
		core.WithName(watcherRunnerName),
		core.WithRunnerLogger(s.opts.Logger),
	)
	s.watcher = r

	if err := s.indicator.Show(s.opts.IndicatorID, s.opts.WaitingTitle, s.opts.WaitingText); err != nil {
		s.opts.Logger.Warn("failed to show waiting indicator",
			core.F("indicator_id", s.opts.IndicatorID),
			core.F("error", err),
		)
	}
	s.indicatorShown = true

	interval := s.opts.WaitInterval
	r.PostRepeatingTaskWithInitialDelay(func(ctx context.Context) {
		s.tick(r)
	}, interval, interval)

	s.opts.Logger.Debug("startup watcher started", core.F("interval", interval))
}

func (s *TaskSerializer) stopWatcherLocked() {
	if err := s.indicator.Dismiss(s.opts.IndicatorID); err != nil {
		s.opts.Logger.Warn("failed to dismiss waiting indicator",
			core.F("indicator_id", s.opts.IndicatorID),
			core.F("error", err),
		)
	}
	s.indicatorShown = false

	s.watcher.Shutdown()
	s.watcher = nil

	s.opts.Logger.Debug("startup watcher stopped")
}

func (s *TaskSerializer) tick(r *core.SingleThreadTaskRunner) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A watcher replaced or closed while this tick was in flight
	if s.watcher != r {
		return
	}

	if s.state.taskRunning(s.flag) {
		return
	}

	if len(s.pending) > 0 {
		desc := s.popLocked()
		s.opts.Metrics.RecordQueueDepth(len(s.pending))
		s.launchLocked(desc, LaunchQueued)
	}

	if len(s.pending) == 0 {
		s.stopWatcherLocked()
	}
}

func (s *TaskSerializer) popLocked() Descriptor {
	var desc Descriptor
	switch s.opts.QueueOrder {
	case FIFO:
		desc = s.pending[0]
		s.pending[0] = Descriptor{}
		s.pending = s.pending[1:]
	default:
		last := len(s.pending) - 1
		desc = s.pending[last]
		s.pending[last] = Descriptor{}
		s.pending = s.pending[:last]
	}
	return desc
}

func (s *TaskSerializer) launchLocked(desc Descriptor, mode string) {
	err := recoverAs("Launch", func() error {
		return s.launcher.Launch(desc)
	})
	if err != nil {
		s.launchFailures.Add(1)
		s.opts.Metrics.RecordLaunchFailure()
		s.opts.Logger.Error("task launch failed, descriptor dropped",
			core.F("task_id", desc.ID.String()),
			core.F("task", desc.Name),
			core.F("mode", mode),
			core.F("error", err),
		)
		if h := s.opts.LaunchErrorHandler; h != nil {
			h.HandleLaunchError(desc, err)
		}
		return
	}

	s.launched.Add(1)
	s.opts.Metrics.RecordLaunch(mode)
	s.opts.Logger.Info("task launched",
		core.F("task_id", desc.ID.String()),
		core.F("task", desc.Name),
		core.F("mode", mode),
	)
}
