// Package watcher serializes long-running copy-like tasks and samples their progress.
//
// Two subsystems share one State:
//
//   - ProgressSampler forwards the shared bytes-processed counter to a
//     ProgressSink once per sample interval, and stops when the counter reaches
//     the declared total or the sink reports cancellation.
//   - TaskSerializer launches a Descriptor immediately when no task is
//     effectively running, and otherwise queues it behind a startup watcher
//     that re-checks once per wait interval and shows a waiting indicator
//     until the queue drains.
//
// A task is "effectively running" only when the host's RunningFlag is set
// and the current sampler's scheduling context is still alive. The flag is
// known to go stale, so a dead sampler context always wins.
//
// Each subsystem runs its tick on its own core.SingleThreadTaskRunner and
// tears that runner down from inside the tick when it is done.
package watcher
