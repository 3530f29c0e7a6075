package core

import (
	"context"
	"time"
)

// Task is the unit of work (Closure)
type Task func(ctx context.Context)

// =============================================================================
// TaskRunner: Define task submission interface
// =============================================================================

// TaskRunner posts work onto a scheduling context.
type TaskRunner interface {
	PostTask(task Task)
	PostDelayedTask(task Task, delay time.Duration)
	PostRepeatingTaskWithInitialDelay(task Task, initialDelay, interval time.Duration) RepeatingTaskHandle

	// Shutdown stops the context. Safe to call from inside a task.
	Shutdown()
	IsClosed() bool
}

// RepeatingTaskHandle controls the lifecycle of a repeating task
type RepeatingTaskHandle interface {
	// Stop prevents any further execution. The execution in progress, if any, completes.
	Stop()
	IsStopped() bool
}

// =============================================================================
// Context Helper
// =============================================================================
type taskRunnerKeyType struct{}

var taskRunnerKey taskRunnerKeyType

// GetCurrentTaskRunner returns the runner executing the task that owns ctx,
// or nil when called outside of a task.
func GetCurrentTaskRunner(ctx context.Context) TaskRunner {
	if v := ctx.Value(taskRunnerKey); v != nil {
		return v.(TaskRunner)
	}
	return nil
}
