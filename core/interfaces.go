package core

import (
	"context"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics during execution.
// This allows custom panic handling, logging, and recovery strategies.
//
// Implementations should be thread-safe as they may be called concurrently
// from different runners.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - ctx: The context from the panicked task (carries the current runner)
	// - runnerName: The name of the task runner where the panic occurred
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, runnerName string, panicInfo any, stackTrace []byte)
}

// LoggingPanicHandler reports panics to a Logger at error level.
type LoggingPanicHandler struct {
	Logger Logger
}

// HandlePanic logs the panic value and stack trace.
func (h *LoggingPanicHandler) HandlePanic(ctx context.Context, runnerName string, panicInfo any, stackTrace []byte) {
	logger := h.Logger
	if logger == nil {
		return
	}
	logger.Error("task panicked",
		F("runner", runnerName),
		F("panic", panicInfo),
		F("stack", string(stackTrace)),
	)
}

// PanicHandlerFunc adapts a function to PanicHandler.
type PanicHandlerFunc func(ctx context.Context, runnerName string, panicInfo any, stackTrace []byte)

// HandlePanic calls f.
func (f PanicHandlerFunc) HandlePanic(ctx context.Context, runnerName string, panicInfo any, stackTrace []byte) {
	f(ctx, runnerName, panicInfo, stackTrace)
}
