// Package servicewatcher runs long file-copy tasks one at a time and samples their progress.
//
// A host (a file manager, say) hands copy requests to RunService. If nothing is
// effectively running the request is launched right away; otherwise it waits
// behind a "waiting" indicator until the running copy ends. The copy service
// reports progress by writing the shared byte counter (SetPosition /
// AddPosition) and creating a ProgressWatcher that forwards that counter to its
// progress sink once a second.
//
// # Quick Start
//
// Initialize the process-wide watcher once, at application startup:
//
//	servicewatcher.InitGlobal(launcher, &boundFlag, notifications,
//		watcher.WithLogger(core.NewZapLogger(zapLogger)),
//	)
//	defer servicewatcher.ShutdownGlobal()
//
// Submit work from the UI:
//
//	servicewatcher.RunService(watcher.NewDescriptor("copy", req))
//
// And from the copy service, once the total size is known:
//
//	w, _ := servicewatcher.NewProgressWatcher(progressHandler, totalBytes)
//	w.Watch()
//	for ... {
//		servicewatcher.AddPosition(int64(n))
//	}
//
// # Liveness
//
// The host's running flag is advisory. A task counts as running only while
// the flag is set AND the current progress watcher's scheduling context is
// still alive, so a flag left stuck by a reclaimed process never blocks the queue.
//
// # Queue order
//
// Queued requests launch most-recent-first (LIFO) unless
// watcher.WithQueueOrder(watcher.FIFO) is given.
//
// Hosts that want several independent cores, or that want to avoid globals,
// use watcher.New directly.
package servicewatcher
