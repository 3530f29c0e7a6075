package servicewatcher_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	servicewatcher "github.com/Swind/service-watcher"
	"github.com/Swind/service-watcher/watcher"
)

type recordingSink struct {
	mu     sync.Mutex
	writes []int64
}

func (s *recordingSink) FileName() string { return "photo.jpg" }
func (s *recordingSink) Cancelled() bool  { return false }
func (s *recordingSink) AddWrittenLength(n int64) error {
	s.mu.Lock()
	s.writes = append(s.writes, n)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) last() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.writes) == 0 {
		return -1
	}
	return s.writes[len(s.writes)-1]
}

// TestGlobal_Lifecycle verifies the process-wide helpers share one watcher
func TestGlobal_Lifecycle(t *testing.T) {
	var launches atomic.Int32
	flag := &watcher.AtomicRunningFlag{}
	launcher := servicewatcher.LauncherFunc(func(desc servicewatcher.Descriptor) error {
		launches.Add(1)
		return nil
	})

	if err := servicewatcher.InitGlobal(launcher, flag, nil,
		watcher.WithSampleInterval(5*time.Millisecond),
		watcher.WithWaitInterval(time.Hour),
	); err != nil {
		t.Fatalf("InitGlobal failed: %v", err)
	}
	defer servicewatcher.ShutdownGlobal()

	first := servicewatcher.GetGlobal()
	// Second init is ignored
	if err := servicewatcher.InitGlobal(launcher, flag, nil); err != nil {
		t.Fatalf("second InitGlobal failed: %v", err)
	}
	if servicewatcher.GetGlobal() != first {
		t.Fatal("second InitGlobal replaced the global watcher")
	}

	sink := &recordingSink{}
	w, err := servicewatcher.NewProgressWatcher(sink, 10)
	if err != nil {
		t.Fatalf("NewProgressWatcher failed: %v", err)
	}
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	flag.Store(true)

	servicewatcher.RunService(servicewatcher.NewDescriptor("queued", nil))
	if got := launches.Load(); got != 0 {
		t.Fatalf("launches = %d while a copy runs, want 0", got)
	}

	servicewatcher.SetPosition(4)
	if got := servicewatcher.AddPosition(6); got != 10 {
		t.Fatalf("AddPosition = %d, want 10", got)
	}
	if got := servicewatcher.Position(); got != 10 {
		t.Fatalf("Position() = %d, want 10", got)
	}

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("progress watcher did not complete")
	}
	if got := sink.last(); got != 10 {
		t.Errorf("last forwarded = %d, want 10", got)
	}

	dropped := servicewatcher.ShutdownGlobal()
	if len(dropped) != 1 {
		t.Errorf("dropped = %d descriptors, want 1", len(dropped))
	}
}

func TestGetGlobal_PanicsBeforeInit(t *testing.T) {
	servicewatcher.ShutdownGlobal()

	defer func() {
		if recover() == nil {
			t.Error("GetGlobal did not panic before InitGlobal")
		}
	}()
	servicewatcher.GetGlobal()
}
