package watcher

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSink records every forwarded value.
type fakeSink struct {
	mu        sync.Mutex
	name      string
	cancelled bool
	writes    []int64
	err       error
	panicVal  any
}

func (s *fakeSink) FileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *fakeSink) AddWrittenLength(written int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicVal != nil {
		panic(s.panicVal)
	}
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, written)
	return nil
}

func (s *fakeSink) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *fakeSink) setName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

func (s *fakeSink) setCancelled() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
}

func (s *fakeSink) Writes() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.writes...)
}

// fakeLauncher records launches in order and tracks overlapping calls.
type fakeLauncher struct {
	mu       sync.Mutex
	launched []string
	failFor  map[string]error
	onLaunch func(desc Descriptor)

	inFlight      atomic.Int32
	maxConcurrent atomic.Int32
	hold          time.Duration
}

func (l *fakeLauncher) Launch(desc Descriptor) error {
	n := l.inFlight.Add(1)
	defer l.inFlight.Add(-1)
	for {
		cur := l.maxConcurrent.Load()
		if n <= cur || l.maxConcurrent.CompareAndSwap(cur, n) {
			break
		}
	}
	if l.hold > 0 {
		time.Sleep(l.hold)
	}

	l.mu.Lock()
	err := l.failFor[desc.Name]
	l.launched = append(l.launched, desc.Name)
	hook := l.onLaunch
	l.mu.Unlock()

	if err != nil {
		return err
	}
	if hook != nil {
		hook(desc)
	}
	return nil
}

func (l *fakeLauncher) Launched() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.launched...)
}

// fakeIndicator counts Show and Dismiss calls.
type fakeIndicator struct {
	mu         sync.Mutex
	shows      int
	dismisses  int
	visible    bool
	lastID     int
	lastTitle  string
	showErr    error
	dismissErr error
}

func (i *fakeIndicator) Show(id int, title, text string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.shows++
	i.visible = true
	i.lastID = id
	i.lastTitle = title
	return i.showErr
}

func (i *fakeIndicator) Dismiss(id int) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.dismisses++
	i.visible = false
	i.lastID = id
	return i.dismissErr
}

func (i *fakeIndicator) counts() (shows, dismisses int, visible bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.shows, i.dismisses, i.visible
}

var errSinkGone = errors.New("sink gone")

func assertEventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func equalInt64s(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
