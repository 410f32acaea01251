package clipboard

import (
	"sync"
	"testing"
	"time"
)

type fakeWriter struct {
	mu   sync.Mutex
	last string
	err  error
}

func (f *fakeWriter) WriteAll(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.last = text
	return nil
}

func (f *fakeWriter) value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func TestCopy_AutoClear(t *testing.T) {
	w := &fakeWriter{}
	g := NewWithWriter(w, 20*time.Millisecond)

	if err := g.Copy("hunter2"); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if w.value() != "hunter2" {
		t.Fatalf("clipboard = %q, want hunter2", w.value())
	}

	time.Sleep(40 * time.Millisecond)

	if w.value() != "" {
		t.Fatalf("clipboard after timeout = %q, want empty", w.value())
	}
}

func TestCopy_SupersededClearCancelled(t *testing.T) {
	w := &fakeWriter{}
	g := NewWithWriter(w, 20*time.Millisecond)

	if err := g.Copy("first"); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := g.Copy("second"); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	time.Sleep(15 * time.Millisecond) // first's timer would have fired by now
	if w.value() != "second" {
		t.Fatalf("clipboard = %q, want second (stale clear must not fire)", w.value())
	}

	time.Sleep(20 * time.Millisecond) // second's timer fires
	if w.value() != "" {
		t.Fatalf("clipboard after second timeout = %q, want empty", w.value())
	}
}
