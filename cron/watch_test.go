package cron

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestNewWatcherRejectsBadSpec(t *testing.T) {
	if _, err := NewWatcher("not a schedule", func() {}); err == nil {
		t.Error("Expected error for invalid cron spec")
	}
}

func TestWatcherRunsOnSchedule(t *testing.T) {
	var runs int32
	w, err := NewWatcher("@every 100ms", func() {
		atomic.AddInt32(&runs, 1)
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	w.Start()
	defer w.Stop()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&runs) == 0 {
		select {
		case <-deadline:
			t.Fatal("Watcher never fired")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := NewWatcher("@every 1h", func() {})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.Start()
	w.Stop()
	w.Stop() // second stop must not block or panic
}
