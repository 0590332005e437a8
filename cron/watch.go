// Package cron runs the combine pass on a schedule, so a dashcam dump
// folder fed by card readers or sync tools gets collected automatically.
package cron

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Watcher re-runs a combine pass on a cron schedule.
type Watcher struct {
	scheduler *cron.Cron
	running   bool
}

// NewWatcher validates spec (standard cron or @every syntax) and registers
// run on it. Overlapping runs are skipped, not queued: a pass that is still
// merging when the next tick fires keeps exclusive ownership.
func NewWatcher(spec string, run func()) (*Watcher, error) {
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := scheduler.AddFunc(spec, run); err != nil {
		return nil, fmt.Errorf("invalid watch schedule %q: %w", spec, err)
	}
	return &Watcher{scheduler: scheduler}, nil
}

// Start begins scheduling. It is a no-op when already running.
func (w *Watcher) Start() {
	if w.running {
		log.Println("Watch scheduler is already running")
		return
	}
	w.running = true
	log.Println("Starting watch scheduler")
	w.scheduler.Start()
}

// Stop halts scheduling and waits for an in-flight pass to finish.
func (w *Watcher) Stop() {
	if !w.running {
		return
	}
	w.running = false
	log.Println("Stopping watch scheduler")
	<-w.scheduler.Stop().Done()
}
