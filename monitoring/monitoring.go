// Package monitoring logs process resource usage during long batch runs and
// watch mode, so merge-heavy sessions can be sized against the machine.
package monitoring

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot is one observation of the process and the host.
type Snapshot struct {
	CPUPercent   float64
	ProcessRSSMB float64
	HostSharePct float64 // process RSS as a share of total host memory
	Goroutines   int
}

// Take samples the current process. It fails when the process handle cannot
// be read, e.g. under restricted containers.
func Take() (Snapshot, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to open process handle: %w", err)
	}
	return sample(proc)
}

// LogEvery emits one usage line per interval until stop is closed.
func LogEvery(interval time.Duration, stop <-chan struct{}) {
	go func() {
		proc, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			log.Printf("Resource monitoring disabled: %v", err)
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				snap, err := sample(proc)
				if err != nil {
					log.Printf("Resource sampling failed: %v", err)
					continue
				}
				log.Printf("Resource usage - CPU: %.1f%%, RSS: %.1f MB, share of host memory: %.1f%%, goroutines: %d",
					snap.CPUPercent, snap.ProcessRSSMB, snap.HostSharePct, snap.Goroutines)
			}
		}
	}()
}

func sample(proc *process.Process) (Snapshot, error) {
	var snap Snapshot

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return snap, fmt.Errorf("failed to read CPU usage: %w", err)
	}
	snap.CPUPercent = cpuPercent

	procMem, err := proc.MemoryInfo()
	if err != nil {
		return snap, fmt.Errorf("failed to read process memory: %w", err)
	}
	snap.ProcessRSSMB = float64(procMem.RSS) / 1024 / 1024

	hostMem, err := mem.VirtualMemory()
	if err != nil {
		return snap, fmt.Errorf("failed to read host memory: %w", err)
	}
	snap.HostSharePct = float64(procMem.RSS) / float64(hostMem.Total) * 100

	snap.Goroutines = runtime.NumGoroutine()
	return snap, nil
}
