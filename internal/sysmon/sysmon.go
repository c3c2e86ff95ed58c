// Package sysmon samples system-wide CPU and memory usage for the progress
// displays.
package sysmon

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
	NumCPU     int
	Goroutines int
}

// Sample collects a single system-wide snapshot. CPU usage is the delta since
// the previous call. Readings that fail are left at zero.
func Sample(ctx context.Context) Stats {
	s := Stats{
		NumCPU:     runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
	}
	cpuPcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}

// Summary renders s on one line.
func (s Stats) Summary() string {
	return fmt.Sprintf("CPU %.1f%% of %d cores, memory %.1f%%, %d goroutines",
		s.CPUPercent, s.NumCPU, s.MemPercent, s.Goroutines)
}

// Watch samples every interval until ctx is done and delivers the readings on
// the returned channel, which is closed on exit. Readings are dropped while
// the consumer is busy.
func Watch(ctx context.Context, interval time.Duration) <-chan Stats {
	out := make(chan Stats, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- Sample(ctx):
				default:
				}
			}
		}
	}()
	return out
}
