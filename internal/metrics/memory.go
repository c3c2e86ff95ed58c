package metrics

import (
	"runtime"
	"sync"
	"time"
)

// MemorySnapshot is one runtime memory reading.
type MemorySnapshot struct {
	HeapAlloc  uint64
	Sys        uint64
	NumGC      uint32
	GCPause    time.Duration
	Goroutines int
}

// HeapDelta is the change of the live heap between the start and the end of
// one job. Jobs running side by side share the heap, so their deltas overlap.
type HeapDelta struct {
	Job   string
	Bytes int64
}

// MemoryCollector reads runtime memory statistics and tracks a heap delta
// per job. It implements job.Recorder so it can be attached to jobs directly.
type MemoryCollector struct {
	read func(*runtime.MemStats)

	mu     sync.Mutex
	open   map[string]uint64
	deltas []HeapDelta
}

// NewMemoryCollector creates a collector backed by runtime.ReadMemStats.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{read: runtime.ReadMemStats, open: make(map[string]uint64)}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	mc.read(&m)
	return MemorySnapshot{
		HeapAlloc:  m.HeapAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		GCPause:    time.Duration(m.PauseTotalNs),
		Goroutines: runtime.NumGoroutine(),
	}
}

// JobStarted records the heap baseline of the named job.
func (mc *MemoryCollector) JobStarted(name string) {
	heap := mc.Snapshot().HeapAlloc
	mc.mu.Lock()
	mc.open[name] = heap
	mc.mu.Unlock()
}

// ObservationsAdded is a no-op; memory is only read at job boundaries.
func (*MemoryCollector) ObservationsAdded(string, uint64) {}

// EstimatePublished is a no-op.
func (*MemoryCollector) EstimatePublished(string, float64, float64) {}

// JobFinished closes the delta opened by JobStarted.
func (mc *MemoryCollector) JobFinished(name, _ string, _ uint64, _ time.Duration) {
	mc.finish(name)
}

// finish closes the named job's delta. ok is false when the job was never
// started on this collector.
func (mc *MemoryCollector) finish(name string) (HeapDelta, bool) {
	heap := mc.Snapshot().HeapAlloc
	mc.mu.Lock()
	defer mc.mu.Unlock()
	base, ok := mc.open[name]
	if !ok {
		return HeapDelta{}, false
	}
	delete(mc.open, name)
	d := HeapDelta{Job: name, Bytes: int64(heap) - int64(base)}
	mc.deltas = append(mc.deltas, d)
	return d, true
}

// Deltas returns the closed heap deltas in completion order.
func (mc *MemoryCollector) Deltas() []HeapDelta {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	out := make([]HeapDelta, len(mc.deltas))
	copy(out, mc.deltas)
	return out
}
