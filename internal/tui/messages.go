package tui

import (
	"time"

	"github.com/agbru/kahanmc/internal/metrics"
	"github.com/agbru/kahanmc/internal/orchestration"
)

// TickMsg drives the periodic refresh.
type TickMsg time.Time

// PollMsg carries one aggregated poll of every job.
type PollMsg struct {
	Progress orchestration.AggregatedProgress
}

// MemStatsMsg carries a runtime memory reading.
type MemStatsMsg struct {
	metrics.MemorySnapshot
}

// SysStatsMsg carries a system load reading.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// ResultsMsg carries the final results once every job has terminated.
type ResultsMsg struct {
	Results []orchestration.EstimationResult
}

// ErrorMsg reports a job that ended in error.
type ErrorMsg struct {
	Err      error
	Duration time.Duration
}

// RunCompleteMsg is sent when the run and its analysis are over.
type RunCompleteMsg struct {
	ExitCode int
}

// ContextCancelledMsg is sent when the run context ends.
type ContextCancelledMsg struct {
	Err error
}
