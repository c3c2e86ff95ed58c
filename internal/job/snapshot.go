package job

import (
	"math"
	"time"

	"github.com/agbru/kahanmc/internal/kahan"
)

// Snapshot is an immutable view of a job between two steps. Every field
// comes from the same step. The terminal snapshot reflects the step boundary
// at which the job stopped.
type Snapshot[T kahan.Float] struct {
	State         State
	Progress      float64 // in [0, 1]
	Estimate      T
	ErrorEstimate T
	Calls         uint64
	Elapsed       time.Duration
	// Remaining is elapsed*(1-progress)/progress. It is only meaningful when
	// RemainingKnown is set, which requires a non-zero progress.
	Remaining      time.Duration
	RemainingKnown bool
}

// Result is the outcome reported by AwaitResult and Wait. A non-terminal
// State means the job was still running when the wait ended; Value is only
// meaningful for Completed and Err only for Failed.
type Result[T kahan.Float] struct {
	State         State
	Value         T
	ErrorEstimate T
	Calls         uint64
	Duration      time.Duration
	Err           error
}

// StillRunning reports whether the wait ended before a terminal transition.
func (r Result[T]) StillRunning() bool {
	return !r.State.Terminal()
}

// Status is a precision-independent copy of a snapshot used by presentation
// layers that watch jobs of mixed precision.
type Status struct {
	ID             string
	Name           string
	State          State
	Progress       float64
	Estimate       float64
	ErrorEstimate  float64
	Calls          uint64
	Elapsed        time.Duration
	Remaining      time.Duration
	RemainingKnown bool
	Err            error
}

// projectRemaining extrapolates the time left from the elapsed time and the
// progress fraction.
func projectRemaining(elapsed time.Duration, progress float64) (time.Duration, bool) {
	if progress <= 0 || math.IsNaN(progress) {
		return 0, false
	}
	if progress >= 1 {
		return 0, true
	}
	remaining := float64(elapsed) * (1 - progress) / progress
	if remaining > math.MaxInt64 {
		return time.Duration(math.MaxInt64), true
	}
	return time.Duration(remaining), true
}

func clamp01(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
