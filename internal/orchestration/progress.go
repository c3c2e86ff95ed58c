package orchestration

import (
	"time"

	"github.com/agbru/kahanmc/internal/format"
	"github.com/agbru/kahanmc/internal/job"
)

// ProgressAggregator polls a set of jobs and folds their statuses into one
// overall figure. Both the CLI and the TUI use it so the aggregation rules
// live in one place.
type ProgressAggregator struct {
	jobs  []job.Handle
	state *format.ProgressState
}

// NewProgressAggregator creates an aggregator over jobs. Returns nil if jobs
// is empty.
func NewProgressAggregator(jobs []job.Handle) *ProgressAggregator {
	if len(jobs) == 0 {
		return nil
	}
	return &ProgressAggregator{
		jobs:  jobs,
		state: format.NewProgressState(len(jobs)),
	}
}

// AggregatedProgress is the result of one poll over all jobs.
type AggregatedProgress struct {
	// Statuses holds one status per job, in job order.
	Statuses []job.Status
	// AverageProgress is the mean progress across all jobs.
	AverageProgress float64
	// Remaining is the longest remaining-time projection among the jobs still
	// running. RemainingKnown is false if any running job has no projection.
	Remaining      time.Duration
	RemainingKnown bool
	// Done counts the jobs in a terminal state.
	Done int
}

// AllDone reports whether every job has terminated.
func (p AggregatedProgress) AllDone() bool {
	return p.Done == len(p.Statuses)
}

// Poll reads every job's current status.
func (a *ProgressAggregator) Poll() AggregatedProgress {
	out := AggregatedProgress{
		Statuses:       make([]job.Status, len(a.jobs)),
		RemainingKnown: true,
	}
	for i, h := range a.jobs {
		st := h.Status()
		out.Statuses[i] = st
		p := st.Progress
		if st.State.Terminal() {
			p = 1
			out.Done++
		} else if !st.RemainingKnown {
			out.RemainingKnown = false
		} else if st.Remaining > out.Remaining {
			out.Remaining = st.Remaining
		}
		a.state.Update(i, p)
	}
	out.AverageProgress = a.state.CalculateAverage()
	if !out.RemainingKnown {
		out.Remaining = 0
	}
	return out
}

// NumJobs returns the number of jobs being tracked.
func (a *ProgressAggregator) NumJobs() int {
	return len(a.jobs)
}

// IsMultiJob returns true if tracking more than one job.
func (a *ProgressAggregator) IsMultiJob() bool {
	return len(a.jobs) > 1
}
