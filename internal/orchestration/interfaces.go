package orchestration

import (
	"io"
	"math"
	"sync"
	"time"

	"github.com/agbru/kahanmc/internal/job"
)

// AccuracyFactor is how many reported standard errors an estimate may stray
// from the exact value, on top of the error goal, before it is flagged.
const AccuracyFactor = 5

// Task pairs a job with the reference values its result is judged against.
type Task struct {
	Handle job.Handle
	// Exact is the known value of the estimated quantity, NaN if unknown.
	Exact float64
	// Goal is the error target the job was configured with.
	Goal float64
}

// EstimationResult is the outcome of one task, shared by the orchestration
// and presentation layers.
type EstimationResult struct {
	Name          string
	State         job.State
	Estimate      float64
	ErrorEstimate float64
	Exact         float64
	Goal          float64
	Calls         uint64
	Duration      time.Duration
	Err           error
}

// ActualError is the signed distance between the estimate and the exact
// value.
func (r EstimationResult) ActualError() float64 {
	return r.Estimate - r.Exact
}

// WithinBound reports whether the estimate lies within AccuracyFactor
// reported standard errors plus the goal of the exact value. Results without
// a known exact value always pass.
func (r EstimationResult) WithinBound() bool {
	if math.IsNaN(r.Exact) {
		return true
	}
	return math.Abs(r.ActualError()) <= AccuracyFactor*r.ErrorEstimate+r.Goal
}

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	Verbose bool
	Quiet   bool
}

// ProgressReporter displays the progress of running jobs. DisplayProgress
// polls the jobs every interval, returns once all of them are done and calls
// wg.Done on exit.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, jobs []job.Handle, interval time.Duration, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, jobs []job.Handle, interval time.Duration, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, jobs []job.Handle, interval time.Duration, out io.Writer) {
	f(wg, jobs, interval, out)
}

// NullProgressReporter waits for the jobs without displaying anything.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

// DisplayProgress blocks until every job is done.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, jobs []job.Handle, _ time.Duration, _ io.Writer) {
	defer wg.Done()
	for _, j := range jobs {
		<-j.Done()
	}
}

// ResultPresenter presents the analysed results.
type ResultPresenter interface {
	// PresentResultsTable displays one row per result.
	PresentResultsTable(results []EstimationResult, out io.Writer)
	// PresentResult displays the detailed report for one result.
	PresentResult(result EstimationResult, verbose bool, out io.Writer)
}

// ErrorHandler reports a job error and returns the matching exit code.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
