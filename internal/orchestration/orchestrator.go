package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/kahanmc/internal/errors"
	"github.com/agbru/kahanmc/internal/job"
)

// ExecuteJobs starts every task's job, runs the progress reporter until all
// of them terminate and returns one result per task, in task order.
//
// When ctx ends first every job is cancelled; their results carry the
// context's error so that a deadline maps to a timeout exit code. A job that
// cannot start reports its start error.
func ExecuteJobs(ctx context.Context, tasks []Task, reporter ProgressReporter, interval time.Duration, out io.Writer) []EstimationResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]EstimationResult, len(tasks))

	handles := make([]job.Handle, len(tasks))
	for i, t := range tasks {
		handles[i] = t.Handle
	}

	for i, t := range tasks {
		idx, task := i, t
		g.Go(func() error {
			results[idx] = runTask(ctx, task)
			return nil
		})
	}

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, handles, interval, out)

	g.Wait()
	displayWg.Wait()

	return results
}

func runTask(ctx context.Context, task Task) EstimationResult {
	h := task.Handle
	if err := h.Start(ctx); err != nil {
		if errors.Is(err, job.ErrNotStartable) {
			// Cancelled or failed before we got to it; report its final status.
			<-h.Done()
			return resultFromStatus(ctx, task, h.Status())
		}
		st := h.Status()
		st.Err = err
		return resultFromStatus(ctx, task, st)
	}

	select {
	case <-h.Done():
	case <-ctx.Done():
		h.Cancel()
		<-h.Done()
	}
	return resultFromStatus(ctx, task, h.Status())
}

func resultFromStatus(ctx context.Context, task Task, st job.Status) EstimationResult {
	res := EstimationResult{
		Name:          st.Name,
		State:         st.State,
		Estimate:      st.Estimate,
		ErrorEstimate: st.ErrorEstimate,
		Exact:         task.Exact,
		Goal:          task.Goal,
		Calls:         st.Calls,
		Duration:      st.Elapsed,
		Err:           st.Err,
	}
	if st.State == job.Cancelled && res.Err == nil {
		if err := context.Cause(ctx); err != nil {
			res.Err = err
		} else {
			res.Err = context.Canceled
		}
	}
	return res
}

// AnalyzeResults presents the results and derives the process exit code.
//
// Any failed or cancelled job makes the run fail with that job's error
// class. Otherwise every completed estimate must lie within its bound (see
// EstimationResult.WithinBound), or the run fails with ExitErrorAccuracy.
func AnalyzeResults(results []EstimationResult, opts PresentationOptions, presenter ResultPresenter, handler ErrorHandler, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Name < results[j].Name
	})

	var firstError error
	var firstErrorDuration time.Duration
	var outOfBound []string
	successCount := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			if firstError == nil {
				firstError = r.Err
				firstErrorDuration = r.Duration
			}
		case !r.WithinBound():
			outOfBound = append(outOfBound, r.Name)
		default:
			successCount++
		}
	}

	if opts.Quiet {
		for _, r := range results {
			if r.Err == nil {
				fmt.Fprintf(out, "%s %.17g\n", r.Name, r.Estimate)
			}
		}
	} else {
		presenter.PresentResultsTable(results, out)
	}

	if firstError != nil {
		if !opts.Quiet {
			fmt.Fprintf(out, "\nGlobal Status: Failure. %d of %d estimations did not complete.\n", len(results)-successCount-len(outOfBound), len(results))
		}
		return handler.HandleError(firstError, firstErrorDuration, out)
	}
	if len(outOfBound) > 0 {
		fmt.Fprintf(out, "\nGlobal Status: ACCURACY ERROR. Estimates outside their error bounds: %v\n", outOfBound)
		return apperrors.ExitErrorAccuracy
	}

	if !opts.Quiet {
		fmt.Fprintf(out, "\nGlobal Status: Success. All estimates are within their error bounds.\n")
		for _, r := range results {
			presenter.PresentResult(r, opts.Verbose, out)
		}
	}
	return apperrors.ExitSuccess
}
