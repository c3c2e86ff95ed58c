package orchestration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/agbru/kahanmc/internal/config"
	apperrors "github.com/agbru/kahanmc/internal/errors"
	"github.com/agbru/kahanmc/internal/job"
)

// recordingPresenter is a ResultPresenter and ErrorHandler that records calls.
type recordingPresenter struct {
	tables   int
	detailed []string
	handled  []error
}

func (p *recordingPresenter) PresentResultsTable(results []EstimationResult, out io.Writer) {
	p.tables++
}

func (p *recordingPresenter) PresentResult(result EstimationResult, verbose bool, out io.Writer) {
	p.detailed = append(p.detailed, result.Name)
}

func (p *recordingPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	p.handled = append(p.handled, err)
	return apperrors.ExitCodeFor(err)
}

func constant(v float64) job.Sampler[float64] {
	return job.SamplerFunc[float64](func(context.Context) (float64, error) { return v, nil })
}

func blocking() job.Sampler[float64] {
	return job.SamplerFunc[float64](func(ctx context.Context) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
}

func TestExecuteJobs(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	tasks := []Task{
		{Handle: job.New("one", constant(1), job.WithCallBudget(10)), Exact: 1},
		{Handle: job.New("two", constant(2), job.WithCallBudget(20)), Exact: 2},
		{Handle: job.New("bad", job.SamplerFunc[float64](func(context.Context) (float64, error) { return 0, boom })), Exact: 0},
		{Handle: job.New("invalid", constant(1), job.WithCallBudget(-1)), Exact: 1},
	}

	results := ExecuteJobs(context.Background(), tasks, NullProgressReporter{}, time.Millisecond, io.Discard)

	want := []EstimationResult{
		{Name: "one", State: job.Completed, Estimate: 1, Exact: 1, Calls: 10},
		{Name: "two", State: job.Completed, Estimate: 2, Exact: 2, Calls: 20},
		{Name: "bad", State: job.Failed, Exact: 0},
		{Name: "invalid", State: job.Failed, Exact: 1},
	}
	opts := cmp.Options{
		cmpopts.IgnoreFields(EstimationResult{}, "Duration", "Err", "Estimate", "ErrorEstimate"),
	}
	if diff := cmp.Diff(want, results, opts); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	if results[0].Estimate != 1 || results[1].Estimate != 2 {
		t.Errorf("estimates = %v, %v; want 1, 2", results[0].Estimate, results[1].Estimate)
	}
	if !errors.Is(results[2].Err, boom) {
		t.Errorf("bad job error = %v, want %v", results[2].Err, boom)
	}
	var cfgErr apperrors.ConfigError
	if !errors.As(results[3].Err, &cfgErr) {
		t.Errorf("invalid job error = %v, want ConfigError", results[3].Err)
	}
}

func TestExecuteJobsTimeout(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	tasks := []Task{
		{Handle: job.New("forever", constant(1))},
		{Handle: job.New("blocked", blocking())},
	}
	results := ExecuteJobs(ctx, tasks, NullProgressReporter{}, time.Millisecond, io.Discard)
	for _, r := range results {
		if r.State != job.Cancelled {
			t.Errorf("%s: State = %v, want cancelled", r.Name, r.State)
		}
		if !errors.Is(r.Err, context.DeadlineExceeded) {
			t.Errorf("%s: Err = %v, want deadline exceeded", r.Name, r.Err)
		}
		if got := apperrors.ExitCodeFor(r.Err); got != apperrors.ExitErrorTimeout {
			t.Errorf("%s: exit code = %d, want timeout", r.Name, got)
		}
	}
}

func TestExecuteJobsReportsExternallyCancelledJob(t *testing.T) {
	t.Parallel()
	j := job.New("early", constant(1))
	j.Cancel()
	results := ExecuteJobs(context.Background(), []Task{{Handle: j}}, NullProgressReporter{}, time.Millisecond, io.Discard)
	if results[0].State != job.Cancelled || !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("result = %+v, want cancelled with context.Canceled", results[0])
	}
}

func TestExecuteJobsRunsReporter(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var seen int
	reporter := ProgressReporterFunc(func(wg *sync.WaitGroup, jobs []job.Handle, interval time.Duration, out io.Writer) {
		defer wg.Done()
		mu.Lock()
		seen = len(jobs)
		mu.Unlock()
		for _, j := range jobs {
			<-j.Done()
		}
	})
	tasks := []Task{
		{Handle: job.New("a", constant(1), job.WithCallBudget(5))},
		{Handle: job.New("b", constant(1), job.WithCallBudget(5))},
	}
	ExecuteJobs(context.Background(), tasks, reporter, time.Millisecond, io.Discard)
	mu.Lock()
	defer mu.Unlock()
	if seen != 2 {
		t.Errorf("reporter saw %d jobs, want 2", seen)
	}
}

func TestWithinBound(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		r    EstimationResult
		want bool
	}{
		{"Exact hit", EstimationResult{Estimate: 1, Exact: 1}, true},
		{"Inside five sigma", EstimationResult{Estimate: 1.04, Exact: 1, ErrorEstimate: 0.01}, true},
		{"Outside five sigma", EstimationResult{Estimate: 1.06, Exact: 1, ErrorEstimate: 0.01}, false},
		{"Goal widens bound", EstimationResult{Estimate: 1.06, Exact: 1, ErrorEstimate: 0.01, Goal: 0.02}, true},
		{"Unknown exact", EstimationResult{Estimate: 100, Exact: math.NaN()}, true},
	}
	for _, tt := range tests {
		if got := tt.r.WithinBound(); got != tt.want {
			t.Errorf("%s: WithinBound() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAnalyzeResults(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		results      []EstimationResult
		opts         PresentationOptions
		wantCode     int
		wantStatus   string
		wantDetailed []string
		wantHandled  int
	}{
		{
			name: "All within bounds",
			results: []EstimationResult{
				{Name: "pi", Estimate: 3.1416, Exact: math.Pi, ErrorEstimate: 0.001},
				{Name: "e2", Estimate: 0.869, Exact: 0.869, ErrorEstimate: 0.001},
			},
			wantCode:     apperrors.ExitSuccess,
			wantStatus:   "Global Status: Success",
			wantDetailed: []string{"e2", "pi"},
		},
		{
			name: "Accuracy error",
			results: []EstimationResult{
				{Name: "pi", Estimate: 3.5, Exact: math.Pi, ErrorEstimate: 0.001},
			},
			wantCode:   apperrors.ExitErrorAccuracy,
			wantStatus: "ACCURACY ERROR",
		},
		{
			name: "Failure dominates",
			results: []EstimationResult{
				{Name: "pi", Estimate: 3.1416, Exact: math.Pi, ErrorEstimate: 0.001},
				{Name: "e2", State: job.Cancelled, Err: context.DeadlineExceeded},
			},
			wantCode:    apperrors.ExitErrorTimeout,
			wantStatus:  "1 of 2 estimations did not complete",
			wantHandled: 1,
		},
		{
			name: "Quiet success",
			results: []EstimationResult{
				{Name: "pi", Estimate: 3.25, Exact: 3.25},
			},
			opts:       PresentationOptions{Quiet: true},
			wantCode:   apperrors.ExitSuccess,
			wantStatus: "pi 3.25\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			p := &recordingPresenter{}
			code := AnalyzeResults(tt.results, tt.opts, p, p, &out)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(out.String(), tt.wantStatus) {
				t.Errorf("output %q does not contain %q", out.String(), tt.wantStatus)
			}
			if diff := cmp.Diff(tt.wantDetailed, p.detailed); diff != "" {
				t.Errorf("detailed results mismatch (-want +got):\n%s", diff)
			}
			if len(p.handled) != tt.wantHandled {
				t.Errorf("HandleError called %d times, want %d", len(p.handled), tt.wantHandled)
			}
			if !tt.opts.Quiet && p.tables != 1 {
				t.Errorf("table presented %d times, want 1", p.tables)
			}
		})
	}
}

func TestBuildTasks(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.MaxCalls = 1000
	tasks, err := BuildTasks(cfg)
	if err != nil {
		t.Fatalf("BuildTasks() error = %v", err)
	}
	var names []string
	for _, task := range tasks {
		names = append(names, task.Handle.Name())
	}
	if diff := cmp.Diff([]string{"close-to-avg", "e2", "pi"}, names); diff != "" {
		t.Errorf("task names mismatch (-want +got):\n%s", diff)
	}
	if tasks[2].Exact != math.Pi || tasks[2].Goal != 1e-5 {
		t.Errorf("pi task = %+v, want exact pi with goal 1e-5", tasks[2])
	}

	cfg.Integrand = "e2"
	cfg.Precision = config.PrecisionFloat32
	cfg.TargetError = 0.5
	tasks, err = BuildTasks(cfg)
	if err != nil {
		t.Fatalf("BuildTasks() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].Goal != 0.5 {
		t.Fatalf("tasks = %+v, want one e2 task with goal 0.5", tasks)
	}
	if _, ok := tasks[0].Handle.(*job.Job[float32]); !ok {
		t.Errorf("handle type = %T, want *job.Job[float32]", tasks[0].Handle)
	}
}

func TestBuildTasksAreDeterministic(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Integrand = "e2"
	cfg.MaxCalls = 5000

	run := func() float64 {
		tasks, err := BuildTasks(cfg)
		if err != nil {
			t.Fatalf("BuildTasks() error = %v", err)
		}
		res := ExecuteJobs(context.Background(), tasks, NullProgressReporter{}, time.Millisecond, io.Discard)
		return res[0].Estimate
	}
	if a, b := run(), run(); a != b {
		t.Errorf("same seed produced %v and %v", a, b)
	}
}

func TestSeedFor(t *testing.T) {
	t.Parallel()
	if SeedFor(1, "pi") == SeedFor(1, "e2") {
		t.Error("different integrands should get different seeds")
	}
	if SeedFor(1, "pi") != SeedFor(1, "pi") {
		t.Error("SeedFor should be deterministic")
	}
}
