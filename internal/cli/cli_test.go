package cli

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

	"github.com/briandowns/spinner"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/kahanmc/internal/cli/mocks"
	apperrors "github.com/agbru/kahanmc/internal/errors"
	"github.com/agbru/kahanmc/internal/job"
	"github.com/agbru/kahanmc/internal/metrics"
	"github.com/agbru/kahanmc/internal/orchestration"
	"github.com/agbru/kahanmc/internal/ui"
)

func withoutColor(t *testing.T) {
	t.Helper()
	prev := ui.GetCurrentTheme()
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.SetCurrentTheme(prev) })
}

func withTerminal(t *testing.T, tty bool) {
	t.Helper()
	prev := isTerminal
	isTerminal = func(io.Writer) bool { return tty }
	t.Cleanup(func() { isTerminal = prev })
}

func finishedJob(t *testing.T, name string, budget int64) *job.Job[float64] {
	t.Helper()
	j := job.New(name, job.SamplerFunc[float64](func(context.Context) (float64, error) {
		return 1, nil
	}), job.WithCallBudget(budget))
	require.NoError(t, j.Start(context.Background()))
	return j
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(io.Discard))
	rs := &realSpinner{s}

	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
	assert.Equal(t, " test", s.Suffix)
}

func TestDisplayProgressNoJobs(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	wg.Add(1)
	var buf bytes.Buffer
	DisplayProgress(&wg, nil, time.Millisecond, &buf)
	wg.Wait()
	assert.Empty(t, buf.String())
}

func TestDisplayProgressPlainOutput(t *testing.T) {
	withoutColor(t)
	withTerminal(t, false)

	j := finishedJob(t, "pi", 50)
	var wg sync.WaitGroup
	wg.Add(1)
	var buf bytes.Buffer
	DisplayProgress(&wg, []job.Handle{j}, 5*time.Millisecond, &buf)
	wg.Wait()

	out := buf.String()
	assert.Contains(t, out, "pi [")
	assert.Contains(t, out, "100%")
	assert.True(t, strings.HasSuffix(out, "completed\n"), "output %q", out)
}

func TestDisplayProgressSpinner(t *testing.T) {
	withoutColor(t)
	withTerminal(t, true)

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockSpinner(ctrl)
	gomock.InOrder(
		mock.EXPECT().UpdateSuffix(gomock.Any()).MinTimes(1),
		mock.EXPECT().Start(),
		mock.EXPECT().UpdateSuffix(gomock.Any()).AnyTimes(),
		mock.EXPECT().Stop(),
	)
	prev := newSpinner
	newSpinner = func(...spinner.Option) Spinner { return mock }
	t.Cleanup(func() { newSpinner = prev })

	a, b := finishedJob(t, "a", 10), finishedJob(t, "b", 20)
	var wg sync.WaitGroup
	wg.Add(1)
	var buf bytes.Buffer
	DisplayProgress(&wg, []job.Handle{a, b}, time.Millisecond, &buf)
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "a "))
	assert.True(t, strings.HasPrefix(lines[1], "b "))
}

func TestProgressSuffix(t *testing.T) {
	t.Parallel()
	single := orchestration.AggregatedProgress{Statuses: []job.Status{{Name: "pi", Progress: 0.5, Estimate: 3.1}}}
	assert.Contains(t, progressSuffix(single), "50%")

	multi := orchestration.AggregatedProgress{
		Statuses:        []job.Status{{Name: "pi", Progress: 0.5}, {Name: "e2", Progress: 1}},
		AverageProgress: 0.75,
		Done:            1,
	}
	got := progressSuffix(multi)
	assert.Contains(t, got, "75.0%")
	assert.Contains(t, got, "pi 50%, e2 100%")
	assert.Contains(t, got, "1/2 done")
}

func TestPresentResultsTable(t *testing.T) {
	withoutColor(t)
	results := []orchestration.EstimationResult{
		{Name: "pi", State: job.Completed, Estimate: 3.14159, ErrorEstimate: 1e-5, Exact: math.Pi, Goal: 1e-5, Calls: 1234567, Duration: time.Second},
		{Name: "close-to-avg", State: job.Failed, Err: errors.New("boom")},
	}
	var buf bytes.Buffer
	CLIResultPresenter{}.PresentResultsTable(results, &buf)
	out := buf.String()

	assert.Contains(t, out, "Estimation Summary")
	assert.Contains(t, out, "1,234,567")
	assert.Contains(t, out, "✅ completed")
	assert.Contains(t, out, "❌ failed (boom)")
	assert.Contains(t, out, "< 1µs")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[1], "Estimate"), strings.Index(lines[2], "3.14159"))
}

func TestPresentResultsTableOutsideBound(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	CLIResultPresenter{}.PresentResultsTable([]orchestration.EstimationResult{
		{Name: "pi", State: job.Completed, Estimate: 4, ErrorEstimate: 1e-6, Exact: math.Pi, Goal: 1e-5},
	}, &buf)
	assert.Contains(t, buf.String(), "Outside bound")
}

func TestPresentResult(t *testing.T) {
	withoutColor(t)
	r := orchestration.EstimationResult{Name: "e2", State: job.Completed, Estimate: 0.875, ErrorEstimate: 1e-3, Exact: 0.86900905527453446388, Goal: 1e-6, Calls: 1000, Duration: time.Millisecond}

	var buf bytes.Buffer
	CLIResultPresenter{}.PresentResult(r, false, &buf)
	assert.Contains(t, buf.String(), "Estimated   = 0.875")
	assert.Contains(t, buf.String(), "Exact       = 0.869009055274534")
	assert.NotContains(t, buf.String(), "Calls")

	buf.Reset()
	CLIResultPresenter{}.PresentResult(r, true, &buf)
	assert.Contains(t, buf.String(), "Calls       = 1,000")

	buf.Reset()
	r.Exact = math.NaN()
	CLIResultPresenter{}.PresentResult(r, false, &buf)
	assert.NotContains(t, buf.String(), "Exact")
}

func TestHandleError(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	code := CLIResultPresenter{}.HandleError(context.DeadlineExceeded, time.Second, &buf)
	assert.Equal(t, apperrors.ExitErrorTimeout, code)
	assert.Contains(t, buf.String(), "Timeout")
}

func TestDisplayKahanComparison(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	DisplayKahanComparison(KahanComparison{
		Precision: "float32", Count: 33554431, Naive: 2, Compensated: 1.5, Exact: 1.5, Duration: time.Second,
	}, &buf)
	out := buf.String()
	assert.Contains(t, out, "33,554,431")
	assert.Contains(t, out, "(No Kahan) m = 2.0000000000  error 0.5")
	assert.Contains(t, out, "(Kahan)    m = 1.5000000000  error 0")
}

func TestDisplayMemoryStats(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	snap := metrics.MemorySnapshot{HeapAlloc: 2048, Sys: 1 << 20, NumGC: 3, GCPause: 1500 * time.Microsecond, Goroutines: 7}
	deltas := []metrics.HeapDelta{{Job: "pi", Bytes: 5 << 20}, {Job: "e2", Bytes: -1024}}
	DisplayMemoryStats(snap, deltas, &buf)
	out := buf.String()
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "1.0 MiB")
	assert.Contains(t, out, "GC cycles:        3 (1ms paused)")
	assert.Contains(t, out, "Goroutines:       7")
	assert.Contains(t, out, "Heap delta pi:")
	assert.Contains(t, out, "+5.0 MiB")
	assert.Contains(t, out, "-1.0 KiB")
}

func TestDisplayMemoryStatsWithoutJobs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplayMemoryStats(metrics.MemorySnapshot{HeapAlloc: 1}, nil, &buf)
	assert.NotContains(t, buf.String(), "Heap delta")
}

func TestPadRight(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ab   ", padRight("ab", 3))
	assert.Equal(t, "ab", padRight("ab", -1))
}

func TestCLIColorProvider(t *testing.T) {
	withoutColor(t)
	var p apperrors.ColorProvider = CLIColorProvider{}
	assert.Empty(t, p.Red()+p.Yellow()+p.Reset())
}
