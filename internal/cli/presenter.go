package cli

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	apperrors "github.com/agbru/kahanmc/internal/errors"
	"github.com/agbru/kahanmc/internal/format"
	"github.com/agbru/kahanmc/internal/job"
	"github.com/agbru/kahanmc/internal/metrics"
	"github.com/agbru/kahanmc/internal/orchestration"
	"github.com/agbru/kahanmc/internal/sysmon"
	"github.com/agbru/kahanmc/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with
// DisplayProgress.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress delegates to the package-level DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, jobs []job.Handle, interval time.Duration, out io.Writer) {
	DisplayProgress(wg, jobs, interval, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter and
// orchestration.ErrorHandler for console output.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// PresentResultsTable prints one aligned row per result. Padding is computed
// on the plain text so ANSI codes do not skew the columns.
func (CLIResultPresenter) PresentResultsTable(results []orchestration.EstimationResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Estimation Summary ---\n")

	headers := []string{"Integrand", "Estimate", "Error bound", "Calls", "Duration"}
	rows := make([][]string, len(results))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for i, r := range results {
		rows[i] = []string{
			r.Name,
			fmt.Sprintf("%.10g", r.Estimate),
			fmt.Sprintf("%.3g", r.ErrorEstimate),
			format.FormatCount(r.Calls),
			durationCell(r.Duration),
		}
		for c, cell := range rows[i] {
			widths[c] = max(widths[c], len([]rune(cell)))
		}
	}

	for c, h := range headers {
		fmt.Fprintf(out, "%s%s%s%s   ", ui.ColorUnderline(), h, ui.ColorReset(), padRight("", widths[c]-len(h)))
	}
	fmt.Fprintf(out, "%sStatus%s\n", ui.ColorUnderline(), ui.ColorReset())

	for i, r := range results {
		row := rows[i]
		fmt.Fprintf(out, "%s%s%s%s   ", ui.ColorCyan(), row[0], ui.ColorReset(), padRight("", widths[0]-len([]rune(row[0]))))
		for c := 1; c < len(row); c++ {
			fmt.Fprintf(out, "%s%s   ", row[c], padRight("", widths[c]-len([]rune(row[c]))))
		}
		fmt.Fprintf(out, "%s\n", statusCell(r))
	}
}

func statusCell(r orchestration.EstimationResult) string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s❌ %s (%v)%s", ui.StateColor(r.State.String()), r.State, r.Err, ui.ColorReset())
	case !r.WithinBound():
		return fmt.Sprintf("%s⚠ Outside bound%s", ui.ColorYellow(), ui.ColorReset())
	default:
		return fmt.Sprintf("%s✅ %s%s", ui.ColorGreen(), r.State, ui.ColorReset())
	}
}

func durationCell(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// PresentResult prints the estimate of one integrand against its exact
// value. Verbose mode adds the call count and duration.
func (CLIResultPresenter) PresentResult(r orchestration.EstimationResult, verbose bool, out io.Writer) {
	fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorBold(), r.Name, ui.ColorReset())
	fmt.Fprintf(out, "  Estimated   = %s%.17g%s\n", ui.ColorCyan(), r.Estimate, ui.ColorReset())
	if !math.IsNaN(r.Exact) {
		fmt.Fprintf(out, "  Exact       = %.17g\n", r.Exact)
		fmt.Fprintf(out, "  Error       = %.3g\n", r.ActualError())
	}
	fmt.Fprintf(out, "  Error bound = %.3g\n", r.ErrorEstimate)
	fmt.Fprintf(out, "  Error goal  = %g\n", r.Goal)
	if verbose {
		fmt.Fprintf(out, "  Calls       = %s\n", format.FormatCount(r.Calls))
		fmt.Fprintf(out, "  Duration    = %s\n", format.FormatExecutionDuration(r.Duration))
	}
}

// HandleError prints a diagnostic for err and returns the exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleJobError(err, duration, out, CLIColorProvider{})
}

// DisplayMemoryStats shows process memory statistics after a run, followed
// by the heap change observed across each job.
func DisplayMemoryStats(snap metrics.MemorySnapshot, deltas []metrics.HeapDelta, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Heap in use:      %s\n", format.FormatBytes(snap.HeapAlloc))
	fmt.Fprintf(out, "  Obtained from OS: %s\n", format.FormatBytes(snap.Sys))
	fmt.Fprintf(out, "  GC cycles:        %d (%s paused)\n", snap.NumGC, format.FormatExecutionDuration(snap.GCPause))
	fmt.Fprintf(out, "  Goroutines:       %d\n", snap.Goroutines)
	for _, d := range deltas {
		fmt.Fprintf(out, "  Heap delta %-12s %s\n", d.Job+":", formatSignedBytes(d.Bytes))
	}
}

func formatSignedBytes(b int64) string {
	if b < 0 {
		return "-" + format.FormatBytes(uint64(-b))
	}
	return "+" + format.FormatBytes(uint64(b))
}

// DisplaySystemStats shows one system load reading.
func DisplaySystemStats(s sysmon.Stats, out io.Writer) {
	fmt.Fprintf(out, "System: %s\n", s.Summary())
}

// KahanComparison is the outcome of the adversarial mean demonstration.
type KahanComparison struct {
	Precision   string
	Count       uint64
	Naive       float64
	Compensated float64
	Exact       float64
	Duration    time.Duration
}

// DisplayKahanComparison prints the naive and compensated means of the
// adversarial sequence next to the exact mean.
func DisplayKahanComparison(c KahanComparison, out io.Writer) {
	fmt.Fprintf(out, "\n--- Running mean of %s values (%s) ---\n", format.FormatCount(c.Count), c.Precision)
	fmt.Fprintf(out, "  (No Kahan) m = %s%.10f%s  error %.3g\n", ui.ColorRed(), c.Naive, ui.ColorReset(), c.Naive-c.Exact)
	fmt.Fprintf(out, "  (Kahan)    m = %s%.10f%s  error %.3g\n", ui.ColorGreen(), c.Compensated, ui.ColorReset(), c.Compensated-c.Exact)
	fmt.Fprintf(out, "  Exact      m = %.10f\n", c.Exact)
	fmt.Fprintf(out, "  Computed in %s\n", format.FormatExecutionDuration(c.Duration))
}
