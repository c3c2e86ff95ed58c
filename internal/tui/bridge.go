package tui

import (
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/kahanmc/internal/errors"
	"github.com/agbru/kahanmc/internal/format"
	"github.com/agbru/kahanmc/internal/job"
	"github.com/agbru/kahanmc/internal/orchestration"
)

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so the bridge goroutines can send messages.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the bubbletea program (thread-safe).
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// TUIProgressReporter implements orchestration.ProgressReporter.
// It polls the jobs and forwards each poll as a PollMsg.
type TUIProgressReporter struct {
	ref *programRef
}

var _ orchestration.ProgressReporter = (*TUIProgressReporter)(nil)

// DisplayProgress polls jobs every interval until all have terminated.
func (t *TUIProgressReporter) DisplayProgress(wg *sync.WaitGroup, jobs []job.Handle, interval time.Duration, _ io.Writer) {
	defer wg.Done()

	agg := orchestration.NewProgressAggregator(jobs)
	if agg == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		p := agg.Poll()
		t.ref.Send(PollMsg{Progress: p})
		if p.AllDone() {
			return
		}
		<-ticker.C
	}
}

// TUIResultPresenter implements orchestration.ResultPresenter and
// orchestration.ErrorHandler. It sends messages to the TUI instead of
// writing to stdout.
type TUIResultPresenter struct {
	ref *programRef
}

var (
	_ orchestration.ResultPresenter = (*TUIResultPresenter)(nil)
	_ orchestration.ErrorHandler    = (*TUIResultPresenter)(nil)
)

// PresentResultsTable sends the results to the TUI.
func (t *TUIResultPresenter) PresentResultsTable(results []orchestration.EstimationResult, _ io.Writer) {
	t.ref.Send(ResultsMsg{Results: results})
}

// PresentResult is a no-op: the job table already shows every result.
func (t *TUIResultPresenter) PresentResult(orchestration.EstimationResult, bool, io.Writer) {}

// FormatDuration delegates to the shared formatter.
func (t *TUIResultPresenter) FormatDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// HandleError sends an error message to the TUI and returns the exit code.
func (t *TUIResultPresenter) HandleError(err error, duration time.Duration, _ io.Writer) int {
	t.ref.Send(ErrorMsg{Err: err, Duration: duration})
	return apperrors.HandleJobError(err, duration, io.Discard, nil)
}
