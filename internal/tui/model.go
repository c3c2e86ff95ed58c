package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/kahanmc/internal/config"
	apperrors "github.com/agbru/kahanmc/internal/errors"
	"github.com/agbru/kahanmc/internal/job"
	"github.com/agbru/kahanmc/internal/metrics"
	"github.com/agbru/kahanmc/internal/orchestration"
	"github.com/agbru/kahanmc/internal/sysmon"
)

// Layout constants for the TUI dashboard.
const (
	headerHeight           = 1
	footerHeight           = 2
	minBodyHeight          = 8
	MetricsPanelWidthPct   = 40
	jobsPanelChromeHeight  = 4
	refreshInterval        = 500 * time.Millisecond
	sysStatsSampleInterval = time.Second
)

// ExecutionState holds the execution-related fields of a TUI session.
type ExecutionState struct {
	ctx      context.Context
	cancel   context.CancelFunc
	tasks    []orchestration.Task
	handles  []job.Handle
	done     bool
	exitCode int
}

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
	jobs   int
}

// bodyHeight returns the height left for the panels.
func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

// jobsHeight returns the height of the job table panel.
func (l LayoutManager) jobsHeight() int {
	return min(l.jobs+jobsPanelChromeHeight, l.bodyHeight()/2)
}

// lowerHeight returns the height shared by the metrics and chart panels.
func (l LayoutManager) lowerHeight() int {
	return l.bodyHeight() - l.jobsHeight()
}

// metricsWidth returns the width of the metrics panel.
func (l LayoutManager) metricsWidth() int {
	return l.width * MetricsPanelWidthPct / 100
}

// chartWidth returns the width of the chart panel.
func (l LayoutManager) chartWidth() int {
	return l.width - l.metricsWidth()
}

// Model is the root bubbletea model for the TUI dashboard.
type Model struct {
	header  HeaderModel
	jobs    JobsModel
	metrics MetricsModel
	chart   ChartModel
	footer  FooterModel

	keymap KeyMap

	ExecutionState
	LayoutManager

	config config.AppConfig
	ref    *programRef
	sys    <-chan sysmon.Stats
	memory *metrics.MemoryCollector
	paused bool
}

// NewModel creates a new TUI model over already built tasks.
func NewModel(parentCtx context.Context, tasks []orchestration.Task, cfg config.AppConfig, version string) Model {
	handles := make([]job.Handle, len(tasks))
	for i, t := range tasks {
		handles[i] = t.Handle
	}
	ctx, cancel := context.WithCancel(parentCtx)
	keymap := DefaultKeyMap()

	return Model{
		header:  NewHeaderModel(version),
		jobs:    NewJobsModel(handles),
		metrics: NewMetricsModel(),
		chart:   NewChartModel(),
		footer:  NewFooterModel(keymap),
		keymap:  keymap,
		ExecutionState: ExecutionState{
			ctx:      ctx,
			cancel:   cancel,
			tasks:    tasks,
			handles:  handles,
			exitCode: apperrors.ExitSuccess,
		},
		LayoutManager: LayoutManager{jobs: len(tasks)},
		config:        cfg,
		ref:           &programRef{},
		sys:           sysmon.Watch(ctx, sysStatsSampleInterval),
		memory:        metrics.NewMemoryCollector(),
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startRunCmd(m.ref, m.ctx, m.tasks, m.config),
		waitSysStatsCmd(m.sys),
		watchContextCmd(m.ctx),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case PollMsg:
		if !m.paused {
			m.applyPoll(msg.Progress)
		}
		return m, nil

	case ResultsMsg:
		within := 0
		for _, r := range msg.Results {
			if r.Err == nil && r.WithinBound() {
				within++
			}
		}
		m.footer.SetMessage(fmt.Sprintf("%d of %d estimates within their error bounds.", within, len(msg.Results)), within < len(msg.Results))
		return m, nil

	case ErrorMsg:
		m.footer.SetMessage(fmt.Sprintf("Error after %s: %v", msg.Duration, msg.Err), true)
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		if !m.paused {
			return m, tea.Batch(sampleMemStatsCmd(m.memory), tickCmd())
		}
		return m, tickCmd()

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		if !m.paused {
			m.metrics.UpdateSysStats(msg)
			m.chart.UpdateSysStats(msg.CPUPercent, msg.MemPercent)
		}
		return m, waitSysStatsCmd(m.sys)

	case RunCompleteMsg:
		m.done = true
		m.exitCode = msg.ExitCode
		m.header.SetDone(msg.ExitCode != apperrors.ExitSuccess)
		m.chart.SetDone(m.header.Elapsed())
		return m, nil

	case ContextCancelledMsg:
		if !m.done {
			m.done = true
			m.exitCode = apperrors.ExitCodeFor(msg.Err)
			m.header.SetDone(true)
		}
		return m, tea.Quit
	}

	return m, nil
}

// applyPoll feeds one aggregated poll to every panel.
func (m *Model) applyPoll(p orchestration.AggregatedProgress) {
	m.jobs.Update(p.Statuses)
	m.chart.SetProgress(p.AverageProgress, p.Remaining, p.RemainingKnown)

	var calls uint64
	for _, st := range p.Statuses {
		calls += st.Calls
	}
	m.metrics.UpdateCalls(calls)

	if st, ok := m.jobs.SelectedStatus(); ok {
		m.chart.Track(st.Name, m.exactFor(st.Name))
		if st.Calls > 0 {
			m.chart.AddEstimate(st.Estimate)
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if !m.done {
			m.done = true
			m.exitCode = apperrors.ExitErrorCanceled
		}
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.header.SetPaused(m.paused)
		return m, nil

	case key.Matches(msg, m.keymap.CancelJob):
		if i := m.jobs.Selected(); i < len(m.handles) {
			m.handles[i].Cancel()
		}
		return m, nil

	case key.Matches(msg, m.keymap.Help):
		m.footer.ToggleHelp()
		return m, nil

	case key.Matches(msg, m.keymap.Up):
		m.jobs.MoveCursor(-1)
	case key.Matches(msg, m.keymap.Down):
		m.jobs.MoveCursor(1)
	case key.Matches(msg, m.keymap.PageUp):
		m.jobs.MoveCursor(-len(m.handles))
	case key.Matches(msg, m.keymap.PageDown):
		m.jobs.MoveCursor(len(m.handles))
	default:
		return m, nil
	}
	if st, ok := m.jobs.SelectedStatus(); ok {
		m.chart.Track(st.Name, m.exactFor(st.Name))
	}
	return m, nil
}

// exactFor returns the exact value of the named task, NaN when unknown.
func (m Model) exactFor(name string) float64 {
	for _, t := range m.tasks {
		if t.Handle.Name() == name {
			return t.Exact
		}
	}
	return math.NaN()
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	lower := lipgloss.JoinHorizontal(lipgloss.Top, m.metrics.View(), m.chart.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.jobs.View(),
		lower,
		m.footer.View(),
	)
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.jobs.SetSize(m.width, m.jobsHeight())
	m.metrics.SetSize(m.metricsWidth(), m.lowerHeight())
	m.chart.SetSize(m.chartWidth(), m.lowerHeight())
}

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs it, and returns the exit code.
func Run(ctx context.Context, tasks []orchestration.Task, cfg config.AppConfig, version string) int {
	// Rebuild styles from the current ui theme (set by the app via InitTheme).
	initTUIStyles()

	model := NewModel(ctx, tasks, cfg, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	// Inject the program reference before running so bridge goroutines can Send.
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return apperrors.ExitErrorCanceled
		}
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// startRunCmd returns a tea.Cmd that runs every job to completion and
// analyzes the results.
func startRunCmd(ref *programRef, ctx context.Context, tasks []orchestration.Task, cfg config.AppConfig) tea.Cmd {
	return func() tea.Msg {
		reporter := &TUIProgressReporter{ref: ref}
		presenter := &TUIResultPresenter{ref: ref}
		results := orchestration.ExecuteJobs(ctx, tasks, reporter, cfg.PollInterval, io.Discard)
		opts := orchestration.PresentationOptions{Verbose: cfg.Verbose}
		exitCode := orchestration.AnalyzeResults(results, opts, presenter, presenter, io.Discard)
		return RunCompleteMsg{ExitCode: exitCode}
	}
}

// tickCmd returns a command that sends a TickMsg after refreshInterval.
func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleMemStatsCmd takes a memory reading and returns it as a MemStatsMsg.
func sampleMemStatsCmd(mc *metrics.MemoryCollector) tea.Cmd {
	return func() tea.Msg {
		return MemStatsMsg{MemorySnapshot: mc.Snapshot()}
	}
}

// waitSysStatsCmd waits for the next system load sample. It returns nil once
// the watch channel closes.
func waitSysStatsCmd(ch <-chan sysmon.Stats) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}

// watchContextCmd waits for context cancellation and sends a message.
func watchContextCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err()}
	}
}
