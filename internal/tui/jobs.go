package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/kahanmc/internal/format"
	"github.com/agbru/kahanmc/internal/job"
)

// Column widths for the job table (shared between header and rows).
const (
	colWidthName     = 14
	colWidthProgress = 20
	colWidthPct      = 6
	colWidthEstimate = 14
	colWidthError    = 10
	colWidthCalls    = 13
	colWidthETA      = 9
	colWidthState    = 10
)

// JobsModel is the table of monitored jobs with a selection cursor.
type JobsModel struct {
	statuses []job.Status
	cursor   int
	width    int
	height   int
}

// NewJobsModel creates a table preloaded with the job names so it renders
// before the first poll.
func NewJobsModel(handles []job.Handle) JobsModel {
	statuses := make([]job.Status, len(handles))
	for i, h := range handles {
		statuses[i] = job.Status{ID: h.ID(), Name: h.Name()}
	}
	return JobsModel{statuses: statuses}
}

// SetSize updates dimensions.
func (m *JobsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Update replaces the displayed statuses.
func (m *JobsModel) Update(statuses []job.Status) {
	m.statuses = statuses
	m.cursor = min(m.cursor, max(len(statuses)-1, 0))
}

// MoveCursor shifts the selection by delta rows, clamped to the table.
func (m *JobsModel) MoveCursor(delta int) {
	m.cursor = min(max(m.cursor+delta, 0), max(len(m.statuses)-1, 0))
}

// Selected returns the index of the highlighted job.
func (m JobsModel) Selected() int {
	return m.cursor
}

// SelectedStatus returns the status of the highlighted job.
func (m JobsModel) SelectedStatus() (job.Status, bool) {
	if m.cursor >= len(m.statuses) {
		return job.Status{}, false
	}
	return m.statuses[m.cursor], true
}

// calculateTableWidth returns the total width of a table row.
func calculateTableWidth() int {
	return 1 + colWidthName + 1 + colWidthProgress + 1 + colWidthPct + 1 + colWidthEstimate + 1 +
		colWidthError + 1 + colWidthCalls + 1 + colWidthETA + 1 + colWidthState
}

// View renders the job table.
func (m JobsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("JOBS"))
	b.WriteString("\n")

	b.WriteString(tableHeaderStyle.Render(m.row("Integrand", strings.Repeat(" ", colWidthProgress), "%", "Estimate", "Error", "Calls", "ETA", "State")))
	for i, st := range m.statuses {
		b.WriteString("\n")
		b.WriteString(m.renderJobRow(i, st))
	}

	return panelStyle.
		Width(max(m.width-2, calculateTableWidth())).
		Height(max(m.height-2, len(m.statuses)+2)).
		Render(b.String())
}

func (m JobsModel) row(name, bar, pct, estimate, errEst, calls, eta, state string) string {
	cell := func(s string, w int, right bool) string {
		st := lipgloss.NewStyle().Width(w)
		if right {
			st = st.Align(lipgloss.Right)
		}
		return st.Render(truncateString(s, w))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		" ",
		cell(name, colWidthName, false), " ",
		bar, " ",
		cell(pct, colWidthPct, true), " ",
		cell(estimate, colWidthEstimate, true), " ",
		cell(errEst, colWidthError, true), " ",
		cell(calls, colWidthCalls, true), " ",
		cell(eta, colWidthETA, true), " ",
		lipgloss.NewStyle().Width(colWidthState).Render(state),
	)
}

func (m JobsModel) renderJobRow(idx int, st job.Status) string {
	estimate, errEst, calls, eta := "-", "-", "-", "-"
	if st.Calls > 0 {
		estimate = fmt.Sprintf("%.8g", st.Estimate)
		errEst = fmt.Sprintf("%.3g", st.ErrorEstimate)
		calls = format.FormatCount(st.Calls)
	}
	if st.State == job.Running {
		eta = format.FormatRemaining(st.Remaining, st.RemainingKnown)
	}
	line := m.row(st.Name, renderProgressBar(st.Progress, colWidthProgress),
		fmt.Sprintf("%d%%", int(st.Progress*100)), estimate, errEst, calls, eta, stateStyle(st.State).Render(st.State.String()))
	if idx == m.cursor {
		return jobSelectedStyle.Render(line)
	}
	return jobNameStyle.Render(line)
}

func stateStyle(s job.State) lipgloss.Style {
	switch s {
	case job.Completed:
		return successStyle
	case job.Failed, job.Cancelled:
		return errorStyle
	case job.Running:
		return statusRunningStyle
	default:
		return metricLabelStyle
	}
}

// renderProgressBar renders a bar of exactly width cells.
func renderProgressBar(progress float64, width int) string {
	filled := min(max(int(progress*float64(width)), 0), width)
	return chartBarStyle.Render(strings.Repeat("█", filled)) +
		chartEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// truncateString truncates a string to maxLen runes, adding "..." if
// truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
