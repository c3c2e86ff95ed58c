package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/kahanmc/internal/format"
	"github.com/agbru/kahanmc/internal/metrics"
)

// MetricsModel displays runtime memory statistics and sampling throughput.
type MetricsModel struct {
	mem        metrics.MemorySnapshot
	cpuPercent float64
	memPercent float64
	throughput float64 // calls per second, smoothed
	lastCalls  uint64
	lastUpdate time.Time
	width      int
	height     int
}

// NewMetricsModel creates a new metrics panel.
func NewMetricsModel() MetricsModel {
	return MetricsModel{
		lastUpdate: time.Now(),
	}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// UpdateMemStats updates memory statistics.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.mem = msg.MemorySnapshot
}

// UpdateSysStats records the latest system load.
func (m *MetricsModel) UpdateSysStats(msg SysStatsMsg) {
	m.cpuPercent = msg.CPUPercent
	m.memPercent = msg.MemPercent
}

// UpdateCalls updates the throughput from the total number of sampler calls
// made so far by all jobs.
func (m *MetricsModel) UpdateCalls(total uint64) {
	now := time.Now()
	dt := now.Sub(m.lastUpdate).Seconds()
	if dt <= 0.05 {
		return
	}
	if total > m.lastCalls {
		instant := float64(total-m.lastCalls) / dt
		if m.throughput > 0 {
			m.throughput = 0.7*m.throughput + 0.3*instant
		} else {
			m.throughput = instant
		}
	}
	m.lastCalls = total
	m.lastUpdate = now
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	var rows strings.Builder

	heapStr := metricValueStyle.Render(format.FormatBytes(m.mem.HeapAlloc) + " / " + format.FormatBytes(m.mem.Sys))
	gcPauseStr := metricValueStyle.Render(fmt.Sprintf("%d (%s)", m.mem.NumGC, format.FormatExecutionDuration(m.mem.GCPause)))
	pipe := metricLabelStyle.Render(" | ")
	rows.WriteString(fmt.Sprintf("  %s %s%s%s %s",
		metricLabelStyle.Render("Heap:"), heapStr,
		pipe,
		metricLabelStyle.Render("GC:"), gcPauseStr))

	colWidth := (m.width - 6) / 2
	leftCol := []string{
		formatMetricCol("Calls/s:", format.FormatCount(uint64(m.throughput)), colWidth),
		formatMetricCol("CPU:", fmt.Sprintf("%.1f%%", m.cpuPercent), colWidth),
	}
	rightCol := []string{
		formatMetricCol("Goroutines:", fmt.Sprintf("%d", m.mem.Goroutines), colWidth),
		formatMetricCol("Memory:", fmt.Sprintf("%.1f%%", m.memPercent), colWidth),
	}
	for i := range leftCol {
		rows.WriteString("\n")
		rows.WriteString(leftCol[i])
		rows.WriteString(rightCol[i])
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(rows.String())
}

func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-12s", label)),
		metricValueStyle.Render(value))
	// Pad using the rendered width, ANSI codes excluded.
	visible := lipgloss.Width(cell)
	if visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}
