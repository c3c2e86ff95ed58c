package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/agbru/kahanmc/internal/format"
)

const historySize = 256

// ChartModel plots the running estimate of the selected job as a braille
// chart against its exact value, with the overall progress bar and system
// load sparklines.
type ChartModel struct {
	estimates       *History
	cpuHistory      *History
	memHistory      *History
	jobName         string
	exact           float64
	lastEstimate    float64
	averageProgress float64
	remaining       time.Duration
	remainingKnown  bool
	elapsed         time.Duration
	done            bool
	width           int
	height          int
}

// NewChartModel creates an empty chart.
func NewChartModel() ChartModel {
	return ChartModel{
		estimates:  NewHistory(historySize),
		cpuHistory: NewHistory(historySize),
		memHistory: NewHistory(historySize),
		exact:      math.NaN(),
	}
}

// SetSize updates dimensions.
func (c *ChartModel) SetSize(w, h int) {
	c.width = w
	c.height = h
}

// Track switches the plotted job, clearing the history when it changes.
// exact is the job's known value, NaN when there is none.
func (c *ChartModel) Track(name string, exact float64) {
	if name != c.jobName {
		c.jobName = name
		c.estimates.Reset()
	}
	c.exact = exact
}

// AddEstimate appends the tracked job's latest estimate.
func (c *ChartModel) AddEstimate(estimate float64) {
	c.lastEstimate = estimate
	c.estimates.Push(estimate)
}

// SetProgress records the overall progress and projected remaining time.
func (c *ChartModel) SetProgress(progress float64, remaining time.Duration, known bool) {
	c.averageProgress = progress
	c.remaining = remaining
	c.remainingKnown = known
}

// UpdateSysStats appends a system load sample.
func (c *ChartModel) UpdateSysStats(cpuPct, memPct float64) {
	c.cpuHistory.Push(cpuPct)
	c.memHistory.Push(memPct)
}

// SetDone freezes the chart with the total run time.
func (c *ChartModel) SetDone(elapsed time.Duration) {
	c.done = true
	c.elapsed = elapsed
}

// Reset clears every history.
func (c *ChartModel) Reset() {
	c.estimates.Reset()
	c.cpuHistory.Reset()
	c.memHistory.Reset()
	c.averageProgress = 0
	c.remaining = 0
	c.remainingKnown = false
	c.done = false
}

// renderProgressBar renders the overall progress line, or nothing when the
// panel is too narrow.
func (c ChartModel) renderProgressBar() string {
	barWidth := c.width - 24
	if barWidth < 10 {
		return ""
	}
	var tail string
	if c.done {
		tail = "done in " + format.FormatExecutionDuration(c.elapsed)
	} else {
		tail = "ETA: " + format.FormatRemaining(c.remaining, c.remainingKnown)
	}
	return fmt.Sprintf(" %s %5.1f%% %s", renderProgressBar(c.averageProgress, barWidth), c.averageProgress*100, tail)
}

// View renders the chart panel.
func (c ChartModel) View() string {
	var b strings.Builder
	title := "Estimate"
	if c.jobName != "" {
		title += " (" + c.jobName + ")"
	}
	b.WriteString(titleStyle.Render(title))
	if c.estimates.Len() > 0 {
		b.WriteString(metricValueStyle.Render(fmt.Sprintf("  %.10g", c.lastEstimate)))
	}
	if !math.IsNaN(c.exact) {
		b.WriteString(metricLabelStyle.Render(fmt.Sprintf("  exact %.10g", c.exact)))
	}
	b.WriteString("\n")

	chartWidth := max(c.width-4, 1)
	chartRows := max(c.height-7, 1)
	for _, line := range RenderEstimateChart(c.estimates.Tail(0), c.exact, chartWidth, chartRows) {
		b.WriteString(chartBarStyle.Render(line))
		b.WriteString("\n")
	}

	if bar := c.renderProgressBar(); bar != "" {
		b.WriteString(bar)
		b.WriteString("\n")
	}

	sparkWidth := max(c.width-16, 1)
	cpu := c.cpuHistory.Tail(sparkWidth)
	mem := c.memHistory.Tail(sparkWidth)
	b.WriteString(fmt.Sprintf(" %s %s %s\n",
		metricLabelStyle.Render("CPU"), cpuSparklineStyle.Render(RenderSparkline(cpu)),
		metricValueStyle.Render(fmt.Sprintf("%.0f%%", c.cpuHistory.Last()))))
	b.WriteString(fmt.Sprintf(" %s %s %s",
		metricLabelStyle.Render("MEM"), memSparklineStyle.Render(RenderSparkline(mem)),
		metricValueStyle.Render(fmt.Sprintf("%.0f%%", c.memHistory.Last()))))

	return panelStyle.
		Width(max(c.width-2, 0)).
		Height(max(c.height-2, 0)).
		Render(b.String())
}
