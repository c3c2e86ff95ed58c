package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/kahanmc/internal/format"
)

// runStatus is the global state shown in the header.
type runStatus int

const (
	statusRunning runStatus = iota
	statusPaused
	statusDone
	statusError
)

// HeaderModel renders the top bar: title, version, run status and elapsed
// time.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	status    runStatus
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
	}
}

// SetDone freezes the elapsed timer at the current time.
func (h *HeaderModel) SetDone(failed bool) {
	h.endTime = time.Now()
	h.status = statusDone
	if failed {
		h.status = statusError
	}
}

// SetPaused toggles the paused indicator while the run is live.
func (h *HeaderModel) SetPaused(paused bool) {
	if !h.endTime.IsZero() {
		return
	}
	h.status = statusRunning
	if paused {
		h.status = statusPaused
	}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// Elapsed returns the time since the header was created, frozen once done.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

func (h HeaderModel) statusText() string {
	switch h.status {
	case statusPaused:
		return statusPausedStyle.Render("PAUSED")
	case statusDone:
		return statusDoneStyle.Render("DONE")
	case statusError:
		return statusErrorStyle.Render("ERROR")
	default:
		return statusRunningStyle.Render("RUNNING")
	}
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "KahanMC Monitor"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	title := titleStyle.Render(titleText)
	pipe := versionStyle.Render(" | ")
	elapsed := elapsedStyle.Render(fmt.Sprintf("Elapsed: %s", format.FormatExecutionDuration(h.Elapsed())))

	leftPart := title + pipe + elapsed
	right := h.statusText()

	innerWidth := max(h.width-2, 0)
	gap := max(innerWidth-lipgloss.Width(leftPart)-lipgloss.Width(right), 1)

	return headerStyle.Width(h.width).Render(leftPart + strings.Repeat(" ", gap) + right)
}
