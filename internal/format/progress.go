package format

import (
	"fmt"
	"strings"
	"time"
)

// DefaultLineWidth is the bar width used by the console progress line.
const DefaultLineWidth = 50

// ProgressBar renders progress as a bar of filled and empty blocks. Progress
// outside [0, 1] is clamped.
func ProgressBar(progress float64, length int) string {
	progress = clamp(progress)
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// FormatProgressBarWithETA combines a block progress bar, a percentage and an
// ETA.
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), clamp(progress)*100, FormatETA(eta))
}

// ProgressLine is the data shown on one progress report line.
type ProgressLine struct {
	Progress       float64
	ErrorEstimate  float64
	Estimate       float64
	Remaining      time.Duration
	RemainingKnown bool
}

// FormatProgressLine renders
//
//	[=========>          ] 45%, E = 0.00123, time to completion: 12s, estimate: 3.1416
//
// The bar has width cells: '=' for completed cells, '>' for the current one.
func FormatProgressLine(l ProgressLine, width int) string {
	p := clamp(l.Progress)
	pos := int(float64(width) * p)
	var b strings.Builder
	b.Grow(width + 96)
	b.WriteByte('[')
	for i := 0; i < width; i++ {
		switch {
		case i < pos:
			b.WriteByte('=')
		case i == pos:
			b.WriteByte('>')
		default:
			b.WriteByte(' ')
		}
	}
	fmt.Fprintf(&b, "] %d%%, E = %.3g, time to completion: %s, estimate: %.5g",
		int(p*100), l.ErrorEstimate, FormatRemaining(l.Remaining, l.RemainingKnown), l.Estimate)
	return b.String()
}

// ProgressState aggregates the progress of several jobs into one figure.
// It is not safe for concurrent use.
type ProgressState struct {
	progresses []float64
}

// NewProgressState tracks n jobs, all starting at zero.
func NewProgressState(n int) *ProgressState {
	return &ProgressState{progresses: make([]float64, n)}
}

// Update records the progress of job index; out of range indices are ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = clamp(value)
	}
}

// CalculateAverage returns the mean progress over all tracked jobs.
func (ps *ProgressState) CalculateAverage() float64 {
	if len(ps.progresses) == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(len(ps.progresses))
}

func clamp(p float64) float64 {
	switch {
	case p != p, p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
