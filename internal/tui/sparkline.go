package tui

import (
	"math"
	"strings"
)

// History keeps the most recent samples of one dashboard series.
type History struct {
	buf   []float64
	start int
	n     int
}

// NewHistory creates a history holding at most size samples.
func NewHistory(size int) *History {
	return &History{buf: make([]float64, max(size, 1))}
}

// Push appends a sample, dropping the oldest one when the history is full.
func (h *History) Push(v float64) {
	if h.n < len(h.buf) {
		h.buf[(h.start+h.n)%len(h.buf)] = v
		h.n++
		return
	}
	h.buf[h.start] = v
	h.start = (h.start + 1) % len(h.buf)
}

// Len returns the number of samples held.
func (h *History) Len() int { return h.n }

// Last returns the newest sample, or 0 when empty.
func (h *History) Last() float64 {
	if h.n == 0 {
		return 0
	}
	return h.buf[(h.start+h.n-1)%len(h.buf)]
}

// Tail returns up to k of the newest samples, oldest first. k <= 0 returns
// every sample.
func (h *History) Tail(k int) []float64 {
	if k <= 0 || k > h.n {
		k = h.n
	}
	if k == 0 {
		return nil
	}
	out := make([]float64, k)
	first := h.start + h.n - k
	for i := range out {
		out[i] = h.buf[(first+i)%len(h.buf)]
	}
	return out
}

// Reset drops every sample.
func (h *History) Reset() { h.start, h.n = 0, 0 }

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// percentLevel maps a load percentage onto 0..steps-1. Out-of-range and NaN
// values clamp.
func percentLevel(pct float64, steps int) int {
	if !(pct > 0) {
		return 0
	}
	return min(int(math.Min(pct, 100)/100*float64(steps-1)), steps-1)
}

// RenderSparkline draws a series of load percentages as block elements.
func RenderSparkline(pcts []float64) string {
	var b strings.Builder
	for _, p := range pcts {
		b.WriteRune(sparkLevels[percentLevel(p, len(sparkLevels))])
	}
	return b.String()
}

// brailleBits[x][y] is the dot bit of column x (0-1) and row y (0-3) inside
// one braille cell, U+2800 being the empty cell.
var brailleBits = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// brailleCanvas is a dot grid drawn with braille cells of 2×4 dots.
type brailleCanvas struct {
	cells [][]rune
}

func newBrailleCanvas(width, rows int) *brailleCanvas {
	cells := make([][]rune, rows)
	for r := range cells {
		cells[r] = []rune(strings.Repeat("⠀", width))
	}
	return &brailleCanvas{cells: cells}
}

func (c *brailleCanvas) dotWidth() int  { return len(c.cells[0]) * 2 }
func (c *brailleCanvas) dotHeight() int { return len(c.cells) * 4 }

// set lights the dot at column x, row y (0 is the top row).
func (c *brailleCanvas) set(x, y int) {
	if x < 0 || y < 0 || x >= c.dotWidth() || y >= c.dotHeight() {
		return
	}
	c.cells[y/4][x/2] |= brailleBits[x%2][y%4]
}

// rowFor maps a 0..100 level to a dot row, 100 being the top.
func (c *brailleCanvas) rowFor(level float64) int {
	last := c.dotHeight() - 1
	return last - int(math.Max(0, math.Min(level, 100))/100*float64(last))
}

func (c *brailleCanvas) lines() []string {
	out := make([]string, len(c.cells))
	for r, row := range c.cells {
		out[r] = string(row)
	}
	return out
}

// RenderEstimateChart plots a series of estimates as braille dots, newest on
// the right, scaled to the range of the series. When exact is finite it is
// drawn as a dotted reference line and included in the scale, so the chart
// shows the estimates closing in on it.
func RenderEstimateChart(estimates []float64, exact float64, width, rows int) []string {
	if width <= 0 || rows <= 0 || len(estimates) == 0 {
		return nil
	}
	canvas := newBrailleCanvas(width, rows)
	hasExact := !math.IsNaN(exact) && !math.IsInf(exact, 0)

	var ref []float64
	if hasExact {
		ref = []float64{exact}
	}
	lo, hi, ok := finiteRange(estimates, ref...)
	if !ok {
		return canvas.lines()
	}

	if hasExact {
		y := canvas.rowFor(toPercent(exact, lo, hi))
		for x := 0; x < canvas.dotWidth(); x += 3 {
			canvas.set(x, y)
		}
	}

	if len(estimates) > canvas.dotWidth() {
		estimates = estimates[len(estimates)-canvas.dotWidth():]
	}
	offset := canvas.dotWidth() - len(estimates)
	for i, v := range estimates {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		canvas.set(offset+i, canvas.rowFor(toPercent(v, lo, hi)))
	}
	return canvas.lines()
}

// finiteRange returns the smallest and largest finite values among values and
// extra. ok is false when none is finite.
func finiteRange(values []float64, extra ...float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, group := range [][]float64{values, extra} {
		for _, v := range group {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	return lo, hi, !math.IsInf(lo, 1)
}

// toPercent places v on 0..100 within [lo, hi]. A flat range maps to 50.
func toPercent(v, lo, hi float64) float64 {
	if hi == lo {
		return 50
	}
	return (v - lo) / (hi - lo) * 100
}
