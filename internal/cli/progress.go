package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/kahanmc/internal/format"
	"github.com/agbru/kahanmc/internal/job"
	"github.com/agbru/kahanmc/internal/orchestration"
	"github.com/agbru/kahanmc/internal/ui"
)

// DisplayProgress polls jobs every interval until all of them terminate.
//
// On a terminal a spinner carries the progress line: the job's own line when
// there is one job, the aggregate bar otherwise. Elsewhere each poll prints
// one line per running job. A final line per job is printed at the end.
func DisplayProgress(wg *sync.WaitGroup, jobs []job.Handle, interval time.Duration, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(jobs)
	if agg == nil {
		return
	}

	allDone := make(chan struct{})
	go func() {
		for _, j := range jobs {
			<-j.Done()
		}
		close(allDone)
	}()

	interactive := isTerminal(out)
	var s Spinner
	if interactive {
		s = newSpinner(spinner.WithWriter(out))
		s.UpdateSuffix(" " + progressSuffix(agg.Poll()))
		s.Start()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-allDone:
			break loop
		case <-ticker.C:
			p := agg.Poll()
			if interactive {
				s.UpdateSuffix(" " + progressSuffix(p))
				continue
			}
			for _, st := range p.Statuses {
				if !st.State.Terminal() {
					fmt.Fprintf(out, "%s %s\n", st.Name, statusLine(st))
				}
			}
		}
	}

	if interactive {
		s.Stop()
	}
	for _, st := range agg.Poll().Statuses {
		fmt.Fprintf(out, "%s%s%s %s %s%s%s\n",
			ui.ColorBold(), st.Name, ui.ColorReset(), statusLine(st),
			ui.StateColor(st.State.String()), st.State, ui.ColorReset())
	}
}

// progressSuffix is the spinner text for one poll.
func progressSuffix(p orchestration.AggregatedProgress) string {
	if len(p.Statuses) == 1 {
		return statusLine(p.Statuses[0])
	}
	eta := p.Remaining
	if !p.RemainingKnown {
		eta = 0
	}
	names := make([]string, 0, len(p.Statuses))
	for _, st := range p.Statuses {
		names = append(names, fmt.Sprintf("%s %d%%", st.Name, int(st.Progress*100)))
	}
	return fmt.Sprintf("%s (%s, %d/%d done)",
		format.FormatProgressBarWithETA(p.AverageProgress, eta, ProgressBarWidth),
		strings.Join(names, ", "), p.Done, len(p.Statuses))
}

// statusLine renders a job status through format.FormatProgressLine.
func statusLine(st job.Status) string {
	return format.FormatProgressLine(format.ProgressLine{
		Progress:       st.Progress,
		ErrorEstimate:  st.ErrorEstimate,
		Estimate:       st.Estimate,
		Remaining:      st.Remaining,
		RemainingKnown: st.RemainingKnown,
	}, ProgressBarWidth)
}
