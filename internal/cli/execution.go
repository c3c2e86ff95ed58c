package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/kahanmc/internal/config"
	"github.com/agbru/kahanmc/internal/orchestration"
	"github.com/agbru/kahanmc/internal/ui"
)

// PrintExecutionConfig displays the run configuration.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Mode %s%s%s in %s%s%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), cfg.Mode, ui.ColorReset(),
		ui.ColorMagenta(), cfg.Precision, ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	if cfg.Mode == config.ModeIntegrate {
		target := "integrand goal"
		if cfg.TargetError > 0 {
			target = fmt.Sprintf("%g", cfg.TargetError)
		}
		fmt.Fprintf(out, "Stopping rule: error target %s%s%s or %s%d%s calls, seed %d.\n",
			ui.ColorCyan(), target, ui.ColorReset(), ui.ColorCyan(), cfg.MaxCalls, ui.ColorReset(), cfg.Seed)
	}
}

// PrintExecutionMode displays which jobs are about to run.
func PrintExecutionMode(tasks []orchestration.Task, out io.Writer) {
	var modeDesc string
	switch len(tasks) {
	case 0:
		modeDesc = "Nothing to run"
	case 1:
		modeDesc = fmt.Sprintf("Single estimation of %s%s%s",
			ui.ColorGreen(), tasks[0].Handle.Name(), ui.ColorReset())
	default:
		modeDesc = fmt.Sprintf("Concurrent estimation of %d integrands", len(tasks))
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
