package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/kahanmc/internal/cli"
	"github.com/agbru/kahanmc/internal/config"
	apperrors "github.com/agbru/kahanmc/internal/errors"
	"github.com/agbru/kahanmc/internal/job"
	"github.com/agbru/kahanmc/internal/logging"
	"github.com/agbru/kahanmc/internal/metrics"
	"github.com/agbru/kahanmc/internal/orchestration"
	"github.com/agbru/kahanmc/internal/progress"
	"github.com/agbru/kahanmc/internal/sysmon"
	"github.com/agbru/kahanmc/internal/tui"
	"github.com/agbru/kahanmc/internal/ui"
)

// progressLogInterval throttles the debug progress log of each job.
const progressLogInterval = 5 * time.Second

// Application represents the kahanmc application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	// Logger receives job lifecycle logs. Built from ErrWriter when nil.
	Logger logging.Logger
	// Metrics records job metrics. It is created on demand when
	// Config.MetricsAddr is set.
	Metrics *metrics.JobMetrics

	zl     zerolog.Logger
	memory *metrics.MemoryCollector
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithLogger sets the job logger.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// WithMetrics sets the job metrics recorder, even without a metrics address.
func WithMetrics(m *metrics.JobMetrics) AppOption {
	return func(a *Application) { a.Metrics = m }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "kahanmc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	logOut := errWriter
	if cfg.TUI {
		// The dashboard owns the terminal.
		logOut = io.Discard
	}
	app.zl = zerolog.New(zerolog.ConsoleWriter{Out: logOut, NoColor: cfg.NoColor, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	if app.Logger == nil {
		app.Logger = logging.NewZerologAdapter(app.zl)
	}
	if app.Metrics == nil && cfg.MetricsAddr != "" {
		app.Metrics = metrics.NewJobMetrics()
	}
	if app.Metrics != nil {
		app.memory = app.Metrics.Memory()
	} else {
		app.memory = metrics.NewMemoryCollector()
	}
	return app, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor)
	if err := logging.SetLevel(a.Config.LogLevel); err != nil {
		fmt.Fprintf(a.ErrWriter, "%v\n", err)
		return apperrors.ExitErrorConfig
	}

	ctx, cancelTimeout := context.WithTimeoutCause(ctx, a.Config.Timeout,
		apperrors.TimeoutError{Operation: a.Config.Mode, Limit: a.Config.Timeout})
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if a.Config.MetricsAddr != "" && a.Metrics != nil {
		go func() {
			if err := a.Metrics.Serve(ctx, a.Config.MetricsAddr, a.Logger); err != nil {
				a.Logger.Error("metrics server stopped", err, logging.String("addr", a.Config.MetricsAddr))
			}
		}()
	}

	if a.Config.Mode == config.ModeKahan {
		return a.runKahan(ctx, out)
	}
	if a.Config.TUI {
		return a.runTUI(ctx)
	}
	return a.runIntegrate(ctx, out)
}

// jobOptions returns the options shared by every job of the run.
func (a *Application) jobOptions() []job.Option {
	opts := []job.Option{
		job.WithLogger(a.Logger),
		job.WithObserver(progress.NewLoggingObserver(a.zl, progressLogInterval)),
	}
	switch {
	case a.Metrics != nil:
		opts = append(opts, job.WithRecorder(a.Metrics))
	case a.Config.Verbose:
		opts = append(opts, job.WithRecorder(a.memory))
	}
	return opts
}

// runIntegrate estimates the selected integrands concurrently.
func (a *Application) runIntegrate(ctx context.Context, out io.Writer) int {
	tasks, err := orchestration.BuildTasks(a.Config, a.jobOptions()...)
	if err != nil {
		return apperrors.HandleJobError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(tasks, out)
	}

	results := orchestration.ExecuteJobs(ctx, tasks, a.progressReporter(), a.Config.PollInterval, a.progressOut(out))
	opts := orchestration.PresentationOptions{Verbose: a.Config.Verbose, Quiet: a.Config.Quiet}
	code := orchestration.AnalyzeResults(results, opts, cli.CLIResultPresenter{}, cli.CLIResultPresenter{}, out)

	a.printRunStats(ctx, out)
	return code
}

// runTUI launches the interactive dashboard.
func (a *Application) runTUI(ctx context.Context) int {
	tasks, err := orchestration.BuildTasks(a.Config, a.jobOptions()...)
	if err != nil {
		return apperrors.HandleJobError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	return tui.Run(ctx, tasks, a.Config, resolvedVersion())
}

func (a *Application) progressReporter() orchestration.ProgressReporter {
	if a.Config.Quiet {
		return orchestration.NullProgressReporter{}
	}
	return cli.CLIProgressReporter{}
}

func (a *Application) progressOut(out io.Writer) io.Writer {
	if a.Config.Quiet {
		return io.Discard
	}
	return out
}

// printRunStats shows memory and system statistics in verbose mode.
func (a *Application) printRunStats(ctx context.Context, out io.Writer) {
	if !a.Config.Verbose || a.Config.Quiet {
		return
	}
	cli.DisplayMemoryStats(a.memory.Snapshot(), a.memory.Deltas(), out)
	cli.DisplaySystemStats(sysmon.Sample(context.WithoutCancel(ctx)), out)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
