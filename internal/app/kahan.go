package app

import (
	"context"
	"fmt"
	"io"

	"github.com/agbru/kahanmc/internal/cli"
	"github.com/agbru/kahanmc/internal/config"
	apperrors "github.com/agbru/kahanmc/internal/errors"
	"github.com/agbru/kahanmc/internal/job"
	"github.com/agbru/kahanmc/internal/kahan"
	"github.com/agbru/kahanmc/internal/logging"
	"github.com/agbru/kahanmc/internal/orchestration"
	"github.com/agbru/kahanmc/internal/sampling"
	"github.com/agbru/kahanmc/internal/tui"
)

// kahanJobName names the adversarial mean job.
const kahanJobName = "kahan-avg"

// comparisonEstimator feeds every observation to compensated statistics and
// to a naive running mean, so both can be reported once the job ends.
type comparisonEstimator[T kahan.Float] struct {
	kahan.Stats[T]
	naive kahan.NaiveMean[T]
}

func (e *comparisonEstimator[T]) Update(x T) {
	e.Stats.Update(x)
	e.naive.Update(x)
}

// NaiveMean returns the uncompensated running mean.
func (e *comparisonEstimator[T]) NaiveMean() T {
	return e.naive.Mean()
}

// newKahanTask builds the adversarial mean job. The sequence length depends
// on the float32 machine epsilon, so the demo always runs in float32.
func newKahanTask(publishEvery uint64, opts []job.Option) (orchestration.Task, *comparisonEstimator[float32]) {
	seq := sampling.NewAdversarial[float32]()
	est := &comparisonEstimator[float32]{}
	opts = append(opts, job.WithCallBudget(int64(seq.Len())), job.WithPublishEvery(publishEvery))
	j := job.NewWithEstimator[float32](kahanJobName, seq, est, opts...)
	return orchestration.Task{Handle: j, Exact: seq.ExactMean()}, est
}

// runKahan runs the adversarial mean demonstration and prints the naive and
// compensated means next to the exact one.
func (a *Application) runKahan(ctx context.Context, out io.Writer) int {
	if a.Config.Precision != config.PrecisionFloat32 {
		a.Logger.Debug("kahan mode runs in float32", logging.String("requested", a.Config.Precision))
	}
	cfg := a.Config
	cfg.Precision = config.PrecisionFloat32

	task, est := newKahanTask(cfg.PublishEvery, a.jobOptions())
	if cfg.TUI {
		return tui.Run(ctx, []orchestration.Task{task}, cfg, resolvedVersion())
	}

	if !cfg.Quiet {
		cli.PrintExecutionConfig(cfg, out)
		cli.PrintExecutionMode([]orchestration.Task{task}, out)
	}

	results := orchestration.ExecuteJobs(ctx, []orchestration.Task{task}, a.progressReporter(), cfg.PollInterval, a.progressOut(out))
	res := results[0]
	if res.Err != nil {
		return cli.CLIResultPresenter{}.HandleError(res.Err, res.Duration, out)
	}

	naive, compensated := float64(est.NaiveMean()), float64(est.Mean())
	if cfg.Quiet {
		fmt.Fprintf(out, "naive %.10f\nkahan %.10f\nexact %.10f\n", naive, compensated, task.Exact)
		return apperrors.ExitSuccess
	}
	cli.DisplayKahanComparison(cli.KahanComparison{
		Precision:   cfg.Precision,
		Count:       est.Count(),
		Naive:       naive,
		Compensated: compensated,
		Exact:       task.Exact,
		Duration:    res.Duration,
	}, out)
	a.printRunStats(ctx, out)
	return apperrors.ExitSuccess
}
