package orchestration

import (
	"hash/fnv"

	"github.com/agbru/kahanmc/internal/config"
	"github.com/agbru/kahanmc/internal/job"
	"github.com/agbru/kahanmc/internal/kahan"
	"github.com/agbru/kahanmc/internal/sampling"
)

// BuildTasks creates one integration job per integrand selected by cfg, in
// the precision cfg asks for. extra options (logger, recorder, observers) are
// applied after the ones derived from cfg.
func BuildTasks(cfg config.AppConfig, extra ...job.Option) ([]Task, error) {
	if cfg.Precision == config.PrecisionFloat32 {
		return buildIntegrationTasks[float32](cfg, extra)
	}
	return buildIntegrationTasks[float64](cfg, extra)
}

func buildIntegrationTasks[T kahan.Float](cfg config.AppConfig, extra []job.Option) ([]Task, error) {
	names := cfg.Integrands()
	tasks := make([]Task, 0, len(names))
	for _, name := range names {
		ig, err := sampling.Lookup[T](name)
		if err != nil {
			return nil, err
		}
		goal := ig.Goal
		if cfg.TargetError > 0 {
			goal = cfg.TargetError
		}
		opts := []job.Option{
			job.WithTargetError(goal),
			job.WithCallBudget(cfg.MaxCalls),
			job.WithMinCalls(cfg.MinCalls),
			job.WithScale(ig.Volume()),
			job.WithPublishEvery(cfg.PublishEvery),
		}
		opts = append(opts, extra...)
		sampler := sampling.NewUniformSampler(ig, SeedFor(cfg.Seed, name))
		tasks = append(tasks, Task{
			Handle: job.New[T](ig.Name, sampler, opts...),
			Exact:  ig.Exact,
			Goal:   goal,
		})
	}
	return tasks, nil
}

// SeedFor derives the stream seed of one integrand, so that its samples do
// not depend on which other integrands run alongside it.
func SeedFor(seed uint64, name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return seed ^ h.Sum64()
}
