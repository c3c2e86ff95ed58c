// Package job runs an iterative estimation on a background goroutine and lets
// callers watch it without blocking.
//
// A [Job] owns one estimator and one [Sampler]. After [Job.Start] its
// goroutine repeatedly draws an observation, feeds the estimator and
// publishes an immutable [Snapshot] through an atomic pointer, so [Job.Poll]
// never blocks and never sees fields from two different steps. The job stops
// when its error target or call budget is met, when the sampler is exhausted
// or fails, or when it is cancelled. Cancellation is cooperative: the flag is
// checked between steps, never inside an estimator update.
//
// Terminal outcomes are reported by [Job.AwaitResult] and [Job.Wait], which
// block on a channel closed exactly once on the terminal transition.
//
// The time-remaining figure in a snapshot is a linear extrapolation from the
// elapsed time and the progress fraction. It is an estimate, not a guarantee.
package job
