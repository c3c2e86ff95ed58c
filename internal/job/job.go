package job

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/kahanmc/internal/errors"
	"github.com/agbru/kahanmc/internal/kahan"
	"github.com/agbru/kahanmc/internal/logging"
	"github.com/agbru/kahanmc/internal/progress"
)

// ErrNotStartable is returned by Start on a job that has already left the
// Created state, including one cancelled before it was started.
var ErrNotStartable = errors.New("job is not in the created state")

// Handle is the precision-independent surface of a job, implemented by every
// *Job[T].
type Handle interface {
	ID() string
	Name() string
	Start(ctx context.Context) error
	Cancel()
	Status() Status
	Done() <-chan struct{}
}

var (
	_ Handle = (*Job[float32])(nil)
	_ Handle = (*Job[float64])(nil)
)

// Job drives an estimator from a sampler on its own goroutine.
type Job[T kahan.Float] struct {
	id        string
	name      string
	sampler   Sampler[T]
	estimator Estimator[T]
	cfg       settings
	subject   *progress.Subject

	snapshot        atomic.Pointer[Snapshot[T]]
	cancelRequested atomic.Bool
	done            chan struct{}

	mu      sync.Mutex
	state   State
	started time.Time
	result  Result[T]
	stop    context.CancelFunc
}

// New creates a job in the Created state that feeds a compensated
// kahan.Stats estimator from sampler.
func New[T kahan.Float](name string, sampler Sampler[T], opts ...Option) *Job[T] {
	return NewWithEstimator[T](name, sampler, &kahan.Stats[T]{}, opts...)
}

// NewWithEstimator creates a job around a caller-supplied estimator. The job
// takes exclusive ownership of est: it must not be used elsewhere afterwards.
func NewWithEstimator[T kahan.Float](name string, sampler Sampler[T], est Estimator[T], opts ...Option) *Job[T] {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	j := &Job[T]{
		id:        uuid.NewString(),
		name:      name,
		sampler:   sampler,
		estimator: est,
		cfg:       cfg,
		subject:   progress.NewSubject(),
		done:      make(chan struct{}),
	}
	for _, o := range cfg.observers {
		j.subject.Register(o)
	}
	j.snapshot.Store(&Snapshot[T]{})
	return j
}

// ID returns the job's unique identifier.
func (j *Job[T]) ID() string { return j.id }

// Name returns the job's display name.
func (j *Job[T]) Name() string { return j.name }

// Observe registers an additional observer. Observers added after Start are
// not notified by the running job.
func (j *Job[T]) Observe(o progress.Observer) { j.subject.Register(o) }

// Done returns a channel closed on the terminal transition.
func (j *Job[T]) Done() <-chan struct{} { return j.done }

// Start moves the job to Running and launches its goroutine. An invalid
// configuration fails the job synchronously and is returned as a
// ConfigError; no goroutine is started in that case. Cancelling ctx has the
// same effect as Cancel.
func (j *Job[T]) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.state != Created {
		j.mu.Unlock()
		return ErrNotStartable
	}
	err := j.cfg.validate()
	if err == nil && j.sampler == nil {
		err = apperrors.NewConfigError("job %q has no sampler", j.name)
	}
	if err == nil && j.estimator == nil {
		err = apperrors.NewConfigError("job %q has no estimator", j.name)
	}
	if err != nil {
		j.started = j.cfg.now()
		final := j.finishLocked(Snapshot[T]{State: Failed}, err)
		j.mu.Unlock()
		j.cfg.logger.Error("job rejected", err, logging.String("job", j.name), logging.String("job_id", j.id))
		j.subject.Notify(j.update(final))
		close(j.done)
		return err
	}
	runCtx, stop := context.WithCancel(ctx)
	j.state = Running
	j.started = j.cfg.now()
	j.stop = stop
	j.snapshot.Store(&Snapshot[T]{State: Running})
	j.mu.Unlock()

	j.cfg.logger.Info("job started",
		logging.String("job", j.name),
		logging.String("job_id", j.id),
		logging.Float64("target_error", j.cfg.targetError),
		logging.Int("call_budget", int(j.cfg.callBudget)))
	j.cfg.recorder.JobStarted(j.name)

	go j.run(runCtx)
	return nil
}

// Cancel requests cancellation. It is idempotent. A Created job becomes
// Cancelled immediately. A Running job stops at its next step boundary, and
// the context passed to the sampler is cancelled so a blocked step can return
// early. A terminated job is left untouched.
func (j *Job[T]) Cancel() {
	j.mu.Lock()
	switch j.state {
	case Created:
		j.started = j.cfg.now()
		final := j.finishLocked(Snapshot[T]{State: Cancelled}, nil)
		j.mu.Unlock()
		j.cfg.logger.Info("job cancelled before start", logging.String("job", j.name), logging.String("job_id", j.id))
		j.subject.Notify(j.update(final))
		close(j.done)
		return
	case Running:
		j.cancelRequested.Store(true)
		j.stop()
	}
	j.mu.Unlock()
}

// Poll returns the latest published snapshot without blocking. Before Start
// it is the zero snapshot; after termination it is frozen. The terminal
// snapshot is taken at the step boundary where the job stopped, so with a
// publish cadence above one it can be ahead of the last periodic snapshot.
// A job that never ran (rejected or cancelled before Start) terminates with
// a snapshot carrying only its state.
func (j *Job[T]) Poll() Snapshot[T] {
	return *j.snapshot.Load()
}

// Status returns the latest snapshot as a precision-independent Status,
// including the failure reason once the job has failed.
func (j *Job[T]) Status() Status {
	s := j.Poll()
	st := Status{
		ID:             j.id,
		Name:           j.name,
		State:          s.State,
		Progress:       s.Progress,
		Estimate:       float64(s.Estimate),
		ErrorEstimate:  float64(s.ErrorEstimate),
		Calls:          s.Calls,
		Elapsed:        s.Elapsed,
		Remaining:      s.Remaining,
		RemainingKnown: s.RemainingKnown,
	}
	if s.State == Failed {
		j.mu.Lock()
		st.Err = j.result.Err
		j.mu.Unlock()
	}
	return st
}

// AwaitResult blocks for at most timeout waiting for the job to terminate.
// If the timeout elapses first the returned Result has a non-terminal State
// (see Result.StillRunning). A timeout <= 0 checks without blocking.
func (j *Job[T]) AwaitResult(timeout time.Duration) Result[T] {
	if timeout <= 0 {
		select {
		case <-j.done:
			return j.terminalResult()
		default:
			return j.pendingResult()
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-j.done:
		return j.terminalResult()
	case <-timer.C:
		return j.pendingResult()
	}
}

// Wait blocks until the job terminates or ctx is done. It is the unbounded
// form of AwaitResult; bound it with a context deadline if needed.
func (j *Job[T]) Wait(ctx context.Context) Result[T] {
	select {
	case <-j.done:
		return j.terminalResult()
	case <-ctx.Done():
		return j.pendingResult()
	}
}

func (j *Job[T]) terminalResult() Result[T] {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

func (j *Job[T]) pendingResult() Result[T] {
	j.mu.Lock()
	state := j.state
	j.mu.Unlock()
	if state.Terminal() {
		// Terminated between the select and the lock.
		<-j.done
		return j.terminalResult()
	}
	s := j.Poll()
	return Result[T]{State: state, Calls: s.Calls, Duration: s.Elapsed}
}

// run is the background loop. It is the only goroutine touching the
// estimator while the job is Running.
func (j *Job[T]) run(ctx context.Context) {
	ctx, span := j.cfg.tracer.Start(ctx, "job.run", trace.WithAttributes(
		attribute.String("job.id", j.id),
		attribute.String("job.name", j.name),
	))
	defer span.End()
	defer j.stop()

	notify := j.subject.Freeze()
	var unreported uint64
	state, err := Running, error(nil)

	for state == Running {
		if j.cancelRequested.Load() || ctx.Err() != nil {
			state = Cancelled
			break
		}

		x, stepErr := j.sampler.Next(ctx)
		if stepErr != nil {
			switch {
			case errors.Is(stepErr, ErrExhausted):
				state = Completed
			case apperrors.IsContextError(stepErr) && (ctx.Err() != nil || j.cancelRequested.Load()):
				state = Cancelled
			default:
				state = Failed
				err = apperrors.EstimationError{Job: j.name, Calls: j.estimator.Count(), Cause: stepErr}
			}
			break
		}

		j.estimator.Update(x)
		unreported++
		calls := j.estimator.Count()

		if j.stoppingCriterionMet(calls) {
			state = Completed
			break
		}
		if calls%j.cfg.publishEvery == 0 {
			s := j.buildSnapshot(Running)
			j.snapshot.Store(&s)
			j.cfg.recorder.ObservationsAdded(j.name, unreported)
			j.cfg.recorder.EstimatePublished(j.name, float64(s.Estimate), float64(s.ErrorEstimate))
			unreported = 0
			notify(j.update(s))
		}
	}
	if unreported > 0 {
		j.cfg.recorder.ObservationsAdded(j.name, unreported)
	}

	j.mu.Lock()
	final := j.finishLocked(j.buildSnapshot(state), err)
	j.mu.Unlock()
	notify(j.update(final))

	span.SetAttributes(
		attribute.String("job.state", state.String()),
		attribute.Int64("job.calls", int64(final.Calls)),
		attribute.Float64("job.estimate", float64(final.Estimate)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	fields := []logging.Field{
		logging.String("job", j.name),
		logging.String("job_id", j.id),
		logging.String("state", state.String()),
		logging.Uint64("calls", final.Calls),
		logging.Float64("estimate", float64(final.Estimate)),
		logging.Float64("error_estimate", float64(final.ErrorEstimate)),
		logging.Duration("elapsed", final.Elapsed),
	}
	if err != nil {
		j.cfg.logger.Error("job failed", err, fields...)
	} else {
		j.cfg.logger.Info("job finished", fields...)
	}
	j.cfg.recorder.JobFinished(j.name, state.String(), final.Calls, final.Elapsed)
	close(j.done)
}

// stoppingCriterionMet reports whether the call budget or the error target
// has been reached after calls observations.
func (j *Job[T]) stoppingCriterionMet(calls uint64) bool {
	if j.cfg.hasCallBudget && calls >= uint64(j.cfg.callBudget) {
		return true
	}
	if j.cfg.hasTargetError && calls >= j.cfg.minCalls {
		return j.errorEstimate() <= j.cfg.targetError
	}
	return false
}

func (j *Job[T]) errorEstimate() float64 {
	return j.cfg.scale * float64(j.estimator.StandardError())
}

// progressFraction combines the budget fraction calls/budget with the error
// ratio (target/error)^2, which tracks the 1/sqrt(n) decay of a standard
// error. The larger of the two wins since either criterion stops the job.
func (j *Job[T]) progressFraction(calls uint64, errEst float64) float64 {
	var p float64
	if j.cfg.hasCallBudget {
		p = float64(calls) / float64(j.cfg.callBudget)
	}
	if j.cfg.hasTargetError && calls >= j.cfg.minCalls && !math.IsNaN(errEst) {
		var r float64
		switch {
		case errEst <= 0:
			r = 1
		case !math.IsInf(errEst, 0):
			r = j.cfg.targetError / errEst
			r *= r
		}
		p = math.Max(p, r)
	}
	return clamp01(p)
}

// buildSnapshot reads the estimator; it must run on the goroutine that owns it.
func (j *Job[T]) buildSnapshot(state State) Snapshot[T] {
	if j.estimator == nil {
		return Snapshot[T]{State: state, Elapsed: j.cfg.now().Sub(j.started)}
	}
	calls := j.estimator.Count()
	errEst := j.errorEstimate()
	elapsed := j.cfg.now().Sub(j.started)
	p := j.progressFraction(calls, errEst)
	if state == Completed {
		p = 1
	}
	s := Snapshot[T]{
		State:         state,
		Progress:      p,
		Estimate:      T(j.cfg.scale) * j.estimator.Mean(),
		ErrorEstimate: T(errEst),
		Calls:         calls,
		Elapsed:       elapsed,
	}
	if state == Running || state == Completed {
		s.Remaining, s.RemainingKnown = projectRemaining(elapsed, p)
	}
	return s
}

// finishLocked performs the single terminal transition to final.State and
// publishes final. Jobs that never ran pass an empty snapshot. j.mu must be
// held. The caller closes j.done once it has reported the transition.
func (j *Job[T]) finishLocked(final Snapshot[T], err error) Snapshot[T] {
	if j.state.Terminal() {
		return j.Poll()
	}
	state := final.State
	j.state = state
	j.result = Result[T]{
		State:    state,
		Calls:    final.Calls,
		Duration: final.Elapsed,
		Err:      err,
	}
	if state == Completed {
		j.result.Value = final.Estimate
		j.result.ErrorEstimate = final.ErrorEstimate
	}
	j.snapshot.Store(&final)
	return final
}

func (j *Job[T]) update(s Snapshot[T]) progress.Update {
	return progress.Update{
		JobID:         j.id,
		Job:           j.name,
		Progress:      s.Progress,
		Estimate:      float64(s.Estimate),
		ErrorEstimate: float64(s.ErrorEstimate),
		Calls:         s.Calls,
		Done:          s.State.Terminal(),
	}
}
