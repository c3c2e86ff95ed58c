//go:generate mockgen -source=options.go -destination=mocks/mock_recorder.go -package=mocks

package job

import (
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/kahanmc/internal/errors"
	"github.com/agbru/kahanmc/internal/logging"
	"github.com/agbru/kahanmc/internal/progress"
)

const (
	// DefaultMinCalls is the number of observations required before the
	// error target may stop a job. A standard error needs two samples.
	DefaultMinCalls = 2
	// DefaultPublishEvery publishes a snapshot after every step.
	DefaultPublishEvery = 1

	tracerName = "github.com/agbru/kahanmc/internal/job"
)

// Recorder receives lifecycle and throughput events, typically to export
// metrics. Implementations must be safe for concurrent use by many jobs.
type Recorder interface {
	JobStarted(name string)
	ObservationsAdded(name string, n uint64)
	EstimatePublished(name string, estimate, errorEstimate float64)
	JobFinished(name, state string, calls uint64, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) JobStarted(string)                                 {}
func (nopRecorder) ObservationsAdded(string, uint64)                  {}
func (nopRecorder) EstimatePublished(string, float64, float64)        {}
func (nopRecorder) JobFinished(string, string, uint64, time.Duration) {}

// Option configures a Job during construction.
type Option func(*settings)

type settings struct {
	targetError    float64
	hasTargetError bool
	callBudget     int64
	hasCallBudget  bool
	minCalls       uint64
	scale          float64
	publishEvery   uint64

	observers []progress.Observer
	recorder  Recorder
	logger    logging.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func defaultSettings() settings {
	return settings{
		minCalls:     DefaultMinCalls,
		scale:        1,
		publishEvery: DefaultPublishEvery,
		recorder:     nopRecorder{},
		logger:       logging.NopLogger{},
		tracer:       otel.Tracer(tracerName),
		now:          time.Now,
	}
}

// WithTargetError stops the job once the error estimate is at or below e.
func WithTargetError(e float64) Option {
	return func(s *settings) {
		s.targetError = e
		s.hasTargetError = true
	}
}

// WithCallBudget stops the job after n observations.
func WithCallBudget(n int64) Option {
	return func(s *settings) {
		s.callBudget = n
		s.hasCallBudget = true
	}
}

// WithMinCalls sets how many observations must be absorbed before the error
// target is consulted.
func WithMinCalls(n uint64) Option {
	return func(s *settings) { s.minCalls = n }
}

// WithScale multiplies the mean and its standard error, e.g. by the volume of
// the integration domain.
func WithScale(scale float64) Option {
	return func(s *settings) { s.scale = scale }
}

// WithPublishEvery publishes a snapshot every n steps instead of every step.
// The terminal snapshot is always published.
func WithPublishEvery(n uint64) Option {
	return func(s *settings) { s.publishEvery = n }
}

// WithObserver registers an observer notified after every publication.
func WithObserver(o progress.Observer) Option {
	return func(s *settings) { s.observers = append(s.observers, o) }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *settings) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l logging.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracerProvider sets the OpenTelemetry provider for the job span.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *settings) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithClock replaces time.Now, for deterministic elapsed-time tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// validate rejects configurations a job cannot run with.
func (s *settings) validate() error {
	if s.hasTargetError && (!(s.targetError > 0) || math.IsInf(s.targetError, 0)) {
		return apperrors.NewConfigError("target error must be a positive finite number, got %g", s.targetError)
	}
	if s.hasCallBudget && s.callBudget <= 0 {
		return apperrors.NewConfigError("call budget must be greater than zero, got %d", s.callBudget)
	}
	if !(s.scale > 0) || math.IsInf(s.scale, 0) {
		return apperrors.NewConfigError("scale must be a positive finite number, got %g", s.scale)
	}
	if s.publishEvery == 0 {
		return apperrors.NewConfigError("publish cadence must be at least one step")
	}
	return nil
}
