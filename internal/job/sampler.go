package job

import (
	"context"
	"errors"

	"github.com/agbru/kahanmc/internal/kahan"
)

// ErrExhausted is returned by a Sampler that has no further observations.
// The job treats it as a normal completion.
var ErrExhausted = errors.New("sampler exhausted")

// Sampler produces one observation per call. Any error other than
// ErrExhausted fails the job; the error is preserved in the result.
type Sampler[T kahan.Float] interface {
	Next(ctx context.Context) (T, error)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc[T kahan.Float] func(ctx context.Context) (T, error)

// Next calls f(ctx).
func (f SamplerFunc[T]) Next(ctx context.Context) (T, error) { return f(ctx) }

// Estimator is the running estimator a job feeds. kahan.Stats satisfies it.
type Estimator[T kahan.Float] interface {
	Update(x T)
	Mean() T
	StandardError() T
	Count() uint64
}
