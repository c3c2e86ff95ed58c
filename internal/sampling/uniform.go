package sampling

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/agbru/kahanmc/internal/kahan"
)

// ErrNonFinite is wrapped by the step error returned when an integrand
// evaluates to NaN or an infinity.
var ErrNonFinite = errors.New("integrand is not finite")

// UniformSampler draws points uniformly from an integrand's box and returns
// the integrand's value at each point. It is not safe for concurrent use; a
// job calls it from a single goroutine.
type UniformSampler[T kahan.Float] struct {
	integrand Integrand[T]
	rng       *rand.Rand
	point     []T
}

// NewUniformSampler creates a sampler whose stream is fully determined by
// seed.
func NewUniformSampler[T kahan.Float](ig Integrand[T], seed uint64) *UniformSampler[T] {
	return &UniformSampler[T]{
		integrand: ig,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		point:     make([]T, ig.Dim()),
	}
}

// Integrand returns the integrand being sampled.
func (s *UniformSampler[T]) Integrand() Integrand[T] { return s.integrand }

// Next evaluates the integrand at a fresh random point.
func (s *UniformSampler[T]) Next(context.Context) (T, error) {
	for i, b := range s.integrand.Bounds {
		s.point[i] = T(b.Lo + (b.Hi-b.Lo)*s.rng.Float64())
	}
	v := s.integrand.F(s.point)
	if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
		return v, fmt.Errorf("%w: %s(%v) = %v", ErrNonFinite, s.integrand.Name, s.point, v)
	}
	return v, nil
}
