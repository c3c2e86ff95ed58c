package kahan

import "math"

// Stats tracks the compensated running mean of a stream together with its
// second central moment (Welford's recurrence), which is enough to report a
// standard error for the mean. The zero value is ready for use.
type Stats[T Float] struct {
	mean MeanEstimator[T]
	m2   T
}

// Update absorbs one sample.
func (s *Stats[T]) Update(x T) {
	delta := x - s.mean.Mean()
	s.mean.Update(x)
	s.m2 += delta * (x - s.mean.Mean())
}

// Count returns the number of samples absorbed.
func (s *Stats[T]) Count() uint64 { return s.mean.Count() }

// Mean returns the compensated running mean.
func (s *Stats[T]) Mean() T { return s.mean.Mean() }

// Variance returns the unbiased sample variance, or 0 with fewer than two
// samples.
func (s *Stats[T]) Variance() T {
	n := s.mean.Count()
	if n < 2 {
		return 0
	}
	return s.m2 / T(n-1)
}

// StdDev returns the sample standard deviation.
func (s *Stats[T]) StdDev() T {
	return T(math.Sqrt(float64(s.Variance())))
}

// StandardError returns sqrt(variance/n), the standard error of the mean.
// It is +Inf until two samples have been absorbed since no spread can be
// observed before then.
func (s *Stats[T]) StandardError() T {
	n := s.mean.Count()
	if n < 2 {
		return T(math.Inf(1))
	}
	return T(math.Sqrt(float64(s.Variance()) / float64(n)))
}

// Reset returns the statistics to the empty state.
func (s *Stats[T]) Reset() {
	*s = Stats[T]{}
}
