package kahan

import "math"

// Float is the set of floating-point types the estimators are defined over.
// Any type whose underlying type is float32 or float64 qualifies, so the
// estimators follow IEEE-754 semantics (ordering, NaN propagation, epsilon)
// of the instantiated precision.
type Float interface {
	~float32 | ~float64
}

// Epsilon returns the machine epsilon of T: the distance between 1 and the
// next representable value. T has single precision when adding 1 to 2^24
// is lost to rounding.
func Epsilon[T Float]() T {
	var x T = 1 << 24
	if T(x+1) == x {
		return T(math.Nextafter32(1, 2) - 1)
	}
	return T(math.Nextafter(1, 2) - 1)
}

// MeanEstimator maintains the arithmetic mean of a stream of samples without
// forming their sum. Each update adds the naive increment (x-mean)/n plus the
// low-order bits lost by the previous addition, so the error stays within a
// small multiple of machine epsilon regardless of the stream length.
//
// The zero value is an empty estimator ready for use. A MeanEstimator is not
// safe for concurrent use.
type MeanEstimator[T Float] struct {
	count        uint64
	mean         T
	compensation T
}

// Update absorbs one sample. NaN and infinite samples are accepted and
// propagate through the mean per the usual floating-point rules.
func (e *MeanEstimator[T]) Update(x T) {
	e.count++
	delta := (x - e.mean) / T(e.count)
	y := delta + e.compensation
	next := e.mean + y
	e.compensation = (e.mean - next) + y
	e.mean = next
}

// Mean returns the current running mean, or 0 before the first update.
func (e *MeanEstimator[T]) Mean() T {
	return e.mean
}

// Count returns the number of samples absorbed so far.
func (e *MeanEstimator[T]) Count() uint64 {
	return e.count
}

// Compensation returns the pending rounding correction that will be folded
// into the next update.
func (e *MeanEstimator[T]) Compensation() T {
	return e.compensation
}

// Reset returns the estimator to its empty state.
func (e *MeanEstimator[T]) Reset() {
	*e = MeanEstimator[T]{}
}

// NaiveMean is the uncompensated recurrence mean += (x-mean)/n. Once 1/n
// drops below epsilon relative to the mean, increments round away and the
// mean freezes. It exists as a baseline for MeanEstimator.
type NaiveMean[T Float] struct {
	count uint64
	mean  T
}

// Update absorbs one sample.
func (m *NaiveMean[T]) Update(x T) {
	m.count++
	m.mean += (x - m.mean) / T(m.count)
}

// Mean returns the current running mean.
func (m *NaiveMean[T]) Mean() T { return m.mean }

// Count returns the number of samples absorbed so far.
func (m *NaiveMean[T]) Count() uint64 { return m.count }
