// Package kahan provides running estimators over streams of floating-point
// samples whose accumulated rounding error does not grow with the number of
// samples absorbed.
//
// The central type is [MeanEstimator], an incremental arithmetic mean that
// carries a Kahan-style compensation term across updates. [Stats] extends it
// with a second moment so that callers can derive a standard error, and
// [NaiveMean] keeps the uncompensated recurrence around as a baseline.
package kahan
