package kahan

import (
	"math"
	"math/big"
)

// exactShift scales every float64 into an integer: the smallest subnormal,
// normalised by math.Frexp to a 53-bit mantissa, has exponent -1126.
const exactShift = 1130

// exactSum accumulates scaled integer mantissas without rounding.
type exactSum interface {
	addShifted(mantissa int64, shift uint)
	bigInt() *big.Int
}

// ExactMean returns the arithmetic mean of xs computed exactly with
// arbitrary-precision integers and rounded once to float64. It is the
// reference the running estimators are measured against. The result is NaN
// for an empty slice or when any sample is not finite.
func ExactMean[T Float](xs []T) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	acc := newExactSum()
	for _, x := range xs {
		v := float64(x)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return math.NaN()
		}
		if v == 0 {
			continue
		}
		frac, exp := math.Frexp(v)
		mantissa := int64(frac * (1 << 53))
		acc.addShifted(mantissa, uint(exp-53+exactShift))
	}

	sum := new(big.Float).SetPrec(256).SetInt(acc.bigInt())
	n := new(big.Float).SetPrec(256).SetUint64(uint64(len(xs)))
	mean := new(big.Float).SetPrec(256).Quo(sum, n)
	mean.SetMantExp(mean, -exactShift)
	f, _ := mean.Float64()
	return f
}
