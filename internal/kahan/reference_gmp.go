//go:build gmp

package kahan

import (
	"math/big"

	"github.com/ncw/gmp"
)

// gmpSum accumulates through libgmp, which is markedly faster than math/big
// on the million-sample reference sequences used by the accuracy tests.
type gmpSum struct {
	total *gmp.Int
	term  *gmp.Int
}

func newExactSum() exactSum {
	return &gmpSum{total: gmp.NewInt(0), term: gmp.NewInt(0)}
}

func (s *gmpSum) addShifted(mantissa int64, shift uint) {
	s.term.SetInt64(mantissa)
	s.term.Lsh(s.term, shift)
	s.total.Add(s.total, s.term)
}

func (s *gmpSum) bigInt() *big.Int {
	out, _ := new(big.Int).SetString(s.total.String(), 10)
	return out
}
