//go:build !gmp

package kahan

import "math/big"

type bigSum struct {
	total *big.Int
	term  *big.Int
}

func newExactSum() exactSum {
	return &bigSum{total: new(big.Int), term: new(big.Int)}
}

func (s *bigSum) addShifted(mantissa int64, shift uint) {
	s.term.SetInt64(mantissa)
	s.term.Lsh(s.term, shift)
	s.total.Add(s.total, s.term)
}

func (s *bigSum) bigInt() *big.Int {
	return s.total
}
