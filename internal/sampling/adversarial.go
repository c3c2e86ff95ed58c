package sampling

import (
	"context"
	"math"

	"github.com/agbru/kahanmc/internal/job"
	"github.com/agbru/kahanmc/internal/kahan"
)

// Adversarial yields the sequence 2, 2, ..., 1, 1, ... where the 2s fill the
// indices k < 2/eps and the 1s run up to ceil(4/eps), eps being the machine
// epsilon of T. An uncompensated running mean in T stalls at 2 because every
// later increment (1-2)/k rounds away; a compensated one reaches the true
// mean of about 1.5.
type Adversarial[T kahan.Float] struct {
	k        uint64
	switchAt float64
	total    uint64
}

// NewAdversarial creates the sequence for precision T.
func NewAdversarial[T kahan.Float]() *Adversarial[T] {
	eps := float64(kahan.Epsilon[T]())
	return &Adversarial[T]{
		switchAt: 2 / eps,
		total:    uint64(math.Ceil(4/eps)) - 1,
	}
}

// Len returns the number of values in the sequence.
func (a *Adversarial[T]) Len() uint64 { return a.total }

// Next returns the next value, or job.ErrExhausted after Len values.
func (a *Adversarial[T]) Next(context.Context) (T, error) {
	if a.k >= a.total {
		return 0, job.ErrExhausted
	}
	a.k++
	if float64(a.k) < a.switchAt {
		return 2, nil
	}
	return 1, nil
}

// ExactMean returns the exact mean of the whole sequence, rounded once to
// float64.
func (a *Adversarial[T]) ExactMean() float64 {
	twos := uint64(math.Ceil(a.switchAt)) - 1
	if twos > a.total {
		twos = a.total
	}
	ones := a.total - twos
	return (2*float64(twos) + float64(ones)) / float64(a.total)
}
