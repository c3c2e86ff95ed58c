package kahan

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestMeanEstimator_ZeroValue(t *testing.T) {
	t.Parallel()
	var e MeanEstimator[float64]
	if e.Mean() != 0 {
		t.Errorf("Mean() before any update = %v, want 0", e.Mean())
	}
	if e.Count() != 0 {
		t.Errorf("Count() before any update = %d, want 0", e.Count())
	}
}

func TestMeanEstimator_ConstantSequence(t *testing.T) {
	t.Parallel()
	var e MeanEstimator[float64]
	for i := 0; i < 4; i++ {
		e.Update(5)
		if e.Mean() != 5 {
			t.Fatalf("after %d updates Mean() = %v, want 5", i+1, e.Mean())
		}
	}
}

func TestMeanEstimator_KnownSequences(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"one to four", []float64{1, 2, 3, 4}, 2.5},
		{"single sample", []float64{-7.25}, -7.25},
		{"symmetric around zero", []float64{-3, 3, -1, 1}, 0},
		{"decimal fractions", []float64{0.1, 0.2, 0.3, 0.4}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var e MeanEstimator[float64]
			for _, x := range tt.samples {
				e.Update(x)
			}
			if math.Abs(e.Mean()-tt.want) > 1e-12 {
				t.Errorf("Mean() = %v, want %v", e.Mean(), tt.want)
			}
			if e.Count() != uint64(len(tt.samples)) {
				t.Errorf("Count() = %d, want %d", e.Count(), len(tt.samples))
			}
		})
	}
}

func TestMeanEstimator_CountTracksUpdates(t *testing.T) {
	t.Parallel()
	var e MeanEstimator[float32]
	for n := 0; n < 1000; n++ {
		if e.Count() != uint64(n) {
			t.Fatalf("Count() = %d after %d updates", e.Count(), n)
		}
		e.Update(float32(n))
	}
}

func TestMeanEstimator_NonFinitePropagates(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		sample float64
		check  func(float64) bool
	}{
		{"NaN poisons the mean", math.NaN(), math.IsNaN},
		{"+Inf", math.Inf(1), func(v float64) bool { return math.IsInf(v, 1) || math.IsNaN(v) }},
		{"-Inf", math.Inf(-1), func(v float64) bool { return math.IsInf(v, -1) || math.IsNaN(v) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var e MeanEstimator[float64]
			e.Update(1)
			e.Update(tt.sample)
			if !tt.check(e.Mean()) {
				t.Errorf("Mean() = %v after non-finite sample", e.Mean())
			}
			if e.Count() != 2 {
				t.Errorf("Count() = %d, want 2", e.Count())
			}
		})
	}
}

func TestMeanEstimator_Reset(t *testing.T) {
	t.Parallel()
	var e MeanEstimator[float64]
	e.Update(3)
	e.Update(4)
	e.Reset()
	if e.Mean() != 0 || e.Count() != 0 || e.Compensation() != 0 {
		t.Errorf("Reset left state mean=%v count=%d c=%v", e.Mean(), e.Count(), e.Compensation())
	}
}

func TestEpsilon(t *testing.T) {
	t.Parallel()
	if got := Epsilon[float32](); got != float32(math.Nextafter32(1, 2)-1) {
		t.Errorf("Epsilon[float32]() = %v", got)
	}
	if got := Epsilon[float64](); got != 2.220446049250313e-16 {
		t.Errorf("Epsilon[float64]() = %v", got)
	}

	type real32 float32
	if got := Epsilon[real32](); float32(got) != Epsilon[float32]() {
		t.Errorf("Epsilon for named float32 type = %v", got)
	}
	type real64 float64
	if got := Epsilon[real64](); float64(got) != Epsilon[float64]() {
		t.Errorf("Epsilon for named float64 type = %v", got)
	}

	// One epsilon above 1 is representable, half of it rounds back to 1.
	e32 := Epsilon[float32]()
	if one := float32(1); one+e32 == one || one+e32/2 != one {
		t.Errorf("Epsilon[float32]() = %v is not the gap above 1", e32)
	}
	e64 := Epsilon[float64]()
	if one := float64(1); one+e64 == one || one+e64/2 != one {
		t.Errorf("Epsilon[float64]() = %v is not the gap above 1", e64)
	}
}

// TestMeanEstimator_ErrorIndependentOfLength checks the accumulated error
// against an exact reference with one fixed tolerance for every length.
func TestMeanEstimator_ErrorIndependentOfLength(t *testing.T) {
	lengths := []int{1_000, 10_000, 100_000, 1_000_000}
	if testing.Short() {
		lengths = lengths[:3]
	}
	tolerance := 64 * Epsilon[float64]()

	for _, n := range lengths {
		rng := rand.New(rand.NewPCG(uint64(n), 42))
		samples := make([]float64, n)
		var e MeanEstimator[float64]
		for i := range samples {
			samples[i] = rng.Float64()
			e.Update(samples[i])
		}
		exact := ExactMean(samples)
		if diff := math.Abs(e.Mean() - exact); diff > tolerance {
			t.Errorf("n=%d: |mean-exact| = %g exceeds %g", n, diff, tolerance)
		}
	}
}

// TestMeanEstimator_AdversarialStream feeds 2s until 1/n falls below epsilon,
// then 1s. The naive recurrence freezes at 2 while the compensated one keeps
// moving towards the true mean.
func TestMeanEstimator_AdversarialStream(t *testing.T) {
	if testing.Short() {
		t.Skip("streams 2^25 samples")
	}
	eps := float64(Epsilon[float32]())
	switchAt := uint64(2 / eps)
	total := uint64(math.Ceil(4/eps)) - 1

	var naive NaiveMean[float32]
	var compensated MeanEstimator[float32]
	for k := uint64(1); k <= total; k++ {
		var x float32 = 1
		if k < switchAt {
			x = 2
		}
		naive.Update(x)
		compensated.Update(x)
	}

	twos := float64(switchAt - 1)
	exact := (2*twos + float64(total) - twos) / float64(total)

	if naive.Mean() != 2 {
		t.Errorf("naive mean = %v, expected it to stall at 2", naive.Mean())
	}
	if diff := math.Abs(float64(compensated.Mean()) - exact); diff > 1e-4 {
		t.Errorf("compensated mean = %v, exact = %v (diff %g)", compensated.Mean(), exact, diff)
	}
	if compensated.Count() != total {
		t.Errorf("Count() = %d, want %d", compensated.Count(), total)
	}
}

func TestNaiveMean_Basics(t *testing.T) {
	t.Parallel()
	var m NaiveMean[float64]
	for _, x := range []float64{1, 2, 3, 4} {
		m.Update(x)
	}
	if m.Mean() != 2.5 || m.Count() != 4 {
		t.Errorf("NaiveMean = %v (n=%d), want 2.5 (n=4)", m.Mean(), m.Count())
	}
}

func BenchmarkMeanEstimator_Update(b *testing.B) {
	var e MeanEstimator[float64]
	for i := 0; i < b.N; i++ {
		e.Update(float64(i & 1023))
	}
}

func BenchmarkNaiveMean_Update(b *testing.B) {
	var m NaiveMean[float64]
	for i := 0; i < b.N; i++ {
		m.Update(float64(i & 1023))
	}
}
