package sampling

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/agbru/kahanmc/internal/kahan"
)

// Bound is a closed interval of one integration axis.
type Bound struct {
	Lo, Hi float64
}

// Integrand is a function over a box together with its known integral.
type Integrand[T kahan.Float] struct {
	Name        string
	Description string
	Bounds      []Bound
	// Exact is the closed-form value of the integral.
	Exact float64
	// Goal is the error target the integrand is usually run with.
	Goal float64
	F    func(x []T) T
}

// Volume returns the measure of the integration box. The mean of F over
// uniform points times Volume is the integral.
func (ig Integrand[T]) Volume() float64 {
	v := 1.0
	for _, b := range ig.Bounds {
		v *= b.Hi - b.Lo
	}
	return v
}

// Dim returns the number of axes.
func (ig Integrand[T]) Dim() int { return len(ig.Bounds) }

const (
	Pi         = "pi"
	E2         = "e2"
	CloseToAvg = "close-to-avg"
)

var unitSquare = []Bound{{0, 1}, {0, 1}}

// catalog builds the integrand registry for one precision.
func catalog[T kahan.Float]() map[string]Integrand[T] {
	eps := kahan.Epsilon[T]()
	return map[string]Integrand[T]{
		Pi: {
			Name:        Pi,
			Description: "4 times the indicator of the unit quarter disc",
			Bounds:      unitSquare,
			Exact:       math.Pi,
			Goal:        1e-5,
			F: func(x []T) T {
				if x[0]*x[0]+x[1]*x[1] <= 1 {
					return 4
				}
				return 0
			},
		},
		E2: {
			Name:        E2,
			Description: "Bailey's box integral E2 over the unit square",
			Bounds:      unitSquare,
			Exact:       0.86900905527453446388,
			Goal:        1e-6,
			F: func(x []T) T {
				d := x[0] - x[1]
				r := sqrt(x[0]*x[0] + x[1]*x[1])
				return (2*r + sqrt(1+d*d)) / 3
			},
		},
		CloseToAvg: {
			Name:        CloseToAvg,
			Description: "100 machine epsilons times sin(20 pi x), averaging to zero",
			Bounds:      []Bound{{0, 1}},
			Exact:       0,
			Goal:        1e-10,
			F: func(x []T) T {
				return 100 * eps * T(math.Sin(20*math.Pi*float64(x[0])))
			},
		},
	}
}

func sqrt[T kahan.Float](x T) T {
	return T(math.Sqrt(float64(x)))
}

// Names lists the catalog entries in sorted order.
func Names() []string {
	names := make([]string, 0, 3)
	for name := range catalog[float64]() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named integrand evaluated in precision T.
func Lookup[T kahan.Float](name string) (Integrand[T], error) {
	ig, ok := catalog[T]()[name]
	if !ok {
		return Integrand[T]{}, fmt.Errorf("unknown integrand %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ig, nil
}
