package fuzzy

import (
	"fmt"
	"math"
)

// Membership function names accepted in a model file.
const (
	Triangular  = "trimf"
	Trapezoidal = "trapmf"
	Gaussian    = "gaussmf"
	Bell        = "gbellmf"
	Sigmoid     = "sigmf"
)

// membershipFunc maps a crisp value to a degree of membership in [0, 1].
type membershipFunc func(x float64) float64

// paramCount is the number of parameters each membership function takes.
var paramCount = map[string]int{
	Triangular:  3,
	Trapezoidal: 4,
	Gaussian:    2,
	Bell:        3,
	Sigmoid:     2,
}

// newMembership builds the membership function for a term, checking the
// parameters for the given type.
func newMembership(kind string, p []float64) (membershipFunc, error) {
	want, ok := paramCount[kind]
	if !ok {
		return nil, fmt.Errorf("unknown membership function %q", kind)
	}
	if len(p) != want {
		return nil, fmt.Errorf("%s takes %d parameters, got %d", kind, want, len(p))
	}
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%s parameters must be finite", kind)
		}
	}

	switch kind {
	case Triangular:
		a, b, c := p[0], p[1], p[2]
		if a > b || b > c {
			return nil, fmt.Errorf("trimf requires a <= b <= c, got %v", p)
		}
		return func(x float64) float64 { return trimf(x, a, b, c) }, nil
	case Trapezoidal:
		a, b, c, d := p[0], p[1], p[2], p[3]
		if a > b || b > c || c > d {
			return nil, fmt.Errorf("trapmf requires a <= b <= c <= d, got %v", p)
		}
		return func(x float64) float64 { return trapmf(x, a, b, c, d) }, nil
	case Gaussian:
		mean, sigma := p[0], p[1]
		if sigma <= 0 {
			return nil, fmt.Errorf("gaussmf requires sigma > 0, got %v", sigma)
		}
		return func(x float64) float64 { return gaussmf(x, mean, sigma) }, nil
	case Bell:
		a, b, c := p[0], p[1], p[2]
		if a == 0 {
			return nil, fmt.Errorf("gbellmf requires a non-zero width")
		}
		return func(x float64) float64 { return gbellmf(x, a, b, c) }, nil
	default: // Sigmoid
		center, slope := p[0], p[1]
		return func(x float64) float64 { return sigmf(x, center, slope) }, nil
	}
}

// trimf is the triangle with feet at a and c and peak at b.
// a == b or b == c gives a shoulder.
func trimf(x, a, b, c float64) float64 {
	switch {
	case x == b:
		return 1
	case x <= a || x >= c:
		return 0
	case x < b:
		return (x - a) / (b - a)
	default:
		return (c - x) / (c - b)
	}
}

// trapmf is 1 on [b, c] and falls linearly to 0 at a and d.
func trapmf(x, a, b, c, d float64) float64 {
	switch {
	case x >= b && x <= c:
		return 1
	case x <= a || x >= d:
		return 0
	case x < b:
		return (x - a) / (b - a)
	default:
		return (d - x) / (d - c)
	}
}

func gaussmf(x, mean, sigma float64) float64 {
	d := x - mean
	return math.Exp(-(d * d) / (2 * sigma * sigma))
}

// gbellmf is the generalized bell 1 / (1 + |(x-c)/a|^(2b)).
func gbellmf(x, a, b, c float64) float64 {
	return 1 / (1 + math.Pow(math.Abs((x-c)/a), 2*b))
}

// sigmf is 1 / (1 + exp(-slope*(x-center))). A negative slope opens to the left.
func sigmf(x, center, slope float64) float64 {
	return 1 / (1 + math.Exp(-slope*(x-center)))
}
