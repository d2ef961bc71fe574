package fuzzy

import (
	"errors"
	"fmt"
	"math"
)

// errNoRuleFired means the aggregated output set is empty: every rule had zero
// firing strength for the given inputs.
var errNoRuleFired = errors.New("no rule fired for the given inputs")

// System is a compiled Model. Output membership curves are sampled once at
// compile time; Compute only evaluates rules and aggregates.
type System struct {
	inputs []compiledInput
	rules  []compiledRule

	outX      []float64   // output universe sample points
	outCurves [][]float64 // one sampled curve per output term
	defuzz    string
	clip      bool
}

type compiledInput struct {
	min, max float64
	terms    []membershipFunc
}

type compiledRule struct {
	clauses []compiledClause
	or      bool
	weight  float64
	then    int // index into System.outCurves
}

type compiledClause struct {
	input int
	term  int
	not   bool
}

// Compile turns a validated Model into a System.
func Compile(m *Model) (*System, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	s := &System{
		defuzz: m.Output.Defuzzify,
		clip:   m.ClipToBounds == nil || *m.ClipToBounds,
	}
	if s.defuzz == "" {
		s.defuzz = Centroid
	}

	inputIndex := make(map[string]int, len(m.Inputs))
	termIndex := make([]map[string]int, len(m.Inputs))
	for i, in := range m.Inputs {
		ci := compiledInput{min: in.Universe.Min, max: in.Universe.Max}
		termIndex[i] = make(map[string]int, len(in.Terms))
		for j, t := range in.Terms {
			mf, err := newMembership(t.Type, t.Params)
			if err != nil {
				return nil, fmt.Errorf("%w: input %q term %q: %v", ErrInvalidModel, in.Name, t.Name, err)
			}
			ci.terms = append(ci.terms, mf)
			termIndex[i][t.Name] = j
		}
		inputIndex[in.Name] = i
		s.inputs = append(s.inputs, ci)
	}

	s.outX = m.Output.Universe.points()
	outIndex := make(map[string]int, len(m.Output.Terms))
	for j, t := range m.Output.Terms {
		mf, err := newMembership(t.Type, t.Params)
		if err != nil {
			return nil, fmt.Errorf("%w: output term %q: %v", ErrInvalidModel, t.Name, err)
		}
		curve := make([]float64, len(s.outX))
		for k, x := range s.outX {
			curve[k] = mf(x)
		}
		s.outCurves = append(s.outCurves, curve)
		outIndex[t.Name] = j
	}

	for _, r := range m.Rules {
		cr := compiledRule{
			or:     r.Operator == "or",
			weight: 1,
			then:   outIndex[r.Then],
		}
		if r.Weight != nil {
			cr.weight = *r.Weight
		}
		for _, c := range r.If {
			i := inputIndex[c.Variable]
			cr.clauses = append(cr.clauses, compiledClause{input: i, term: termIndex[i][c.Term], not: c.Not})
		}
		s.rules = append(s.rules, cr)
	}

	return s, nil
}

// Compute runs Mamdani inference on one crisp value per input, in model order.
//
//	AND = min, OR = max, NOT = 1 - mu
//	implication = min (clip the consequent at the firing strength)
//	aggregation = max over all rules
func (s *System) Compute(values []float64) (float64, error) {
	if len(values) != len(s.inputs) {
		return 0, fmt.Errorf("fuzzy: expected %d inputs, got %d", len(s.inputs), len(values))
	}

	crisp := make([]float64, len(values))
	for i, v := range values {
		if s.clip {
			v = math.Max(s.inputs[i].min, math.Min(s.inputs[i].max, v))
		}
		crisp[i] = v
	}

	// Strongest firing per output term. Clipping a curve at several heights and
	// taking the max is the same as clipping once at the highest.
	strength := make([]float64, len(s.outCurves))
	for _, r := range s.rules {
		f := r.fire(s.inputs, crisp)
		if f > strength[r.then] {
			strength[r.then] = f
		}
	}

	agg := make([]float64, len(s.outX))
	for t, curve := range s.outCurves {
		h := strength[t]
		if h == 0 {
			continue
		}
		for k, mu := range curve {
			agg[k] = math.Max(agg[k], math.Min(h, mu))
		}
	}

	return defuzzify(s.defuzz, s.outX, agg)
}

func (r compiledRule) fire(inputs []compiledInput, crisp []float64) float64 {
	var f float64
	for n, c := range r.clauses {
		mu := inputs[c.input].terms[c.term](crisp[c.input])
		if c.not {
			mu = 1 - mu
		}
		switch {
		case n == 0:
			f = mu
		case r.or:
			f = math.Max(f, mu)
		default:
			f = math.Min(f, mu)
		}
	}
	return f * r.weight
}

// defuzzify reduces the aggregated set to one crisp value.
func defuzzify(method string, xs, mu []float64) (float64, error) {
	var total, peak float64
	for _, m := range mu {
		total += m
		peak = math.Max(peak, m)
	}
	if total == 0 {
		return 0, errNoRuleFired
	}

	switch method {
	case Bisector:
		var acc float64
		for k, m := range mu {
			acc += m
			if acc >= total/2 {
				return xs[k], nil
			}
		}
		return xs[len(xs)-1], nil
	case MeanMax, MinMax, MaxMax:
		var first, last, sum float64
		count := 0
		for k, m := range mu {
			if m != peak {
				continue
			}
			if count == 0 {
				first = xs[k]
			}
			last = xs[k]
			sum += xs[k]
			count++
		}
		switch method {
		case MinMax:
			return first, nil
		case MaxMax:
			return last, nil
		}
		return sum / float64(count), nil
	default: // Centroid
		var moment float64
		for k, m := range mu {
			moment += xs[k] * m
		}
		return moment / total, nil
	}
}
