package fuzzy

import (
	"errors"
	"fmt"
	"math"

	"github.com/sakif/ability-api/internal/apperror"
)

// Input describes one ability input a Predictor expects.
type Input struct {
	Name  string  `json:"name"`
	Field string  `json:"field"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Predictor averages each input's samples and runs the compiled system.
type Predictor struct {
	name   string
	output string
	inputs []Input
	system *System
}

// NewPredictor compiles m into a Predictor.
func NewPredictor(m *Model) (*Predictor, error) {
	sys, err := Compile(m)
	if err != nil {
		return nil, err
	}

	p := &Predictor{
		name:   m.Name,
		output: m.Output.Name,
		system: sys,
	}
	for _, in := range m.Inputs {
		p.inputs = append(p.inputs, Input{
			Name:  in.Name,
			Field: in.Field,
			Min:   in.Universe.Min,
			Max:   in.Universe.Max,
		})
	}
	return p, nil
}

// LoadPredictor reads the model file at path and compiles it.
func LoadPredictor(path string) (*Predictor, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewPredictor(m)
}

// Name is the model's name.
func (p *Predictor) Name() string { return p.name }

// Output is the name of the output variable, e.g. "Percentage".
func (p *Predictor) Output() string { return p.output }

// Inputs returns the expected inputs in model order. The slice is a copy.
func (p *Predictor) Inputs() []Input {
	out := make([]Input, len(p.inputs))
	copy(out, p.inputs)
	return out
}

// Predict computes the crisp output from samples keyed by request field.
//
// Every model input must be present with at least one finite value. Fields the
// model does not know are ignored. The mean of each sample list is fed to the
// system; identical samples always give the identical result.
func (p *Predictor) Predict(samples map[string][]float64) (float64, error) {
	means := make([]float64, len(p.inputs))
	for i, in := range p.inputs {
		values, ok := samples[in.Field]
		if !ok {
			return 0, apperror.ValidationFailed(in.Field, fmt.Sprintf("%s is required", in.Field))
		}
		if len(values) == 0 {
			return 0, apperror.EmptyInput(in.Field)
		}
		m, err := mean(values)
		if err != nil {
			return 0, apperror.ValidationFailed(in.Field, fmt.Sprintf("%s %v", in.Field, err))
		}
		means[i] = m
	}

	out, err := p.system.Compute(means)
	if err != nil {
		if errors.Is(err, errNoRuleFired) {
			return 0, apperror.PredictionUnavailable("prediction unavailable: " + err.Error())
		}
		return 0, err
	}
	return out, nil
}

// mean is the arithmetic mean of a non-empty slice.
// When the plain sum overflows, the terms are divided before summing, so any
// finite set of samples has a finite mean.
func mean(values []float64) (float64, error) {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errors.New("must contain only finite numbers")
		}
		sum += v
	}
	if !math.IsInf(sum, 0) {
		return sum / n, nil
	}

	var m float64
	for _, v := range values {
		m += v / n
	}
	return m, nil
}
