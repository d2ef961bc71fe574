// Package fuzzy loads a Mamdani fuzzy control system from a JSON model file and
// turns lists of ability observations into one crisp percentage.
//
// THE MODEL FILE:
// A model names its input variables (each bound to a request field such as
// "counting_input"), one output variable, and the rule base. The file is
// checked against an embedded JSON Schema first and then semantically, so a
// bad file stops the process at startup instead of failing requests later.
//
// After Load returns, a *Predictor is immutable and safe for concurrent use.
package fuzzy

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidModel is wrapped by every error caused by the content of a model file.
var ErrInvalidModel = errors.New("invalid fuzzy model")

// Defuzzification methods.
const (
	Centroid = "centroid"
	Bisector = "bisector"
	MeanMax  = "mom"
	MinMax   = "som"
	MaxMax   = "lom"
)

// maxUniversePoints bounds the discretization of one universe.
const maxUniversePoints = 100_000

type Model struct {
	Name         string     `json:"name"`
	Inputs       []Variable `json:"inputs"`
	Output       Output     `json:"output"`
	Rules        []Rule     `json:"rules"`
	ClipToBounds *bool      `json:"clip_to_bounds,omitempty"`
}

// Variable is one antecedent. Field is the request key its samples arrive under.
type Variable struct {
	Name     string   `json:"name"`
	Field    string   `json:"field"`
	Universe Universe `json:"universe"`
	Terms    []Term   `json:"terms"`
}

type Output struct {
	Name      string   `json:"name"`
	Universe  Universe `json:"universe"`
	Terms     []Term   `json:"terms"`
	Defuzzify string   `json:"defuzzify,omitempty"`
}

// Universe is the discretized range [Min, Max] sampled every Step.
type Universe struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

type Term struct {
	Name   string    `json:"name"`
	Type   string    `json:"type"`
	Params []float64 `json:"params"`
}

type Rule struct {
	If       []Clause `json:"if"`
	Operator string   `json:"operator,omitempty"` // "and" (default) or "or"
	Then     string   `json:"then"`
	Weight   *float64 `json:"weight,omitempty"` // default 1
}

type Clause struct {
	Variable string `json:"variable"`
	Term     string `json:"term"`
	Not      bool   `json:"not,omitempty"`
}

// points returns the sample positions of the universe.
func (u Universe) points() []float64 {
	n := int(math.Floor((u.Max-u.Min)/u.Step+1e-9)) + 1
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = u.Min + float64(i)*u.Step
	}
	return xs
}

func (u Universe) validate() error {
	if u.Max <= u.Min {
		return fmt.Errorf("universe max %v must be greater than min %v", u.Max, u.Min)
	}
	if u.Step <= 0 {
		return fmt.Errorf("universe step must be positive, got %v", u.Step)
	}
	if (u.Max-u.Min)/u.Step+1 > maxUniversePoints {
		return fmt.Errorf("universe [%v, %v] step %v has more than %d points", u.Min, u.Max, u.Step, maxUniversePoints)
	}
	return nil
}

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://fuzzy-model.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse model schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add model schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// Parse decodes and validates a model document.
func Parse(data []byte) (*Model, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrInvalidModel, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the model file at path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fuzzy model: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Validate checks what the schema cannot: name uniqueness, references from
// rules to variables and terms, universes, and membership parameters.
func (m *Model) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidModel, fmt.Sprintf(format, args...))
	}

	if len(m.Inputs) == 0 {
		return invalid("model has no inputs")
	}
	if len(m.Rules) == 0 {
		return invalid("model has no rules")
	}

	inputTerms := make(map[string]map[string]bool, len(m.Inputs))
	fields := make(map[string]bool, len(m.Inputs))
	for _, in := range m.Inputs {
		if in.Name == m.Output.Name {
			return invalid("input %q has the same name as the output", in.Name)
		}
		if _, dup := inputTerms[in.Name]; dup {
			return invalid("duplicate input %q", in.Name)
		}
		if in.Field == "" {
			return invalid("input %q has no field", in.Name)
		}
		if fields[in.Field] {
			return invalid("duplicate input field %q", in.Field)
		}
		fields[in.Field] = true

		if err := in.Universe.validate(); err != nil {
			return invalid("input %q: %v", in.Name, err)
		}
		terms, err := checkTerms(in.Terms)
		if err != nil {
			return invalid("input %q: %v", in.Name, err)
		}
		inputTerms[in.Name] = terms
	}

	if err := m.Output.Universe.validate(); err != nil {
		return invalid("output %q: %v", m.Output.Name, err)
	}
	outputTerms, err := checkTerms(m.Output.Terms)
	if err != nil {
		return invalid("output %q: %v", m.Output.Name, err)
	}
	switch m.Output.Defuzzify {
	case "", Centroid, Bisector, MeanMax, MinMax, MaxMax:
	default:
		return invalid("unknown defuzzification method %q", m.Output.Defuzzify)
	}

	for i, r := range m.Rules {
		if len(r.If) == 0 {
			return invalid("rule %d has no conditions", i+1)
		}
		switch r.Operator {
		case "", "and", "or":
		default:
			return invalid("rule %d: unknown operator %q", i+1, r.Operator)
		}
		for _, c := range r.If {
			terms, ok := inputTerms[c.Variable]
			if !ok {
				return invalid("rule %d: unknown input %q", i+1, c.Variable)
			}
			if !terms[c.Term] {
				return invalid("rule %d: input %q has no term %q", i+1, c.Variable, c.Term)
			}
		}
		if !outputTerms[r.Then] {
			return invalid("rule %d: output %q has no term %q", i+1, m.Output.Name, r.Then)
		}
		if r.Weight != nil && (*r.Weight <= 0 || *r.Weight > 1) {
			return invalid("rule %d: weight must be in (0, 1], got %v", i+1, *r.Weight)
		}
	}
	return nil
}

func checkTerms(terms []Term) (map[string]bool, error) {
	if len(terms) == 0 {
		return nil, errors.New("no terms")
	}
	names := make(map[string]bool, len(terms))
	for _, t := range terms {
		if names[t.Name] {
			return nil, fmt.Errorf("duplicate term %q", t.Name)
		}
		names[t.Name] = true
		if _, err := newMembership(t.Type, t.Params); err != nil {
			return nil, fmt.Errorf("term %q: %w", t.Name, err)
		}
	}
	return names, nil
}
