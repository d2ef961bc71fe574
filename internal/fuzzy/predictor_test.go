package fuzzy

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/ability-api/internal/apperror"
)

func newTestPredictor(t *testing.T, name string) *Predictor {
	t.Helper()
	p, err := LoadPredictor(filepath.Join("testdata", name))
	require.NoError(t, err)
	return p
}

func TestPredict_UsesMeans(t *testing.T) {
	p := newTestPredictor(t, "ability_2input.json")

	byMean, err := p.Predict(map[string][]float64{
		"counting_input": {4},
		"color_input":    {2},
	})
	require.NoError(t, err)

	bySamples, err := p.Predict(map[string][]float64{
		"counting_input": {3, 4, 5},
		"color_input":    {2, 2, 2},
	})
	require.NoError(t, err)

	assert.Equal(t, byMean, bySamples)
	assert.Greater(t, bySamples, 0.0)
	assert.Less(t, bySamples, 100.0)
}

func TestPredict_IgnoresUnknownFields(t *testing.T) {
	p := newTestPredictor(t, "ability_2input.json")

	got, err := p.Predict(map[string][]float64{
		"counting_input":    {5},
		"color_input":       {5},
		"calculation_input": {1, 2},
	})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, got, 1e-9)
}

func TestPredict_Errors(t *testing.T) {
	p := newTestPredictor(t, "ability_2input.json")

	tests := []struct {
		name    string
		samples map[string][]float64
		wantErr error
	}{
		{
			name:    "empty counting_input",
			samples: map[string][]float64{"counting_input": {}, "color_input": {1}},
			wantErr: apperror.ErrEmptyInput,
		},
		{
			name:    "missing color_input",
			samples: map[string][]float64{"counting_input": {1}},
			wantErr: apperror.ErrValidation,
		},
		{
			name:    "NaN sample",
			samples: map[string][]float64{"counting_input": {math.NaN()}, "color_input": {1}},
			wantErr: apperror.ErrValidation,
		},
		{
			name:    "infinite sample",
			samples: map[string][]float64{"counting_input": {math.Inf(1)}, "color_input": {1}},
			wantErr: apperror.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Predict(tt.samples)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, got)
		})
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"single", []float64{4}, 4},
		{"three", []float64{3, 4, 5}, 4},
		{"sum overflows", []float64{1e308, 1e308}, 1e308},
		{"largest values", []float64{math.MaxFloat64, math.MaxFloat64}, math.MaxFloat64},
		{"opposite extremes", []float64{math.MaxFloat64, -math.MaxFloat64}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mean(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredict_HugeSamplesClipToUniverse(t *testing.T) {
	p := newTestPredictor(t, "ability_2input.json")

	huge, err := p.Predict(map[string][]float64{
		"counting_input": {math.MaxFloat64, math.MaxFloat64},
		"color_input":    {1e308, 1e308},
	})
	require.NoError(t, err)

	top, err := p.Predict(map[string][]float64{"counting_input": {10}, "color_input": {10}})
	require.NoError(t, err)
	assert.Equal(t, top, huge)
}

func TestPredict_NoRuleFired(t *testing.T) {
	m := loadTestModel(t, "ability_2input.json")
	off := false
	m.ClipToBounds = &off
	p, err := NewPredictor(m)
	require.NoError(t, err)

	_, err = p.Predict(map[string][]float64{"counting_input": {20}, "color_input": {20}})
	assert.ErrorIs(t, err, apperror.ErrPredictionUnavailable)
}

func TestInputs_ThreeInputModel(t *testing.T) {
	p := newTestPredictor(t, "ability_3input.json")

	inputs := p.Inputs()
	require.Len(t, inputs, 3)
	assert.Equal(t, Input{Name: "Counting_Ability", Field: "counting_input", Min: 0, Max: 10}, inputs[0])
	assert.Equal(t, "color_input", inputs[1].Field)
	assert.Equal(t, "calculation_input", inputs[2].Field)
	assert.Equal(t, "Percentage", p.Output())
	assert.Equal(t, "ability-3input", p.Name())

	// Inputs hands out a copy.
	inputs[0].Field = "changed"
	assert.Equal(t, "counting_input", p.Inputs()[0].Field)
}
