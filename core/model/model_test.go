package model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scorecast/pkg/errors"
)

func TestBaseEstimator(t *testing.T) {
	var e BaseEstimator
	assert.False(t, e.IsFitted())

	e.SetFitted()
	assert.True(t, e.IsFitted())

	id := e.EstimatorID()
	assert.Len(t, id, 36)
	assert.Equal(t, id, e.EstimatorID())

	e.Reset()
	assert.False(t, e.IsFitted())
}

func TestStateManager(t *testing.T) {
	s := NewStateManager()

	err := s.RequireFitted("LinearRegression", "Predict")
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Predict", nf.Method)

	s.SetFitted(3, 40)
	require.NoError(t, s.RequireFitted("LinearRegression", "Predict"))
	require.NoError(t, s.RequireFeatures("Predict", 3))

	err = s.RequireFeatures("Predict", 2)
	var dim *errors.DimensionError
	require.True(t, errors.As(err, &dim))
	assert.Equal(t, 3, dim.Expected)
	assert.Equal(t, 2, dim.Got)
}

func TestModelWeightsValidate(t *testing.T) {
	valid := &ModelWeights{
		ModelType:    "poly",
		Version:      WeightsVersion,
		Degree:       2,
		Coefficients: []float64{1, 2},
		Terms:        []string{"x", "x^2"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*ModelWeights)
	}{
		{"unknown type", func(mw *ModelWeights) { mw.ModelType = "tree" }},
		{"poly degree 1", func(mw *ModelWeights) { mw.Degree = 1 }},
		{"linear with degree", func(mw *ModelWeights) { mw.ModelType = "linear" }},
		{"no coefficients", func(mw *ModelWeights) { mw.Coefficients = nil; mw.Terms = nil }},
		{"term mismatch", func(mw *ModelWeights) { mw.Terms = []string{"x"} }},
		{"no version", func(mw *ModelWeights) { mw.Version = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := valid.Clone()
			tt.mutate(mw)
			assert.Error(t, mw.Validate())
		})
	}
}

func TestWeightsJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "poly_degree_3.json")
	mw := &ModelWeights{
		ModelType:    "poly",
		Version:      WeightsVersion,
		Degree:       3,
		Coefficients: []float64{0.5, -1, 2},
		Intercept:    4,
		Features:     []string{"x"},
		Terms:        []string{"x", "x^2", "x^3"},
		Target:       "final_score",
	}

	require.NoError(t, SaveWeightsJSON(mw, path))
	got, err := LoadWeightsJSON(path)
	require.NoError(t, err)
	assert.Equal(t, mw.Degree, got.Degree)
	assert.Equal(t, mw.Terms, got.Terms)
	assert.Equal(t, mw.Intercept, got.Intercept)
}

func TestGobWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := &ModelWeights{ModelType: "linear", Version: WeightsVersion, Coefficients: []float64{2}, Intercept: 3}

	require.NoError(t, SaveModelToWriter(in, &buf))
	var out ModelWeights
	require.NoError(t, LoadModelFromReader(&out, &buf))
	assert.Equal(t, in.Coefficients, out.Coefficients)
}
