package linear

import (
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorecast/metrics"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
)

// noisyLine returns n samples of y = 2x + 3 + N(0, sigma²).
func noisyLine(n int, sigma float64) (*mat.Dense, *mat.VecDense) {
	rng := rand.New(rand.NewPCG(42, 42))
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x := rng.Float64() * 10
		X.Set(i, 0, x)
		y.SetVec(i, 2*x+3+rng.NormFloat64()*sigma)
	}
	return X, y
}

func TestLinearRegressionExactFit(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 1,
		1, 2,
		2, 2,
		2, 3,
	})
	// y = 1·x1 + 2·x2 + 3
	y := mat.NewVecDense(4, []float64{6, 8, 9, 11})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	assert.InDeltaSlice(t, []float64{1, 2}, lr.Coefficients(), 1e-9)
	assert.InDelta(t, 3, lr.Intercept, 1e-9)
	assert.Equal(t, 2, lr.Rank)

	pred, err := lr.Predict(mat.NewDense(1, 2, []float64{3, 5}))
	require.NoError(t, err)
	assert.InDelta(t, 16, pred.AtVec(0), 1e-9)

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1, score, 1e-12)
}

func TestLinearRegressionRankDeficient(t *testing.T) {
	// second column duplicates the first; minimum-norm solution splits the weight
	X := mat.NewDense(4, 2, []float64{1, 1, 2, 2, 3, 3, 4, 4})
	y := mat.NewVecDense(4, []float64{3, 5, 7, 9})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	assert.Equal(t, 1, lr.Rank)
	assert.InDeltaSlice(t, []float64{1, 1}, lr.Coef, 1e-9)
	assert.InDelta(t, 1, lr.Intercept, 1e-9)
}

func TestLinearRegressionMoreFeaturesThanSamples(t *testing.T) {
	X := mat.NewDense(2, 4, []float64{
		1, 0, 2, 1,
		0, 1, 1, 3,
	})
	y := mat.NewVecDense(2, []float64{1, 2})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	pred, err := lr.Predict(X)
	require.NoError(t, err)
	assert.InDelta(t, 1, pred.AtVec(0), 1e-9)
	assert.InDelta(t, 2, pred.AtVec(1), 1e-9)
}

func TestLinearRegressionConstantFeature(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{5, 5, 5})
	y := mat.NewVecDense(3, []float64{1, 2, 3})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))
	assert.Equal(t, 0, lr.Rank)
	assert.Equal(t, []float64{0}, lr.Coef)
	assert.InDelta(t, 2, lr.Intercept, 1e-12)
}

func TestLinearRegressionRcondTruncatesSpectrum(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewVecDense(4, []float64{3, 5, 7, 9})

	lr := NewLinearRegression(WithRcond(2))
	require.NoError(t, lr.Fit(X, y))
	assert.Equal(t, 0, lr.Rank)
	assert.Equal(t, []float64{0}, lr.Coef)
	assert.InDelta(t, 6, lr.Intercept, 1e-12)
}

func TestLinearRegressionWithoutIntercept(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{2, 4, 6})

	lr := NewLinearRegression(WithFitIntercept(false))
	require.NoError(t, lr.Fit(X, y))
	assert.InDelta(t, 2, lr.Coef[0], 1e-12)
	assert.Equal(t, 0.0, lr.Intercept)
}

func TestLinearRegressionErrors(t *testing.T) {
	lr := NewLinearRegression()

	_, err := lr.Predict(mat.NewDense(1, 1, nil))
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))

	err = lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewVecDense(2, []float64{1, 2}))
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 0, dimErr.Axis)

	err = lr.Fit(mat.NewDense(2, 1, []float64{1, math.NaN()}), mat.NewVecDense(2, []float64{1, 2}))
	var numErr *errors.NumericalInstabilityError
	require.True(t, errors.As(err, &numErr))

	X, y := noisyLine(10, 0)
	require.NoError(t, lr.Fit(X, y))
	_, err = lr.Predict(mat.NewDense(1, 2, nil))
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 1, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)
}

func TestTrainLinearGoodFit(t *testing.T) {
	testLogger := log.UseTestLogger(t, log.LevelInfo)

	X, y := noisyLine(100, 1)
	m, err := TrainLinear(X, y)
	require.NoError(t, err)

	pred, err := m.Predict(X)
	require.NoError(t, err)
	report, err := metrics.Compute(y, pred)
	require.NoError(t, err)

	assert.Greater(t, report.R2, 0.8)
	assert.Equal(t, KindLinear, m.Kind())
	assert.Equal(t, 0, m.Degree())
	assert.True(t, testLogger.ContainsField(log.ModelKindKey, "linear"))
}

func TestTrainPolynomial(t *testing.T) {
	n := 40
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x := float64(i)/4 - 5
		X.Set(i, 0, x)
		y.SetVec(i, 2*x*x+3*x+1)
	}

	m, err := TrainPolynomial(X, y, 2)
	require.NoError(t, err)
	assert.Equal(t, KindPolynomial, m.Kind())
	assert.Equal(t, 2, m.Degree())
	assert.Equal(t, 1, m.NFeatures())
	assert.InDeltaSlice(t, []float64{3, 2}, m.Regressor().Coef, 1e-8)

	pred, err := m.Predict(mat.NewDense(1, 1, []float64{2}))
	require.NoError(t, err)
	assert.InDelta(t, 15, pred.AtVec(0), 1e-8)

	_, err = m.Predict(mat.NewDense(1, 2, nil))
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 1, dimErr.Expected)

	_, err = TrainPolynomial(X, y, 1)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestModelDispatch(t *testing.T) {
	X, y := noisyLine(30, 0.5)
	lin, err := TrainLinear(X, y)
	require.NoError(t, err)
	poly, err := TrainPolynomial(X, y, 3)
	require.NoError(t, err)

	for _, m := range []Model{lin, poly} {
		pred, err := m.Predict(X)
		require.NoError(t, err)
		assert.Equal(t, 30, pred.Len())

		switch v := m.(type) {
		case *LinearModel:
			assert.Equal(t, 1, len(v.Regressor().Coef))
		case *PolynomialModel:
			assert.Equal(t, 3, len(v.Regressor().Coef))
		default:
			t.Fatalf("unexpected model type %T", m)
		}
	}
}

func TestSaveLoadModel(t *testing.T) {
	X := mat.NewDense(30, 2, nil)
	y := mat.NewVecDense(30, nil)
	rng := rand.New(rand.NewPCG(1, 1))
	for i := 0; i < 30; i++ {
		a, b := rng.Float64(), rng.Float64()
		X.Set(i, 0, a)
		X.Set(i, 1, b)
		y.SetVec(i, a*a-b+0.5*a*b)
	}
	features := []string{"study_hours", "sleep_hours"}

	poly, err := TrainPolynomial(X, y, 2)
	require.NoError(t, err)
	lin, err := TrainLinear(X, y)
	require.NoError(t, err)

	dir := t.TempDir()
	for _, tc := range []struct {
		file  string
		model Model
	}{
		{"poly_degree_2.json", poly},
		{"poly_degree_2.gob", poly},
		{"linear_model.json", lin},
	} {
		t.Run(tc.file, func(t *testing.T) {
			path := filepath.Join(dir, tc.file)
			require.NoError(t, SaveModel(path, tc.model, features, "final_score"))

			loaded, mw, err := LoadModel(path)
			require.NoError(t, err)
			assert.Equal(t, tc.model.Kind(), loaded.Kind())
			assert.Equal(t, tc.model.Degree(), loaded.Degree())
			assert.Equal(t, features, mw.Features)
			assert.Equal(t, "final_score", mw.Target)
			assert.Len(t, mw.Terms, len(mw.Coefficients))

			want, err := tc.model.Predict(X)
			require.NoError(t, err)
			got, err := loaded.Predict(X)
			require.NoError(t, err)
			assert.InDeltaSlice(t, want.RawVector().Data, got.RawVector().Data, 1e-12)
		})
	}
}

func TestToWeightsTerms(t *testing.T) {
	X, y := noisyLine(20, 0.1)
	poly, err := TrainPolynomial(X, y, 3)
	require.NoError(t, err)

	mw, err := ToWeights(poly, []string{"study_hours"}, "final_score")
	require.NoError(t, err)
	assert.Equal(t, []string{"study_hours", "study_hours^2", "study_hours^3"}, mw.Terms)
	assert.Equal(t, 3, mw.Degree)

	_, err = ToWeights(poly, []string{"a", "b"}, "final_score")
	assert.Error(t, err)
}
