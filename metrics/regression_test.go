package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorecast/pkg/errors"
)

func vec(vs ...float64) *mat.VecDense {
	return mat.NewVecDense(len(vs), vs)
}

func TestMSE(t *testing.T) {
	tests := []struct {
		name  string
		yTrue *mat.VecDense
		yPred *mat.VecDense
		want  float64
	}{
		{"perfect prediction", vec(1, 2, 3, 4, 5), vec(1, 2, 3, 4, 5), 0},
		{"simple case", vec(1, 2, 3, 4), vec(1.5, 2.5, 2.5, 3.5), 0.25},
		{"larger errors", vec(10, 20, 30), vec(12, 18, 33), 17.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)
		})
	}
}

func TestRMSEAndMAE(t *testing.T) {
	yTrue := vec(10, 20, 30)
	yPred := vec(12, 18, 33)

	rmse, err := RMSE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(17.0/3.0), rmse, 1e-10)

	mae, err := MAE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 7.0/3.0, mae, 1e-10)
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name  string
		yTrue *mat.VecDense
		yPred *mat.VecDense
		want  float64
	}{
		{"perfect prediction", vec(1, 2, 3, 4, 5), vec(1, 2, 3, 4, 5), 1},
		{"mean prediction", vec(1, 2, 3, 4, 5), vec(3, 3, 3, 3, 3), 0},
		{"worse than mean", vec(1, 2, 3), vec(3, 2, 1), -3},
		{"constant target predicted exactly", vec(4, 4, 4), vec(4, 4, 4), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := R2Score(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)
		})
	}
}

func TestR2ScoreUndefined(t *testing.T) {
	_, err := R2Score(vec(4, 4, 4), vec(4, 5, 4))
	require.Error(t, err)

	var metricErr *errors.UndefinedMetricError
	require.True(t, errors.As(err, &metricErr))
	assert.Equal(t, "r2", metricErr.Metric)
	assert.True(t, errors.Is(err, errors.ErrUndefinedR2))

	_, err = Compute(vec(4, 4, 4), vec(4, 5, 4))
	assert.True(t, errors.Is(err, errors.ErrUndefinedR2))
}

func TestComputeIdentical(t *testing.T) {
	y := vec(3.5, 7, 1, 9)

	report, err := Compute(y, y)
	require.NoError(t, err)
	assert.Equal(t, Report{MAE: 0, MSE: 0, RMSE: 0, R2: 1}, report)
}

func TestComputeInvalidInput(t *testing.T) {
	_, err := Compute(vec(1, 2, 3), vec(1, 2))
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 3, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)

	empty := &mat.VecDense{}
	_, err = Compute(empty, empty)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))

	_, err = Compute(vec(1, 2, 3), vec(1, math.NaN(), 3))
	var numErr *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &numErr))
}

func TestReportLogFields(t *testing.T) {
	fields := Report{MAE: 1, MSE: 4, RMSE: 2, R2: 0.5}.LogFields()
	assert.Len(t, fields, 8)
	assert.Equal(t, 2.0, fields[5])
}

func BenchmarkCompute(b *testing.B) {
	n := 10000
	yTrue := mat.NewVecDense(n, nil)
	yPred := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yTrue.SetVec(i, float64(i))
		yPred.SetVec(i, float64(i)+0.5)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Compute(yTrue, yPred)
	}
}
