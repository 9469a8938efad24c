package plots

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scorecast/dataset"
	"github.com/YuminosukeSato/scorecast/metrics"
	"github.com/YuminosukeSato/scorecast/modelselection"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
)

func requirePNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Study Hours", Title("study_hours"))
	assert.Equal(t, "Final Score", Title("final_score"))
	assert.Equal(t, "X", Title("x"))
}

func TestHistograms(t *testing.T) {
	ds, err := dataset.GenerateDemo(50, 1)
	require.NoError(t, err)
	ds, err = dataset.NormalizeColumns(ds)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "figures", "eda_histograms.png")
	err = Histograms(path, ds, []string{"study_hours", "sleep_hours", "attendance", "final_score", "not_there"}, 0)
	require.NoError(t, err)
	requirePNG(t, path)
}

func TestHistogramsSkipsMissing(t *testing.T) {
	nan := dataset.Missing()
	ds, err := dataset.New([]string{"a", "b"}, [][]float64{{1, nan, 3}, {nan, nan, nan}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "h.png")
	require.NoError(t, Histograms(path, ds, []string{"a", "b"}, 5))
	requirePNG(t, path)

	err = Histograms(path, ds, nil, 5)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestDiagnosticPlots(t *testing.T) {
	log.UseTestLogger(t, log.LevelInfo)
	dir := t.TempDir()

	yTrue := []float64{50, 60, 70, 80, 90}
	yPred := []float64{52, 58, 71, 79, 93}

	scatter := filepath.Join(dir, "study_hours_vs_final_score.png")
	require.NoError(t, Scatter(scatter, []float64{1, 2, 3, 4, 5}, yTrue, "Study Hours", "Final Score", "study_hours vs final_score"))
	requirePNG(t, scatter)

	pva := filepath.Join(dir, "pred_vs_actual_linear.png")
	require.NoError(t, PredVsActual(pva, yTrue, yPred, "Linear Regression: Predictions vs Actual"))
	requirePNG(t, pva)

	res := filepath.Join(dir, "residuals_linear.png")
	require.NoError(t, Residuals(res, yTrue, yPred, "Linear Regression: Residual Plot"))
	requirePNG(t, res)
}

func TestDiagnosticPlotsRejectBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.png")

	var dimErr *errors.DimensionError
	err := PredVsActual(path, []float64{1, 2}, []float64{1}, "t")
	assert.True(t, errors.As(err, &dimErr))
	err = Residuals(path, []float64{1, 2}, []float64{1}, "t")
	assert.True(t, errors.As(err, &dimErr))

	var valErr *errors.ValueError
	err = Scatter(path, nil, nil, "x", "y", "t")
	assert.True(t, errors.As(err, &valErr))
	err = Scatter(path, []float64{1, math.NaN()}, []float64{1, 2}, "x", "y", "t")
	assert.True(t, errors.As(err, &valErr))
}

func TestCVRMSE(t *testing.T) {
	search := &modelselection.DegreeSearch{
		BestDegree: 2,
		Results: []modelselection.DegreeResult{
			{Degree: 2, Scores: []float64{1, 1.2}, MeanRMSE: 1.1, StdRMSE: 0.14},
			{Degree: 3, Scores: []float64{1.3, 1.5}, MeanRMSE: 1.4, StdRMSE: 0.14},
			{Degree: 4, Scores: []float64{2, 3}, MeanRMSE: 2.5, StdRMSE: 0.7},
		},
	}
	path := filepath.Join(t.TempDir(), "cv_rmse_by_degree.png")
	require.NoError(t, CVRMSE(path, search))
	requirePNG(t, path)

	var valErr *errors.ValueError
	assert.True(t, errors.As(CVRMSE(path, nil), &valErr))
}

func TestMetricsComparison(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics_comparison_bar.png")
	lin := metrics.Report{MAE: 4.1, MSE: 25.3, RMSE: 5.03, R2: 0.71}
	poly := metrics.Report{MAE: 3.2, MSE: 16.8, RMSE: 4.1, R2: 0.81}
	require.NoError(t, MetricsComparison(path, lin, poly))
	requirePNG(t, path)
}
