package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorecast/dataset"
	"github.com/YuminosukeSato/scorecast/internal/config"
	"github.com/YuminosukeSato/scorecast/internal/runstore"
	"github.com/YuminosukeSato/scorecast/linear"
	"github.com/YuminosukeSato/scorecast/metrics"
	"github.com/YuminosukeSato/scorecast/modelselection"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
	"github.com/YuminosukeSato/scorecast/plots"
)

func edaFigures(cfg config.Config, ds *dataset.Dataset) ([]string, error) {
	var figs []string

	columns := append(append([]string(nil), cfg.Features...), cfg.Target)
	hist := filepath.Join(cfg.FiguresDir(), "eda_histograms.png")
	if err := plots.Histograms(hist, ds, columns, plots.DefaultBins); err != nil {
		return nil, err
	}
	figs = append(figs, hist)

	first := cfg.Features[0]
	x, err := ds.Column(first)
	if err != nil {
		return nil, err
	}
	y, err := ds.Column(cfg.Target)
	if err != nil {
		return nil, err
	}
	x, y = observed(x, y)
	if len(x) > 0 {
		path := filepath.Join(cfg.FiguresDir(), fmt.Sprintf("%s_vs_%s.png", first, cfg.Target))
		err := plots.Scatter(path, x, y, plots.Title(first), plots.Title(cfg.Target),
			fmt.Sprintf("%s vs %s", first, cfg.Target))
		if err != nil {
			return nil, err
		}
		figs = append(figs, path)
	}
	return figs, nil
}

// observed drops pairs where either value is missing.
func observed(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if dataset.IsMissing(x[i]) || dataset.IsMissing(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

func modelFigures(
	ctx context.Context,
	cfg config.Config,
	store *runstore.Store,
	split *dataset.SplitResult,
	pred *mat.VecDense,
	model linear.Model,
	search *modelselection.DegreeSearch,
	report metrics.Report,
	fingerprint string,
) ([]string, error) {
	var figs []string

	label, title := "linear", "Linear Regression"
	if model.Kind() == linear.KindPolynomial {
		label = fmt.Sprintf("poly_deg_%d", model.Degree())
		title = fmt.Sprintf("Polynomial Regression (degree=%d)", model.Degree())
	}

	yTrue := split.YTest.RawVector().Data
	yPred := pred.RawVector().Data

	pva := filepath.Join(cfg.FiguresDir(), fmt.Sprintf("pred_vs_actual_%s.png", label))
	if err := plots.PredVsActual(pva, yTrue, yPred, title+": Predictions vs Actual"); err != nil {
		return nil, err
	}
	res := filepath.Join(cfg.FiguresDir(), fmt.Sprintf("residuals_%s.png", label))
	if err := plots.Residuals(res, yTrue, yPred, title+": Residual Plot"); err != nil {
		return nil, err
	}
	figs = append(figs, pva, res)

	if search != nil {
		cv := filepath.Join(cfg.FiguresDir(), "cv_rmse_by_degree.png")
		if err := plots.CVRMSE(cv, search); err != nil {
			return nil, err
		}
		figs = append(figs, cv)
	}

	if model.Kind() == linear.KindPolynomial {
		baseline, ok := linearBaseline(ctx, cfg, store, fingerprint)
		if ok {
			cmp := filepath.Join(cfg.FiguresDir(), "metrics_comparison_bar.png")
			if err := plots.MetricsComparison(cmp, baseline, report); err != nil {
				return nil, err
			}
			figs = append(figs, cmp)
		}
	}
	return figs, nil
}

// linearBaseline finds linear metrics to compare a polynomial run against:
// the latest linear run on the same data, else metrics_linear.json.
func linearBaseline(ctx context.Context, cfg config.Config, store *runstore.Store, fingerprint string) (metrics.Report, bool) {
	logger := log.GetLoggerWithName("pipeline")

	run, err := store.Latest(ctx, string(linear.KindLinear), fingerprint)
	if err == nil {
		return run.Metrics, true
	}
	if !errors.Is(err, runstore.ErrNotFound) {
		logger.Warn("could not query linear baseline", log.ErrAttr(err))
	}

	doc, err := LoadMetrics(filepath.Join(cfg.MetricsDir(), "metrics_linear.json"))
	if err != nil {
		logger.Debug("no linear baseline for comparison plot", log.ErrAttr(err))
		return metrics.Report{}, false
	}
	return doc.Report(), true
}
