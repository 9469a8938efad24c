package plots

import (
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/scorecast/metrics"
	"github.com/YuminosukeSato/scorecast/modelselection"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
)

// CVRMSE plots the mean cross-validated RMSE per candidate degree with
// ±1 standard deviation error bars.
func CVRMSE(path string, search *modelselection.DegreeSearch) error {
	if search == nil || len(search.Results) == 0 {
		return errors.NewValueError("plots.CVRMSE", "no cross-validation results")
	}

	pts := struct {
		plotter.XYs
		plotter.YErrors
	}{
		XYs:     make(plotter.XYs, len(search.Results)),
		YErrors: make(plotter.YErrors, len(search.Results)),
	}
	for i, r := range search.Results {
		pts.XYs[i] = plotter.XY{X: float64(r.Degree), Y: r.MeanRMSE}
		pts.YErrors[i].Low = r.StdRMSE
		pts.YErrors[i].High = r.StdRMSE
	}

	p := newPlot("Cross-validated RMSE by Polynomial Degree", "Degree", "Mean RMSE")
	line, points, err := plotter.NewLinePoints(pts.XYs)
	if err != nil {
		return errors.Wrap(err, "plots: cv rmse")
	}
	line.Color = pointColor
	points.GlyphStyle.Color = pointColor
	bars, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return errors.Wrap(err, "plots: cv rmse")
	}
	p.Add(line, points, bars)

	best := search.Best()
	marker, err := plotter.NewScatter(plotter.XYs{{X: float64(best.Degree), Y: best.MeanRMSE}})
	if err != nil {
		return errors.Wrap(err, "plots: cv rmse")
	}
	marker.GlyphStyle.Color = refColor
	marker.GlyphStyle.Radius = vg.Points(5)
	p.Add(marker)
	p.Legend.Add("best degree", marker)
	p.Legend.Top = true

	return save(p, figureWidth, figureHeight, path)
}

// MetricsComparison draws grouped bars of MAE, MSE, RMSE and R² for the
// linear and polynomial models, each bar labelled with its value.
func MetricsComparison(path string, linearReport, polyReport metrics.Report) error {
	names := []string{"MAE", "MSE", "RMSE", "R2"}
	lin := plotter.Values{linearReport.MAE, linearReport.MSE, linearReport.RMSE, linearReport.R2}
	poly := plotter.Values{polyReport.MAE, polyReport.MSE, polyReport.RMSE, polyReport.R2}

	p := newPlot("Model Comparison", "Metrics", "Values")
	width := vg.Points(28)

	linBars, err := plotter.NewBarChart(lin, width)
	if err != nil {
		return errors.Wrap(err, "plots: metrics comparison")
	}
	linBars.Color = pointColor
	linBars.Offset = -width / 2

	polyBars, err := plotter.NewBarChart(poly, width)
	if err != nil {
		return errors.Wrap(err, "plots: metrics comparison")
	}
	polyBars.Color = polyColor
	polyBars.Offset = width / 2

	p.Add(linBars, polyBars)
	p.Legend.Add("Linear", linBars)
	p.Legend.Add("Polynomial", polyBars)
	p.Legend.Top = true
	p.NominalX(names...)

	// 値ラベルは各バーの中心より少し上に置く
	shift := 0.18
	for _, group := range []struct {
		values plotter.Values
		dx     float64
	}{{lin, -shift}, {poly, shift}} {
		xyl := plotter.XYLabels{
			XYs:    make(plotter.XYs, len(group.values)),
			Labels: make([]string, len(group.values)),
		}
		for i, v := range group.values {
			xyl.XYs[i] = plotter.XY{X: float64(i) + group.dx, Y: v}
			xyl.Labels[i] = label(v)
		}
		labels, err := plotter.NewLabels(xyl)
		if err != nil {
			return errors.Wrap(err, "plots: metrics comparison")
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Font.Size = vg.Points(9)
		}
		labels.Offset = vg.Point{Y: vg.Points(3)}
		p.Add(labels)
	}

	return save(p, 12*vg.Inch, figureHeight, path)
}
