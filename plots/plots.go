// Package plots は探索的データ分析とモデル診断の図を PNG として出力します。
package plots

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
)

var (
	pointColor = color.RGBA{R: 31, G: 119, B: 180, A: 160}
	refColor   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	polyColor  = color.RGBA{R: 255, G: 127, B: 14, A: 220}
)

const (
	figureWidth  = 10 * vg.Inch
	figureHeight = 6 * vg.Inch
)

// Title converts a snake_case column name to a display title.
func Title(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Scatter writes a scatter plot of y against x.
func Scatter(path string, x, y []float64, xlabel, ylabel, title string) error {
	xys, err := pairs("Scatter", x, y)
	if err != nil {
		return err
	}

	p := newPlot(title, xlabel, ylabel)
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return errors.Wrap(err, "plots: scatter")
	}
	s.GlyphStyle.Color = pointColor
	s.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(s)

	return save(p, figureWidth, figureHeight, path)
}

// PredVsActual plots predictions against true values with the y = x reference line.
func PredVsActual(path string, yTrue, yPred []float64, title string) error {
	xys, err := pairs("PredVsActual", yTrue, yPred)
	if err != nil {
		return err
	}

	p := newPlot(title, "Actual Values", "Predicted Values")
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return errors.Wrap(err, "plots: pred vs actual")
	}
	s.GlyphStyle.Color = pointColor
	s.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(s)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, xy := range xys {
		lo = math.Min(lo, math.Min(xy.X, xy.Y))
		hi = math.Max(hi, math.Max(xy.X, xy.Y))
	}
	ref, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "plots: pred vs actual")
	}
	ref.Color = refColor
	ref.Width = vg.Points(2)
	ref.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(ref)
	p.Legend.Add("Perfect Prediction", ref)
	p.Legend.Top = true
	p.Legend.Left = true

	return save(p, figureWidth, 8*vg.Inch, path)
}

// Residuals plots yTrue - yPred against yPred with a zero line.
func Residuals(path string, yTrue, yPred []float64, title string) error {
	if len(yTrue) != len(yPred) {
		return errors.NewDimensionError("plots.Residuals", len(yTrue), len(yPred), 0)
	}
	res := make([]float64, len(yTrue))
	for i := range yTrue {
		res[i] = yTrue[i] - yPred[i]
	}
	xys, err := pairs("Residuals", yPred, res)
	if err != nil {
		return err
	}

	p := newPlot(title, "Predicted Values", "Residuals")
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return errors.Wrap(err, "plots: residuals")
	}
	s.GlyphStyle.Color = pointColor
	s.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(s)

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Color = refColor
	zero.Width = vg.Points(2)
	zero.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(zero)

	return save(p, figureWidth, figureHeight, path)
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

// pairs zips x and y, rejecting mismatched, empty or non-finite input.
func pairs(fn string, x, y []float64) (plotter.XYs, error) {
	op := "plots." + fn
	if len(x) != len(y) {
		return nil, errors.NewDimensionError(op, len(x), len(y), 0)
	}
	if len(x) == 0 {
		return nil, errors.NewValueError(op, "no points to plot")
	}
	xys := make(plotter.XYs, len(x))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, errors.NewValueErrorf(op, "non-finite value at index %d", i)
		}
		xys[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return xys, nil
}

func save(p *plot.Plot, w, h vg.Length, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "plots: create directory for %s", path)
	}
	if err := p.Save(w, h, path); err != nil {
		return errors.Wrapf(err, "plots: save %s", path)
	}
	log.GetLoggerWithName("plots").Info("figure saved", "path", path)
	return nil
}

func label(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
