package plots

import (
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/YuminosukeSato/scorecast/dataset"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
)

// DefaultBins is the histogram bin count used by the pipeline.
const DefaultBins = 20

// Histograms draws one histogram per column on a grid of at most three
// columns and writes it as a single PNG. Missing values are skipped.
// Columns absent from ds are drawn as an empty panel titled "(Missing)".
func Histograms(path string, ds *dataset.Dataset, columns []string, bins int) error {
	if len(columns) == 0 {
		return errors.NewValueError("plots.Histograms", "no columns to plot")
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	nCols := min(3, len(columns))
	nRows := (len(columns) + nCols - 1) / nCols

	grid := make([][]*plot.Plot, nRows)
	for r := range grid {
		grid[r] = make([]*plot.Plot, nCols)
	}
	for i, name := range columns {
		p, err := histogram(ds, name, bins)
		if err != nil {
			return err
		}
		grid[i/nCols][i%nCols] = p
	}

	img := vgimg.New(vg.Length(nCols)*4*vg.Inch, vg.Length(nRows)*4*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      nRows,
		Cols:      nCols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
	}
	canvases := plot.Align(grid, tiles, dc)
	for r := range grid {
		for c := range grid[r] {
			if grid[r][c] != nil {
				grid[r][c].Draw(canvases[r][c])
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "plots: create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "plots: create %s", path)
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return errors.Wrapf(err, "plots: write %s", path)
	}
	log.GetLoggerWithName("plots").Info("figure saved", "path", path, log.FeaturesKey, len(columns))
	return nil
}

func histogram(ds *dataset.Dataset, name string, bins int) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Value"
	p.Y.Label.Text = "Frequency"

	if !ds.Has(name) {
		p.Title.Text = name + " (Missing)"
		return p, nil
	}
	p.Title.Text = Title(name)

	col, err := ds.Column(name)
	if err != nil {
		return nil, err
	}
	values := make(plotter.Values, 0, len(col))
	for _, v := range col {
		if !dataset.IsMissing(v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return p, nil
	}

	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return nil, errors.Wrapf(err, "plots: histogram of %s", name)
	}
	h.FillColor = pointColor
	p.Add(h)
	return p, nil
}
