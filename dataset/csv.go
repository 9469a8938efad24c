package dataset

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
)

// missingTokens are the cell values read as missing besides the empty cell.
var missingTokens = []string{"NA", "NaN", "nan", "N/A", "null", "<nil>"}

// Load reads the CSV file at path. See ReadCSV.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load dataset %s", path)
	}
	log.GetLoggerWithName("dataset").Info("dataset loaded",
		log.DataPathKey, path,
		log.SamplesKey, ds.NRows(),
		log.FeaturesKey, ds.NCols(),
	)
	return ds, nil
}

// ReadCSV parses a headed CSV document. Every column is read as text and
// coerced to float64; empty, NA-like or unparseable cells become missing.
// Column names are normalised with NormalizeColumnName.
func ReadCSV(r io.Reader) (*Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "read csv")
	}

	rawNames := df.Names()
	names := make([]string, len(rawNames))
	cols := make([][]float64, len(rawNames))
	for j, raw := range rawNames {
		names[j] = NormalizeColumnName(raw)
		records := df.Col(raw).Records()
		col := make([]float64, len(records))
		for i, cell := range records {
			col[i] = parseCell(cell)
		}
		cols[j] = col
	}

	ds, err := New(names, cols)
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	return ds, nil
}

func parseCell(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return Missing()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsInf(v, 0) {
		return Missing()
	}
	return v
}

// WriteCSV writes ds with a header row. Missing cells are written as "NA".
func WriteCSV(w io.Writer, ds *Dataset) error {
	if ds.NCols() == 0 {
		return errors.NewValueError("dataset.WriteCSV", "dataset has no columns")
	}
	cols := make([]series.Series, ds.NCols())
	for j, name := range ds.names {
		cells := make([]string, ds.nrows)
		for i, v := range ds.cols[j] {
			if IsMissing(v) {
				cells[i] = "NA"
				continue
			}
			cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		cols[j] = series.New(cells, series.String, name)
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return errors.Wrap(df.Err, "write csv")
	}
	return df.WriteCSV(w)
}

// Save writes ds to path, creating parent directories.
func Save(path string, ds *Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := WriteCSV(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
