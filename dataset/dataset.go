// Package dataset holds tabular student records and the data preparation
// steps that run before any model is fitted: CSV I/O, cleaning, the seeded
// train/test split and synthetic demo data.
//
// Values are stored column-major as float64. Missing cells hold the sentinel
// returned by Missing and must be tested with IsMissing.
package dataset

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorecast/pkg/errors"
)

// Missing returns the missing-value sentinel (IEEE NaN).
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing-value sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Dataset is an ordered set of records over ordered, named numeric columns.
// A Dataset is never modified after construction; accessors return copies.
type Dataset struct {
	names []string
	index map[string]int
	cols  [][]float64
	nrows int
}

// New builds a Dataset from parallel name and column slices. The column
// slices are copied.
func New(names []string, cols [][]float64) (*Dataset, error) {
	const op = "dataset.New"
	if len(names) != len(cols) {
		return nil, errors.NewDimensionError(op, len(names), len(cols), 1)
	}

	ds := &Dataset{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
		cols:  make([][]float64, len(cols)),
	}
	for j, name := range names {
		if _, dup := ds.index[name]; dup {
			return nil, errors.NewValueErrorf(op, "duplicate column %q", name)
		}
		ds.index[name] = j
		if j == 0 {
			ds.nrows = len(cols[0])
		} else if len(cols[j]) != ds.nrows {
			return nil, errors.NewDimensionError(op, ds.nrows, len(cols[j]), 0)
		}
		ds.cols[j] = append([]float64(nil), cols[j]...)
	}
	return ds, nil
}

// NormalizeColumnName trims name, lower-cases it and replaces spaces with
// underscores: " Study Hours" becomes "study_hours".
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// NormalizeColumns returns a copy of ds with every column name normalised.
// Two columns normalising to the same name is a ValueError.
func NormalizeColumns(ds *Dataset) (*Dataset, error) {
	names := make([]string, len(ds.names))
	for j, name := range ds.names {
		names[j] = NormalizeColumnName(name)
	}
	out, err := New(names, ds.cols)
	if err != nil {
		return nil, errors.Wrap(err, "normalize column names")
	}
	return out, nil
}

// NRows returns the number of records.
func (d *Dataset) NRows() int { return d.nrows }

// NCols returns the number of columns.
func (d *Dataset) NCols() int { return len(d.names) }

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	return append([]string(nil), d.names...)
}

// Has reports whether the dataset has a column called name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) ([]float64, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, errors.NewSchemaError("Dataset.Column", []string{name}, d.Names())
	}
	return append([]float64(nil), d.cols[j]...), nil
}

// At returns the value of the named column in row i.
func (d *Dataset) At(i int, name string) float64 {
	return d.cols[d.index[name]][i]
}

// MissingColumns returns the names in want that the dataset lacks, in the
// order given.
func (d *Dataset) MissingColumns(want ...string) []string {
	var missing []string
	for _, name := range want {
		if !d.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// RequireColumns returns a SchemaError listing every absent name.
func (d *Dataset) RequireColumns(op string, want ...string) error {
	if missing := d.MissingColumns(want...); len(missing) > 0 {
		return errors.NewSchemaError(op, missing, d.Names())
	}
	return nil
}

// Rows returns a new Dataset holding the given rows, in the given order.
func (d *Dataset) Rows(rows []int) *Dataset {
	out := &Dataset{
		names: d.Names(),
		index: make(map[string]int, len(d.names)),
		cols:  make([][]float64, len(d.cols)),
		nrows: len(rows),
	}
	for j, name := range d.names {
		out.index[name] = j
		col := make([]float64, len(rows))
		for k, i := range rows {
			col[k] = d.cols[j][i]
		}
		out.cols[j] = col
	}
	return out
}

// Matrix returns the named columns as an NRows×len(names) matrix, columns in
// the order given. Missing values are carried through as NaN.
func (d *Dataset) Matrix(names ...string) (*mat.Dense, error) {
	if err := d.RequireColumns("Dataset.Matrix", names...); err != nil {
		return nil, err
	}
	if d.nrows == 0 || len(names) == 0 {
		return nil, errors.NewValueError("Dataset.Matrix", "empty selection")
	}
	m := mat.NewDense(d.nrows, len(names), nil)
	for k, name := range names {
		m.SetCol(k, d.cols[d.index[name]])
	}
	return m, nil
}

// Vector returns the named column as a vector.
func (d *Dataset) Vector(name string) (*mat.VecDense, error) {
	col, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	if len(col) == 0 {
		return nil, errors.NewValueError("Dataset.Vector", "empty column")
	}
	return mat.NewVecDense(len(col), col), nil
}
