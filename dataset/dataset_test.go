package dataset

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
)

var nan = math.NaN()

func mustNew(t *testing.T, names []string, cols ...[]float64) *Dataset {
	t.Helper()
	ds, err := New(names, cols)
	require.NoError(t, err)
	return ds
}

func TestNewRejectsBadShapes(t *testing.T) {
	_, err := New([]string{"a", "b"}, [][]float64{{1, 2}, {1}})
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = New([]string{"a", "a"}, [][]float64{{1}, {2}})
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestNormalizeColumnName(t *testing.T) {
	tests := map[string]string{
		" Study Hours ":  "study_hours",
		"Final Score":    "final_score",
		"attendance":     "attendance",
		"Previous Score": "previous_score",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeColumnName(in), in)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	ds := mustNew(t, []string{"x"}, []float64{1, 2, 3})

	col, err := ds.Column("x")
	require.NoError(t, err)
	col[0] = 99

	assert.Equal(t, 1.0, ds.At(0, "x"))

	_, err = ds.Column("y")
	var schemaErr *errors.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"x"}, schemaErr.Available)
}

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"Study Hours,Sleep Hours, Final Score",
		"5,7,80",
		"NA,6.5,",
		"abc,8,71.5",
		"3, 9 ,60",
	}, "\n")

	ds, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"study_hours", "sleep_hours", "final_score"}, ds.Names())
	assert.Equal(t, 4, ds.NRows())
	assert.True(t, IsMissing(ds.At(1, "study_hours")))
	assert.True(t, IsMissing(ds.At(1, "final_score")))
	assert.True(t, IsMissing(ds.At(2, "study_hours")))
	assert.Equal(t, 9.0, ds.At(3, "sleep_hours"))
}

func TestReadCSVDuplicateNormalizedNames(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Study Hours,study_hours\n1,2\n"))
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestWriteCSVRoundTrip(t *testing.T) {
	ds := mustNew(t, []string{"x", "y"}, []float64{1.25, nan}, []float64{3, 4})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1.25, back.At(0, "x"))
	assert.True(t, IsMissing(back.At(1, "x")))
	assert.Equal(t, Fingerprint(ds), Fingerprint(back))
}

func TestClean(t *testing.T) {
	testLogger := log.UseTestLogger(t, log.LevelInfo)

	ds := mustNew(t, []string{"study_hours", "sleep_hours", "final_score"},
		[]float64{1, nan, nan, 4, 5},
		[]float64{7, nan, 6, 8, nan},
		[]float64{50, 60, nan, 70, 80},
	)

	cleaned, err := Clean(ds, "final_score", []string{"study_hours", "sleep_hours"})
	require.NoError(t, err)

	// row 1 has no features, row 2 has no target
	y, _ := cleaned.Column("final_score")
	assert.Equal(t, []float64{50, 70, 80}, y)
	assert.LessOrEqual(t, cleaned.NRows(), ds.NRows())
	for _, v := range y {
		assert.False(t, IsMissing(v))
	}

	assert.Equal(t, 5, ds.NRows(), "input must not be modified")
	assert.True(t, testLogger.ContainsField(log.RowsRemovedKey, 2.0))
}

func TestCleanMissingColumn(t *testing.T) {
	ds := mustNew(t, []string{"sleep_hours", "final_score"}, []float64{7}, []float64{70})

	_, err := Clean(ds, "final_score", []string{"study_hours"})
	require.Error(t, err)

	var schemaErr *errors.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"study_hours"}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "study_hours")
	assert.Contains(t, err.Error(), "sleep_hours")
}

func TestCleanInvalidRoles(t *testing.T) {
	ds := mustNew(t, []string{"x", "y"}, []float64{1}, []float64{2})

	for name, features := range map[string][]string{
		"empty":     nil,
		"target":    {"x", "y"},
		"duplicate": {"x", "x"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Clean(ds, "y", features)
			var valErr *errors.ValueError
			assert.True(t, errors.As(err, &valErr))
		})
	}
}

func linearDataset(t *testing.T, n int) *Dataset {
	t.Helper()
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = 2*float64(i) + 1
	}
	return mustNew(t, []string{"x", "y"}, x, y)
}

func TestSplitSizes(t *testing.T) {
	ds := linearDataset(t, 20)

	res, err := Split(ds, []string{"x"}, "y", 0.2, 42)
	require.NoError(t, err)

	assert.Equal(t, 16, res.XTrain.RawMatrix().Rows)
	assert.Equal(t, 4, res.XTest.RawMatrix().Rows)
	assert.Equal(t, 16, res.YTrain.Len())
	assert.Equal(t, 4, res.YTest.Len())

	seen := map[int]bool{}
	for _, i := range append(append([]int(nil), res.TrainIndex...), res.TestIndex...) {
		assert.False(t, seen[i], "row %d assigned twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, 20)

	for k, i := range res.TestIndex {
		assert.Equal(t, float64(i), res.XTest.At(k, 0))
		assert.Equal(t, 2*float64(i)+1, res.YTest.AtVec(k))
	}
}

func TestSplitReproducible(t *testing.T) {
	ds := linearDataset(t, 30)

	a, err := Split(ds, []string{"x"}, "y", 0.3, 7)
	require.NoError(t, err)
	b, err := Split(ds, []string{"x"}, "y", 0.3, 7)
	require.NoError(t, err)
	c, err := Split(ds, []string{"x"}, "y", 0.3, 8)
	require.NoError(t, err)

	assert.Equal(t, a.TestIndex, b.TestIndex)
	assert.NotEqual(t, a.TestIndex, c.TestIndex)
}

func TestSplitInvalid(t *testing.T) {
	ds := linearDataset(t, 3)

	for _, frac := range []float64{0, 1, -0.1, 1.5, math.NaN(), 0.1} {
		_, err := Split(ds, []string{"x"}, "y", frac, 1)
		var valErr *errors.ValueError
		assert.True(t, errors.As(err, &valErr), "fraction %v", frac)
	}

	empty := mustNew(t, []string{"x", "y"}, nil, nil)
	_, err := Split(empty, []string{"x"}, "y", 0.2, 1)
	assert.Error(t, err)
}

func TestSplitImputesWithMeans(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { errors.SetWarningHandler(nil) })

	ds := mustNew(t, []string{"x", "z", "y"},
		[]float64{1, nan, 3, 4, 2},
		[]float64{1, 1, 1, 1, 1},
		[]float64{1, 2, 3, 4, 5},
	)

	res, err := Split(ds, []string{"x", "z"}, "y", 0.4, 3)
	require.NoError(t, err)

	for k, i := range append(append([]int(nil), res.TrainIndex...), res.TestIndex...) {
		var v float64
		if k < len(res.TrainIndex) {
			v = res.XTrain.At(k, 0)
		} else {
			v = res.XTest.At(k-len(res.TrainIndex), 0)
		}
		if i == 1 {
			assert.Equal(t, 2.5, v)
		}
	}

	require.Len(t, warnings, 1)
	var iw *errors.ImputationWarning
	require.True(t, errors.As(warnings[0], &iw))
	assert.Equal(t, []string{"x"}, iw.Columns)
}

func TestSplitRejectsUnobservedFeature(t *testing.T) {
	ds := mustNew(t, []string{"x", "y"}, []float64{nan, nan, nan}, []float64{1, 2, 3})

	_, err := Split(ds, []string{"x"}, "y", 0.34, 1)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestGenerateDemo(t *testing.T) {
	ds, err := GenerateDemo(DemoRows, DemoSeed)
	require.NoError(t, err)
	assert.Equal(t, DemoRows, ds.NRows())
	assert.Equal(t, demoColumns, ds.Names())

	again, err := GenerateDemo(DemoRows, DemoSeed)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint(ds), Fingerprint(again))

	checkRange := func(name string, lo, hi float64) {
		col, err := ds.Column(name)
		require.NoError(t, err)
		for _, v := range col {
			assert.GreaterOrEqual(t, v, lo, name)
			assert.LessOrEqual(t, v, hi, name)
		}
	}
	checkRange("Study Hours", 1, 12)
	checkRange("Sleep Hours", 4, 10)
	checkRange("Attendance", 60, 100)
	checkRange("Participation", 0.4, 1)
	checkRange("Final Score", 0, 100)
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	demo := filepath.Join(dir, "data", "student_performance_demo.csv")

	got, err := ResolvePath(filepath.Join(dir, "missing.csv"), "", demo)
	require.NoError(t, err)
	assert.Equal(t, demo, got)

	ds, err := Load(demo)
	require.NoError(t, err)
	assert.Equal(t, []string{"study_hours", "sleep_hours", "attendance", "participation", "final_score"}, ds.Names())

	primary := filepath.Join(dir, "students.csv")
	require.NoError(t, os.WriteFile(primary, []byte("x,y\n1,2\n"), 0o644))
	got, err = ResolvePath(primary, "", demo)
	require.NoError(t, err)
	assert.Equal(t, primary, got)

	got, err = ResolvePath(filepath.Join(dir, "nope.csv"), primary, demo)
	require.NoError(t, err)
	assert.Equal(t, primary, got)

	_, err = ResolvePath(filepath.Join(dir, "nope.csv"), "", "")
	assert.Error(t, err)
}

func TestFingerprintChangesWithValues(t *testing.T) {
	a := mustNew(t, []string{"x"}, []float64{1, 2})
	b := mustNew(t, []string{"x"}, []float64{1, 3})
	c := mustNew(t, []string{"z"}, []float64{1, 2})

	assert.Len(t, Fingerprint(a), 16)
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
}
