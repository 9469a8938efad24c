package dataset

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
	"github.com/YuminosukeSato/scorecast/preprocessing"
)

// SplitResult is a seeded train/test partition of a cleaned dataset.
// TrainIndex and TestIndex are row positions in the dataset that was split.
type SplitResult struct {
	XTrain, XTest *mat.Dense
	YTrain, YTest *mat.VecDense

	TrainIndex, TestIndex []int
	Features              []string
	Target                string
}

// Split builds the feature matrix in the order of features, fills missing
// feature values with column means computed over all rows, then partitions
// the rows with a permutation seeded by seed.
//
// The test set holds round(testFraction·n) rows. testFraction must lie in
// (0, 1) and both sides of the partition must be non-empty. The target must
// not contain missing values; run Clean first.
func Split(ds *Dataset, features []string, target string, testFraction float64, seed int64) (*SplitResult, error) {
	const op = "dataset.Split"
	if err := validateColumns(op, target, features); err != nil {
		return nil, err
	}
	if err := ds.RequireColumns(op, append(append([]string(nil), features...), target)...); err != nil {
		return nil, err
	}
	if !(testFraction > 0 && testFraction < 1) {
		return nil, errors.NewValueErrorf(op, "test fraction must be in (0, 1), got %v", testFraction)
	}
	n := ds.NRows()
	if n == 0 {
		return nil, errors.NewValueError(op, "dataset has no rows")
	}
	nTest := int(math.Round(testFraction * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		return nil, errors.NewValueErrorf(op, "test fraction %v of %d rows leaves an empty partition (train=%d, test=%d)",
			testFraction, n, nTrain, nTest)
	}

	y := ds.cols[ds.index[target]]
	for _, v := range y {
		if IsMissing(v) {
			return nil, errors.NewValueErrorf(op, "target %q has missing values; clean the dataset first", target)
		}
	}

	X, err := ds.Matrix(features...)
	if err != nil {
		return nil, err
	}
	X, err = imputeFeatures(op, X, features)
	if err != nil {
		return nil, err
	}

	perm := rand.New(rand.NewPCG(uint64(seed), uint64(seed))).Perm(n)
	res := &SplitResult{
		TestIndex:  append([]int(nil), perm[:nTest]...),
		TrainIndex: append([]int(nil), perm[nTest:]...),
		Features:   append([]string(nil), features...),
		Target:     target,
	}
	res.XTrain, res.YTrain = gather(X, y, res.TrainIndex)
	res.XTest, res.YTest = gather(X, y, res.TestIndex)

	log.GetLoggerWithName("dataset").Info("dataset split",
		log.OperationKey, log.OperationSplit,
		log.TrainRowsKey, nTrain,
		log.TestRowsKey, nTest,
		log.RandomSeedKey, seed,
	)
	return res, nil
}

// imputeFeatures replaces NaN cells with column means. A column with no
// observed value has no mean and is rejected.
func imputeFeatures(op string, X *mat.Dense, features []string) (*mat.Dense, error) {
	rows, cols := X.Dims()
	var imputedCols []string
	cells := 0
	for j := 0; j < cols; j++ {
		missing := 0
		for i := 0; i < rows; i++ {
			if IsMissing(X.At(i, j)) {
				missing++
			}
		}
		if missing == rows {
			return nil, errors.NewValueErrorf(op, "feature %q has no observed values", features[j])
		}
		if missing > 0 {
			imputedCols = append(imputedCols, features[j])
			cells += missing
		}
	}
	if cells == 0 {
		return X, nil
	}

	errors.Warn(errors.NewImputationWarning(imputedCols, cells))
	return preprocessing.NewSimpleImputer().FitTransform(X)
}

func gather(X *mat.Dense, y []float64, rows []int) (*mat.Dense, *mat.VecDense) {
	_, cols := X.Dims()
	xs := mat.NewDense(len(rows), cols, nil)
	ys := mat.NewVecDense(len(rows), nil)
	for k, i := range rows {
		xs.SetRow(k, X.RawRowView(i))
		ys.SetVec(k, y[i])
	}
	return xs, ys
}
