// Package modelselection はK分割交差検証と、交差検証による多項式次数の選択を提供します。
package modelselection

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorecast/metrics"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
)

// Fold は1つの分割における学習用・検証用の行インデックス
type Fold struct {
	Train []int
	Test  []int
}

// KFold はK分割交差検証の分割器
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    int64
}

// Split は n 行を NSplits 個の連続した検証ブロックに分割する。
// 先頭の n % NSplits 個の分割は1行多くなる。Shuffle が真の場合、
// ブロック化の前にインデックスを Seed で並べ替える。
func (kf KFold) Split(n int) ([]Fold, error) {
	if kf.NSplits < 2 {
		return nil, errors.NewValueErrorf("KFold.Split", "n_splits must be at least 2, got %d", kf.NSplits)
	}
	if n < kf.NSplits {
		return nil, errors.NewValueErrorf("KFold.Split",
			"cannot split %d samples into %d folds", n, kf.NSplits)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.Seed), uint64(kf.Seed)))
		r.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := n / kf.NSplits
	remainder := n % kf.NSplits

	start := 0
	for i := range folds {
		size := foldSize
		if i < remainder {
			size++
		}
		end := start + size

		test := make([]int, size)
		copy(test, indices[start:end])

		train := make([]int, 0, n-size)
		train = append(train, indices[:start]...)
		train = append(train, indices[end:]...)

		folds[i] = Fold{Train: train, Test: test}
		start = end
	}
	return folds, nil
}

// FitPredictFunc は学習データで推定器を学習し、検証データの予測値を返す
type FitPredictFunc func(XTrain *mat.Dense, yTrain *mat.VecDense, XTest *mat.Dense) (*mat.VecDense, error)

// CrossValScore は各分割の検証RMSEを分割順に返す
func CrossValScore(X mat.Matrix, y mat.Vector, folds []Fold, fitPredict FitPredictFunc) ([]float64, error) {
	scores := make([]float64, len(folds))
	for i, fold := range folds {
		rmse, err := foldRMSE(X, y, fold, fitPredict)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", i)
		}
		scores[i] = rmse
	}
	return scores, nil
}

func foldRMSE(X mat.Matrix, y mat.Vector, fold Fold, fitPredict FitPredictFunc) (float64, error) {
	XTrain, yTrain := takeRows(X, y, fold.Train)
	XTest, yTest := takeRows(X, y, fold.Test)

	pred, err := fitPredict(XTrain, yTrain, XTest)
	if err != nil {
		return 0, err
	}
	return metrics.RMSE(yTest, pred)
}

func takeRows(X mat.Matrix, y mat.Vector, rows []int) (*mat.Dense, *mat.VecDense) {
	_, c := X.Dims()
	Xs := mat.NewDense(len(rows), c, nil)
	ys := mat.NewVecDense(len(rows), nil)
	for i, r := range rows {
		for j := 0; j < c; j++ {
			Xs.Set(i, j, X.At(r, j))
		}
		ys.SetVec(i, y.AtVec(r))
	}
	return Xs, ys
}
