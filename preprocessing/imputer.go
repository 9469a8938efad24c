package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorecast/core/model"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
)

// SimpleImputer は欠損値 (NaN) を列平均で補完するTransformer
type SimpleImputer struct {
	model.BaseEstimator

	// Statistics は各特徴量の補完値（NaNを除いた平均）
	Statistics []float64

	// NFeatures は特徴量の数
	NFeatures int
}

var _ model.Transformer = (*SimpleImputer)(nil)

// NewSimpleImputer は平均補完を行うSimpleImputerを作成する
//
// 使用例:
//
//	imputer := preprocessing.NewSimpleImputer()
//	XFilled, err := imputer.FitTransform(X)
func NewSimpleImputer() *SimpleImputer {
	return &SimpleImputer{}
}

// Fit はNaNを無視して各列の平均を計算する
//
// 観測値が一つもない列は平均が定義できないためValueErrorとなる。
func (s *SimpleImputer) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SimpleImputer.Fit", "empty data", errors.ErrEmptyData)
	}

	stats := make([]float64, c)
	for j := 0; j < c; j++ {
		sum, count := 0.0, 0
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		if count == 0 {
			return errors.NewValueErrorf("SimpleImputer.Fit", "column %d has no observed values", j)
		}
		stats[j] = sum / float64(count)
	}

	s.Statistics = stats
	s.NFeatures = c
	s.SetFitted()
	return nil
}

// Transform はNaNを学習済みの列平均で置き換えた新しい行列を返す
func (s *SimpleImputer) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("SimpleImputer", "Transform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("SimpleImputer.Transform", s.NFeatures, c, 1)
	}

	result := mat.DenseCopyOf(X)
	for i := 0; i < r; i++ {
		row := result.RawRowView(i)
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = s.Statistics[j]
			}
		}
	}
	return result, nil
}

// FitTransform はFitとTransformを同時に実行する
func (s *SimpleImputer) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
