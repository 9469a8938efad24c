// Package preprocessing contains the feature transforms applied before
// regression: polynomial expansion and mean imputation.
package preprocessing

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorecast/core/model"
	"github.com/YuminosukeSato/scorecast/core/parallel"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
)

// parallelRowThreshold is the row count above which expansion runs in
// parallel chunks.
const parallelRowThreshold = 2048

// PolynomialFeatures は多項式特徴量への展開を行うTransformer
//
// 出力列は次数1の項（入力順）、続いて次数2, 3, ... の項で、各次数内は
// 添字の重複組合せを辞書順に並べたもの。定数項は含まない。
// k 個の入力と次数 d に対して列数は C(k+d, d) − 1 となる。
type PolynomialFeatures struct {
	model.BaseEstimator

	// Degree は展開の最大次数 (>= 2)
	Degree int

	// NFeaturesIn は学習時の入力特徴量の数
	NFeaturesIn int

	// NOutputFeatures は出力特徴量の数
	NOutputFeatures int

	combos [][]int
}

var _ model.Transformer = (*PolynomialFeatures)(nil)

// NewPolynomialFeatures は新しいPolynomialFeaturesを作成する
//
// 使用例:
//
//	poly, err := preprocessing.NewPolynomialFeatures(3)
//	XPoly, err := poly.FitTransform(X)
func NewPolynomialFeatures(degree int) (*PolynomialFeatures, error) {
	if err := validateDegree("PolynomialFeatures", degree); err != nil {
		return nil, err
	}
	return &PolynomialFeatures{Degree: degree}, nil
}

func validateDegree(op string, degree int) error {
	if degree < 2 {
		return errors.NewValueErrorf(op, "degree must be >= 2, got %d", degree)
	}
	return nil
}

// Fit は入力の特徴量数を記録する
func (p *PolynomialFeatures) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("PolynomialFeatures.Fit", "empty data", errors.ErrEmptyData)
	}
	p.NFeaturesIn = c
	p.combos = combinations(c, p.Degree)
	p.NOutputFeatures = len(p.combos)
	p.SetFitted()
	return nil
}

// Transform は X を多項式特徴量に展開する
func (p *PolynomialFeatures) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PolynomialFeatures", "Transform")
	}
	_, c := X.Dims()
	if c != p.NFeaturesIn {
		return nil, errors.NewDimensionError("PolynomialFeatures.Transform", p.NFeaturesIn, c, 1)
	}
	return expandCombos(X, p.combos), nil
}

// FitTransform はFitとTransformを同時に実行する
func (p *PolynomialFeatures) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// FeatureNames は入力特徴量名に対応する出力列名を返す
func (p *PolynomialFeatures) FeatureNames(input []string) ([]string, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PolynomialFeatures", "FeatureNames")
	}
	if len(input) != p.NFeaturesIn {
		return nil, errors.NewDimensionError("PolynomialFeatures.FeatureNames", p.NFeaturesIn, len(input), 1)
	}
	return termNames(input, p.combos), nil
}

// ExpandPolynomial returns every monomial of X's columns with total degree
// 1..degree, excluding the constant. It is a pure function of its inputs.
func ExpandPolynomial(X mat.Matrix, degree int) (*mat.Dense, error) {
	if err := validateDegree("ExpandPolynomial", degree); err != nil {
		return nil, err
	}
	return expand(X, degree)
}

// expand is ExpandPolynomial without the degree >= 2 restriction; degree 1
// reproduces X.
func expand(X mat.Matrix, degree int) (*mat.Dense, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("ExpandPolynomial", "empty data", errors.ErrEmptyData)
	}
	return expandCombos(X, combinations(c, degree)), nil
}

// PolynomialFeatureNames names the columns produced by ExpandPolynomial, e.g.
// "a^2*b" for a·a·b.
func PolynomialFeatureNames(features []string, degree int) ([]string, error) {
	if err := validateDegree("PolynomialFeatureNames", degree); err != nil {
		return nil, err
	}
	return termNames(features, combinations(len(features), degree)), nil
}

// NumPolynomialFeatures returns C(k+d, d) − 1.
func NumPolynomialFeatures(k, degree int) int {
	// C(k+d, d) computed incrementally stays integral at every step.
	n := 1
	for i := 1; i <= degree; i++ {
		n = n * (k + i) / i
	}
	return n - 1
}

// combinations lists the index tuples of every term: degree 1 first, then
// each higher degree, each as non-decreasing tuples in lexicographic order.
func combinations(k, degree int) [][]int {
	combos := make([][]int, 0, NumPolynomialFeatures(k, degree))
	for d := 1; d <= degree; d++ {
		tuple := make([]int, d)
		for {
			combos = append(combos, append([]int(nil), tuple...))

			// advance to the next non-decreasing tuple
			pos := d - 1
			for pos >= 0 && tuple[pos] == k-1 {
				pos--
			}
			if pos < 0 {
				break
			}
			tuple[pos]++
			for j := pos + 1; j < d; j++ {
				tuple[j] = tuple[pos]
			}
		}
	}
	return combos
}

func expandCombos(X mat.Matrix, combos [][]int) *mat.Dense {
	r, _ := X.Dims()
	out := mat.NewDense(r, len(combos), nil)
	parallel.ParallelizeWithThreshold(r, parallelRowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := out.RawRowView(i)
			for j, combo := range combos {
				v := 1.0
				for _, idx := range combo {
					v *= X.At(i, idx)
				}
				row[j] = v
			}
		}
	})
	return out
}

func termNames(features []string, combos [][]int) []string {
	names := make([]string, len(combos))
	var b strings.Builder
	for j, combo := range combos {
		b.Reset()
		for start := 0; start < len(combo); {
			end := start
			for end < len(combo) && combo[end] == combo[start] {
				end++
			}
			if start > 0 {
				b.WriteByte('*')
			}
			b.WriteString(features[combo[start]])
			if power := end - start; power > 1 {
				b.WriteByte('^')
				b.WriteString(strconv.Itoa(power))
			}
			start = end
		}
		names[j] = b.String()
	}
	return names
}
