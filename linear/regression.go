// Package linear は最小二乗法による線形回帰と、線形・多項式モデルの
// 学習・予測・永続化を提供します。
package linear

import (
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scorecast/core/model"
	"github.com/YuminosukeSato/scorecast/metrics"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
)

// LinearRegression は切片付きの最小二乗線形回帰モデル
//
// X と y を中心化した上で特異値分解 (thin SVD) により最小ノルム解を求める。
// 特徴量数がサンプル数を上回る場合やランク落ちの場合でも解が定まる。
type LinearRegression struct {
	// State は学習状態と学習時の入力形状
	State *model.StateManager

	// Coef は学習された係数
	Coef []float64

	// Intercept は学習された切片
	Intercept float64

	// Rank は中心化した X の実効ランク
	Rank int

	// Singular は中心化した X の特異値（降順）
	Singular []float64

	id           string
	fitIntercept bool
	rcond        float64
}

var _ model.Regressor = (*LinearRegression)(nil)

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		State:        model.NewStateManager(),
		id:           uuid.NewString(),
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

func (lr *LinearRegression) logger() log.Logger {
	return log.GetLoggerWithName("linear").With(
		log.ModelNameKey, "LinearRegression",
		log.EstimatorIDKey, lr.id,
	)
}

// Fit はモデルを訓練データで学習させる
func (lr *LinearRegression) Fit(X mat.Matrix, y mat.Vector) (err error) {
	const op = "LinearRegression.Fit"
	defer errors.Recover(&err, op)

	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if y.Len() != n {
		return errors.NewDimensionError(op, n, y.Len(), 0)
	}
	if err := errors.CheckMatrix(op, X, n, p); err != nil {
		return err
	}
	ys := mat.Col(nil, 0, y)
	if err := errors.CheckNumericalStability(op, ys, 0); err != nil {
		return err
	}

	// 中心化: 切片は後から ȳ − x̄·β として復元する
	xc := mat.DenseCopyOf(X)
	xMean := make([]float64, p)
	yMean := 0.0
	if lr.fitIntercept {
		col := make([]float64, n)
		for j := 0; j < p; j++ {
			mat.Col(col, j, xc)
			xMean[j] = stat.Mean(col, nil)
			floats.AddConst(-xMean[j], col)
			xc.SetCol(j, col)
		}
		yMean = stat.Mean(ys, nil)
		floats.AddConst(-yMean, ys)
	}

	var svd mat.SVD
	if ok := svd.Factorize(xc, mat.SVDThin); !ok {
		return errors.NewModelError(op, "svd factorization failed", errors.ErrSingularMatrix)
	}

	rcond := lr.rcond
	if rcond <= 0 {
		rcond = epsilon * float64(max(n, p))
	}
	rank := svd.Rank(rcond)

	coef := mat.NewVecDense(p, nil)
	if rank > 0 {
		svd.SolveVecTo(coef, mat.NewVecDense(n, ys), rank)
	}
	beta := coef.RawVector().Data
	if err := errors.CheckNumericalStability(op, beta, 0); err != nil {
		return err
	}

	lr.Coef = beta
	lr.Intercept = yMean - floats.Dot(xMean, beta)
	lr.Rank = rank
	lr.Singular = svd.Values(nil)
	lr.State.SetFitted(p, n)

	lr.logger().Debug("fit completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, p,
		"rank", rank,
	)
	return nil
}

// epsilon は float64 のマシンイプシロン
var epsilon = math.Nextafter(1, 2) - 1

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := lr.State.RequireFitted("LinearRegression", "Predict"); err != nil {
		return nil, err
	}
	if err := lr.State.RequireFeatures("LinearRegression.Predict", columns(X)); err != nil {
		return nil, err
	}

	r, _ := X.Dims()
	pred := mat.NewVecDense(r, nil)
	pred.MulVec(X, mat.NewVecDense(len(lr.Coef), lr.Coef))
	for i := 0; i < r; i++ {
		pred.SetVec(i, pred.AtVec(i)+lr.Intercept)
	}
	return pred, nil
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X mat.Matrix, y *mat.VecDense) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, pred)
}

// Coefficients は学習された係数のコピーを返す
func (lr *LinearRegression) Coefficients() []float64 {
	return append([]float64(nil), lr.Coef...)
}

// IsFitted はモデルが学習済みかどうかを返す
func (lr *LinearRegression) IsFitted() bool {
	return lr.State.IsFitted()
}

// NFeatures は学習時の特徴量数を返す
func (lr *LinearRegression) NFeatures() int {
	p, _ := lr.State.GetDimensions()
	return p
}

// ID はログに出力されるインスタンスIDを返す
func (lr *LinearRegression) ID() string {
	return lr.id
}

func columns(X mat.Matrix) int {
	_, c := X.Dims()
	return c
}
