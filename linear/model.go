package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
	"github.com/YuminosukeSato/scorecast/preprocessing"
)

// Kind identifies the variant of a fitted Model.
type Kind string

const (
	KindLinear     Kind = "linear"
	KindPolynomial Kind = "poly"
)

// Model is a fitted regression model: either *LinearModel or
// *PolynomialModel. The set of variants is closed.
type Model interface {
	Kind() Kind
	// Degree is 0 for linear models.
	Degree() int
	// NFeatures is the raw feature count the model was trained on.
	NFeatures() int
	// Predict checks X against NFeatures and returns one prediction per row.
	Predict(X mat.Matrix) (*mat.VecDense, error)
	// Regressor exposes the fitted OLS solver.
	Regressor() *LinearRegression

	sealed()
}

// LinearModel is OLS on the raw features.
type LinearModel struct {
	reg *LinearRegression
}

// PolynomialModel is OLS on the polynomial expansion of the raw features.
type PolynomialModel struct {
	degree int
	poly   *preprocessing.PolynomialFeatures
	reg    *LinearRegression
}

// TrainLinear fits OLS with intercept on X.
func TrainLinear(X mat.Matrix, y mat.Vector) (*LinearModel, error) {
	reg := NewLinearRegression()
	if err := reg.Fit(X, y); err != nil {
		return nil, errors.Wrap(err, "train linear model")
	}
	log.GetLoggerWithName("linear").Info("model trained",
		log.ModelKindKey, string(KindLinear),
		log.EstimatorIDKey, reg.ID(),
		log.SamplesKey, y.Len(),
		log.FeaturesKey, reg.NFeatures(),
	)
	return &LinearModel{reg: reg}, nil
}

// TrainPolynomial expands X to the given degree (>= 2) and fits OLS with
// intercept on the expansion.
func TrainPolynomial(X mat.Matrix, y mat.Vector, degree int) (*PolynomialModel, error) {
	poly, err := preprocessing.NewPolynomialFeatures(degree)
	if err != nil {
		return nil, err
	}
	XPoly, err := poly.FitTransform(X)
	if err != nil {
		return nil, errors.Wrap(err, "train polynomial model")
	}
	reg := NewLinearRegression()
	if err := reg.Fit(XPoly, y); err != nil {
		return nil, errors.Wrapf(err, "train polynomial model of degree %d", degree)
	}
	log.GetLoggerWithName("linear").Info("model trained",
		log.ModelKindKey, string(KindPolynomial),
		log.DegreeKey, degree,
		log.EstimatorIDKey, reg.ID(),
		log.SamplesKey, y.Len(),
		log.FeaturesKey, poly.NOutputFeatures,
	)
	return &PolynomialModel{degree: degree, poly: poly, reg: reg}, nil
}

func (*LinearModel) Kind() Kind                     { return KindLinear }
func (*LinearModel) Degree() int                    { return 0 }
func (m *LinearModel) NFeatures() int               { return m.reg.NFeatures() }
func (m *LinearModel) Regressor() *LinearRegression { return m.reg }
func (*LinearModel) sealed()                        {}

// Predict implements Model.
func (m *LinearModel) Predict(X mat.Matrix) (*mat.VecDense, error) {
	return m.reg.Predict(X)
}

func (*PolynomialModel) Kind() Kind                     { return KindPolynomial }
func (m *PolynomialModel) Degree() int                  { return m.degree }
func (m *PolynomialModel) NFeatures() int               { return m.poly.NFeaturesIn }
func (m *PolynomialModel) Regressor() *LinearRegression { return m.reg }
func (*PolynomialModel) sealed()                        {}

// Predict implements Model. X holds raw features; it is re-expanded to the
// training degree before the regression is applied.
func (m *PolynomialModel) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if c := columns(X); c != m.poly.NFeaturesIn {
		return nil, errors.NewDimensionError("PolynomialModel.Predict", m.poly.NFeaturesIn, c, 1)
	}
	XPoly, err := m.poly.Transform(X)
	if err != nil {
		return nil, err
	}
	return m.reg.Predict(XPoly)
}

// Terms names the expanded columns for the given raw feature names.
func (m *PolynomialModel) Terms(features []string) ([]string, error) {
	return m.poly.FeatureNames(features)
}
