package linear

import (
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorecast/core/model"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/preprocessing"
)

// ToWeights converts a fitted model into its persisted form. features must
// name the raw training features in order.
func ToWeights(m Model, features []string, target string) (*model.ModelWeights, error) {
	const op = "linear.ToWeights"
	if len(features) != m.NFeatures() {
		return nil, errors.NewDimensionError(op, m.NFeatures(), len(features), 1)
	}
	reg := m.Regressor()
	mw := &model.ModelWeights{
		ModelType:    string(m.Kind()),
		Version:      model.WeightsVersion,
		Degree:       m.Degree(),
		Coefficients: reg.Coefficients(),
		Intercept:    reg.Intercept,
		Features:     append([]string(nil), features...),
		Target:       target,
		Metadata: map[string]interface{}{
			"rank":         reg.Rank,
			"estimator_id": reg.ID(),
		},
	}
	switch v := m.(type) {
	case *LinearModel:
		mw.Terms = append([]string(nil), features...)
	case *PolynomialModel:
		terms, err := v.Terms(features)
		if err != nil {
			return nil, err
		}
		mw.Terms = terms
	}
	return mw, nil
}

// FromWeights rebuilds a Model from its persisted form.
func FromWeights(mw *model.ModelWeights) (Model, error) {
	const op = "linear.FromWeights"
	if err := mw.Validate(); err != nil {
		return nil, err
	}
	k := len(mw.Features)
	if k == 0 {
		return nil, errors.NewValueError(op, "model weights carry no feature names")
	}

	reg := NewLinearRegression()
	reg.Coef = append([]float64(nil), mw.Coefficients...)
	reg.Intercept = mw.Intercept
	reg.Rank = len(mw.Coefficients)
	switch rank := mw.Metadata["rank"].(type) {
	case float64: // JSON
		reg.Rank = int(rank)
	case int: // gob
		reg.Rank = rank
	}
	reg.State.SetFitted(len(mw.Coefficients), 0)

	switch Kind(mw.ModelType) {
	case KindLinear:
		if len(mw.Coefficients) != k {
			return nil, errors.NewDimensionError(op, k, len(mw.Coefficients), 1)
		}
		return &LinearModel{reg: reg}, nil
	default:
		want := preprocessing.NumPolynomialFeatures(k, mw.Degree)
		if len(mw.Coefficients) != want {
			return nil, errors.NewDimensionError(op, want, len(mw.Coefficients), 1)
		}
		poly, err := preprocessing.NewPolynomialFeatures(mw.Degree)
		if err != nil {
			return nil, err
		}
		if err := poly.Fit(mat.NewDense(1, k, nil)); err != nil {
			return nil, err
		}
		return &PolynomialModel{degree: mw.Degree, poly: poly, reg: reg}, nil
	}
}

// SaveModel persists m at path: gob for a ".gob" extension, indented JSON
// otherwise.
func SaveModel(path string, m Model, features []string, target string) error {
	mw, err := ToWeights(m, features, target)
	if err != nil {
		return err
	}
	if isGob(path) {
		return model.SaveModel(mw, path)
	}
	return model.SaveWeightsJSON(mw, path)
}

// LoadModel reads a model written by SaveModel. The returned weights carry the
// feature names and target the model was trained with.
func LoadModel(path string) (Model, *model.ModelWeights, error) {
	var mw *model.ModelWeights
	if isGob(path) {
		mw = &model.ModelWeights{}
		if err := model.LoadModel(mw, path); err != nil {
			return nil, nil, err
		}
	} else {
		var err error
		if mw, err = model.LoadWeightsJSON(path); err != nil {
			return nil, nil, err
		}
	}
	m, err := FromWeights(mw)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "load model %s", path)
	}
	return m, mw, nil
}

func isGob(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gob")
}
