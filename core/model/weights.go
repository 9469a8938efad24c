package model

import (
	"encoding/json"

	"github.com/YuminosukeSato/scorecast/pkg/errors"
)

// WeightsVersion is the current ModelWeights schema version.
const WeightsVersion = "1"

// ModelWeights はモデルの重みを表す構造体（シリアライゼーション用）
type ModelWeights struct {
	// ModelType はモデルの種類（"linear", "poly"）
	ModelType string `json:"model_type"`

	// Version はモデルのバージョン（互換性チェック用）
	Version string `json:"version"`

	// Degree は多項式モデルの次数。線形モデルでは 0
	Degree int `json:"degree,omitempty"`

	// Coefficients は重み係数
	Coefficients []float64 `json:"coefficients"`

	// Intercept は切片
	Intercept float64 `json:"intercept"`

	// Features は元の特徴量の名前
	Features []string `json:"features,omitempty"`

	// Terms は係数に対応する展開後の項の名前
	Terms []string `json:"terms,omitempty"`

	// Target は目的変数の名前
	Target string `json:"target,omitempty"`

	// Metadata は追加のメタデータ（学習時の統計等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "decode model weights")
	}
	return mw.Validate()
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	const op = "ModelWeights.Validate"
	switch mw.ModelType {
	case "linear":
		if mw.Degree != 0 {
			return errors.NewValueErrorf(op, "linear model must not carry a degree, got %d", mw.Degree)
		}
	case "poly":
		if mw.Degree < 2 {
			return errors.NewValueErrorf(op, "polynomial degree must be >= 2, got %d", mw.Degree)
		}
	default:
		return errors.NewValueErrorf(op, "unknown model_type %q", mw.ModelType)
	}

	if mw.Version == "" {
		return errors.NewValueError(op, "version is required")
	}
	if len(mw.Coefficients) == 0 {
		return errors.NewValueError(op, "fitted model must have coefficients")
	}
	if len(mw.Terms) > 0 && len(mw.Terms) != len(mw.Coefficients) {
		return errors.NewDimensionError(op, len(mw.Coefficients), len(mw.Terms), 1)
	}
	return nil
}

// Clone はModelWeightsのディープコピーを作成
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := *mw
	clone.Coefficients = append([]float64(nil), mw.Coefficients...)
	clone.Features = append([]string(nil), mw.Features...)
	clone.Terms = append([]string(nil), mw.Terms...)
	if mw.Metadata != nil {
		clone.Metadata = make(map[string]interface{}, len(mw.Metadata))
		for k, v := range mw.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}
