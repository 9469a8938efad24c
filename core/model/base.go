// Package model holds the pieces shared by every estimator: fitted-state
// bookkeeping, the estimator interfaces and persistence helpers.
package model

import "github.com/google/uuid"

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

// BaseEstimator は全てのモデルの基底となる構造体
type BaseEstimator struct {
	State EstimatorState
	// ID はログでインスタンスを識別するためのUUID
	ID string
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.State == Fitted
}

// SetFitted はモデルを学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.State = Fitted
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.State = NotFitted
}

// EstimatorID はインスタンスのIDを返す。未割り当ての場合は新しいUUIDを割り当てる。
func (e *BaseEstimator) EstimatorID() string {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return e.ID
}
