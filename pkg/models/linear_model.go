package models

import (
	"fmt"
	"time"
)

// LinearModel is a fitted ordinary least squares model:
// y = Intercept + sum(Coefficients[i] * x[i])
type LinearModel struct {
	Features     []string  `json:"features"`     // 特徴量名（順序が入力順）
	Intercept    float64   `json:"intercept"`    // 切片
	Coefficients []float64 `json:"coefficients"` // 回帰係数
	RSquared     float64   `json:"r_squared"`    // 決定係数（学習データ）
	Samples      int       `json:"samples"`      // 学習に使った行数
	TrainedAt    time.Time `json:"trained_at"`
}

// Predict evaluates the model for one observation
func (m *LinearModel) Predict(x ...float64) (float64, error) {
	if len(x) != len(m.Coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.Coefficients), len(x))
	}
	y := m.Intercept
	for i, v := range x {
		y += m.Coefficients[i] * v
	}
	return y, nil
}

// Validate checks the artifact is internally consistent
func (m *LinearModel) Validate() error {
	if len(m.Coefficients) == 0 {
		return fmt.Errorf("model has no coefficients")
	}
	if len(m.Features) != len(m.Coefficients) {
		return fmt.Errorf("model has %d features but %d coefficients", len(m.Features), len(m.Coefficients))
	}
	return nil
}
