package forecast

import (
	"context"
	"fmt"

	"PatientPulse/internal/domain/models"
)

// LinearModel is intercept + sum(coef_i * x_i).
type LinearModel struct {
	Intercept float64
	weights   models.FeatureVector
}

type linearFile struct {
	Intercept    float64            `yaml:"intercept" json:"intercept"`
	Coefficients map[string]float64 `yaml:"coefficients" json:"coefficients"`
}

// NewLinearModel validates that every coefficient names a known feature.
func NewLinearModel(intercept float64, coef map[string]float64) (*LinearModel, error) {
	m := &LinearModel{Intercept: intercept}
	for name, w := range coef {
		idx, ok := models.FeatureIndex(name)
		if !ok {
			return nil, fmt.Errorf("unknown feature %q in coefficients", name)
		}
		m.weights[idx] = w
	}
	return m, nil
}

func (m *LinearModel) Predict(_ context.Context, fv models.FeatureVector) (float64, error) {
	y := m.Intercept
	for i, w := range m.weights {
		y += w * fv[i]
	}
	return y, nil
}
