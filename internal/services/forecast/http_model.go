package forecast

import (
	"context"
	"fmt"
	"time"

	"PatientPulse/internal/domain/models"
	domsvc "PatientPulse/internal/domain/service"
)

// HTTPModel delegates inference to a remote model server.
type HTTPModel struct {
	base     *HTTPServiceBase
	attempts int
}

func NewHTTPModel(baseURL string, timeout time.Duration, attempts int) *HTTPModel {
	return &HTTPModel{base: NewHTTPServiceBase(baseURL, timeout), attempts: attempts}
}

type predictReq struct {
	Columns  []string           `json:"columns"`
	Values   []float64          `json:"values"`
	Features map[string]float64 `json:"features"`
}

type predictResp struct {
	Prediction *float64 `json:"prediction"`
}

func (m *HTTPModel) Predict(ctx context.Context, fv models.FeatureVector) (float64, error) {
	req := predictReq{
		Columns:  models.FeatureNames[:],
		Values:   fv[:],
		Features: fv.Map(),
	}
	var pr predictResp
	if err := m.base.PostJSONWithRetry(ctx, "/predict", req, &pr, m.attempts); err != nil {
		return 0, fmt.Errorf("post predict: %w", err)
	}
	if pr.Prediction == nil {
		return 0, fmt.Errorf("model server returned no prediction")
	}
	return *pr.Prediction, nil
}

var _ domsvc.Model = (*HTTPModel)(nil)
