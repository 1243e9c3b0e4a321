package service

import (
	"context"

	"PatientPulse/internal/domain/models"
)

// Model is the opaque regression model. Implementations must be safe
// for concurrent use once loaded.
type Model interface {
	Predict(ctx context.Context, features models.FeatureVector) (float64, error)
}

// NoiseSource supplies the random component of synthetic history.
type NoiseSource interface {
	Next() float64
}
