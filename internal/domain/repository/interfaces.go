package repository

import (
	"context"

	"PatientPulse/internal/domain/models"
)

// ObservationStore is the ordered, append-only hourly series.
type ObservationStore interface {
	Append(obs models.Observation) error
	Tail(n int) ([]models.Observation, error)
	All() []models.Observation
	Last() (models.Observation, bool)
	Len() int
}

// ObservationArchive persists observations outside the process.
type ObservationArchive interface {
	Store(ctx context.Context, obs models.Observation) error
	StoreBatch(ctx context.Context, obs []models.Observation) error
	LoadRecent(ctx context.Context, n int) ([]models.Observation, error)
	Health(ctx context.Context) error
}

// ForecastPublisher ships forecasts to downstream consumers.
type ForecastPublisher interface {
	Publish(ctx context.Context, f models.Forecast) error
	Close() error
}

type Metrics interface {
	RecordForecast(value int, level models.AlertLevel)
	RecordObservation(patients int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
