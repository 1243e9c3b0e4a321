package repository

import (
	"context"
	"time"

	"PatientPulse/internal/domain/models"
	domrepo "PatientPulse/internal/domain/repository"
)

// messagePublisher is the subset of pkg/kafka.Producer used here.
type messagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// ForecastEvent is the wire form of a published forecast.
type ForecastEvent struct {
	ID          string `json:"id"`
	TargetTime  string `json:"target_time"`
	Patients    int    `json:"patients"`
	Alert       string `json:"alert"`
	Message     string `json:"message"`
	GeneratedAt string `json:"generated_at"`
}

// KafkaForecastPublisher publishes forecasts keyed by target hour so
// repeated forecasts for one hour land on one partition.
type KafkaForecastPublisher struct {
	producer messagePublisher
	topic    string
}

func NewKafkaForecastPublisher(producer messagePublisher, topic string) *KafkaForecastPublisher {
	return &KafkaForecastPublisher{producer: producer, topic: topic}
}

func (p *KafkaForecastPublisher) Publish(ctx context.Context, f models.Forecast) error {
	key := f.TargetTime.UTC().Format("2006-01-02T15")
	return p.producer.Publish(ctx, p.topic, []byte(key), NewForecastEvent(f))
}

func NewForecastEvent(f models.Forecast) ForecastEvent {
	return ForecastEvent{
		ID:          f.ID,
		TargetTime:  f.TargetTime.Format(time.RFC3339),
		Patients:    f.Value,
		Alert:       string(f.Tier.Level),
		Message:     f.Tier.Message,
		GeneratedAt: f.GeneratedAt.Format(time.RFC3339),
	}
}

// Close does not close the producer; it is shared with the log collector
// and closed by whoever created it.
func (p *KafkaForecastPublisher) Close() error { return nil }

var _ domrepo.ForecastPublisher = (*KafkaForecastPublisher)(nil)
