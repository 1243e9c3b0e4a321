package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"PatientPulse/internal/domain/models"
	domrepo "PatientPulse/internal/domain/repository"
	pkgkafka "PatientPulse/pkg/kafka"
	applogger "PatientPulse/pkg/logger"
	xutil "PatientPulse/pkg/util"
)

// KafkaObservationsHandler ingests hourly counts from Kafka.
type KafkaObservationsHandler struct {
	topic   string
	svc     *PredictionService
	metrics domrepo.Metrics
	log     *applogger.Logger
}

func NewKafkaObservationsHandler(topic string, svc *PredictionService, metrics domrepo.Metrics, log *applogger.Logger) *KafkaObservationsHandler {
	if log == nil {
		log = applogger.NewNop()
	}
	return &KafkaObservationsHandler{topic: topic, svc: svc, metrics: metrics, log: log}
}

func (h *KafkaObservationsHandler) Topic() string { return h.topic }

// incoming message schema: {"ts": RFC3339 | "2006-01-02 15:04" | unix s | unix ms, "patients": int}
type observationMessage struct {
	TS       json.RawMessage `json:"ts"`
	Patients *int            `json:"patients"`
}

// Handle appends the observation. Replayed or late messages are dropped
// with a warning; malformed ones are permanent failures (DLQ).
func (h *KafkaObservationsHandler) Handle(ctx context.Context, b []byte) error {
	obs, err := decodeObservation(b)
	if err != nil {
		h.recordError("consumer_unmarshal")
		return pkgkafka.PermanentError(err)
	}
	if h.metrics != nil {
		h.metrics.RecordLatency("ingest_e2e", time.Since(obs.Timestamp).Seconds())
	}

	err = h.svc.Ingest(ctx, obs)
	var ooo *models.OutOfOrderError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ooo):
		h.log.Warn("dropping out-of-order observation",
			applogger.Time("ts", ooo.Got),
			applogger.Time("tail", ooo.Tail),
			applogger.String("trace_id", pkgkafka.TraceID(ctx)),
		)
		return nil
	case errors.Is(err, models.ErrInvalidObservation):
		return pkgkafka.PermanentError(err)
	default:
		return err
	}
}

func (h *KafkaObservationsHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

func decodeObservation(b []byte) (models.Observation, error) {
	var m observationMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return models.Observation{}, fmt.Errorf("decode observation: %w", err)
	}
	if m.Patients == nil {
		return models.Observation{}, fmt.Errorf("decode observation: missing patients")
	}
	ts, err := parseTimestamp(m.TS)
	if err != nil {
		return models.Observation{}, err
	}
	return models.Observation{Timestamp: ts, Patients: *m.Patients}, nil
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 {
		return time.Time{}, fmt.Errorf("decode observation: missing ts")
	}
	text := string(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = s
	}
	t, ok := xutil.ParseTime(text)
	if !ok {
		return time.Time{}, fmt.Errorf("decode observation: unrecognised ts %s", raw)
	}
	return t, nil
}

var _ pkgkafka.MessageHandler = (*KafkaObservationsHandler)(nil)
