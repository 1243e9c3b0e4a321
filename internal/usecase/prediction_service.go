package usecase

import (
	"context"
	"errors"
	"time"

	"PatientPulse/internal/domain/models"
	domrepo "PatientPulse/internal/domain/repository"
	"PatientPulse/internal/services/alert"
	"PatientPulse/internal/services/features"
	"PatientPulse/internal/services/forecast"
	applogger "PatientPulse/pkg/logger"

	"github.com/google/uuid"
)

// Unavailable reasons reported by Snapshot.
const (
	ReasonModelNotLoaded      = "model not loaded"
	ReasonInsufficientHistory = "insufficient history"
	ReasonPredictionFailed    = "prediction failed"
	archiveTimeout            = 5 * time.Second
	healthTimeout             = 2 * time.Second
)

// PredictionService ties the store, feature synthesis, the engine and the
// alert classifier together. It holds no mutable state of its own.
type PredictionService struct {
	store      domrepo.ObservationStore
	engine     *forecast.Engine
	classifier *alert.Classifier
	archive    domrepo.ObservationArchive
	metrics    domrepo.Metrics
	log        *applogger.Logger
	now        func() time.Time
}

type Option func(*PredictionService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *PredictionService) { s.now = now }
}

func WithArchive(a domrepo.ObservationArchive) Option {
	return func(s *PredictionService) { s.archive = a }
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(s *PredictionService) { s.metrics = m }
}

func WithLogger(l *applogger.Logger) Option {
	return func(s *PredictionService) {
		if l != nil {
			s.log = l
		}
	}
}

func NewPredictionService(store domrepo.ObservationStore, engine *forecast.Engine, classifier *alert.Classifier, opts ...Option) *PredictionService {
	s := &PredictionService{
		store:      store,
		engine:     engine,
		classifier: classifier,
		log:        applogger.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the service clock.
func (s *PredictionService) Now() time.Time { return s.now() }

// ForecastNextHour predicts the patient count for now+1h.
func (s *PredictionService) ForecastNextHour(ctx context.Context) (models.Forecast, error) {
	now := s.now()
	target := features.NextHour(now)

	window, err := s.store.Tail(features.Lookback)
	if err != nil {
		return models.Forecast{}, err
	}
	fv, err := features.Synthesize(target, window)
	if err != nil {
		return models.Forecast{}, err
	}
	value, err := s.engine.Predict(ctx, fv)
	if err != nil {
		return models.Forecast{}, err
	}

	f := models.Forecast{
		ID:          uuid.NewString(),
		TargetTime:  target,
		Value:       value,
		Tier:        s.classifier.Classify(value),
		GeneratedAt: now,
	}
	if s.metrics != nil {
		s.metrics.RecordForecast(f.Value, f.Tier.Level)
	}
	s.log.Debug("forecast computed",
		applogger.Time("target", target),
		applogger.Int("patients", value),
		applogger.String("alert", string(f.Tier.Level)),
	)
	return f, nil
}

// Snapshot never fails: errors become Available=false with a reason.
func (s *PredictionService) Snapshot(ctx context.Context) models.PredictionSnapshot {
	snap := models.PredictionSnapshot{
		TargetTime:   features.NextHour(s.now()),
		ModelLoaded:  s.engine.Loaded(),
		Thresholds:   s.classifier.Thresholds(),
		HistoryCount: s.store.Len(),
	}
	if last, ok := s.store.Last(); ok {
		snap.HistoryTail = last.Timestamp
	}

	f, err := s.ForecastNextHour(ctx)
	if err != nil {
		snap.Reason = unavailableReason(err)
		s.log.Warn("forecast unavailable", applogger.String("reason", snap.Reason), applogger.Error(err))
		return snap
	}
	snap.TargetTime = f.TargetTime
	snap.Forecast = &f
	snap.Available = true
	return snap
}

func unavailableReason(err error) string {
	var ih *models.InsufficientHistoryError
	switch {
	case errors.Is(err, models.ErrModelUnavailable):
		return ReasonModelNotLoaded
	case errors.As(err, &ih):
		return ReasonInsufficientHistory
	default:
		return ReasonPredictionFailed
	}
}

// ClassifyHistory tiers every stored observation, index-aligned with All().
func (s *PredictionService) ClassifyHistory(_ context.Context) []models.ClassifiedObservation {
	all := s.store.All()
	out := make([]models.ClassifiedObservation, len(all))
	for i, o := range all {
		out[i] = models.ClassifiedObservation{Observation: o, Tier: s.classifier.Classify(o.Patients)}
	}
	return out
}

func (s *PredictionService) Thresholds() models.Thresholds {
	return s.classifier.Thresholds()
}

// Classify exposes the configured classifier for single counts.
func (s *PredictionService) Classify(count int) models.AlertTier {
	return s.classifier.Classify(count)
}

// Ingest appends obs, then archives it. Archive failures are logged only:
// the in-memory series is the source of truth for forecasting.
func (s *PredictionService) Ingest(ctx context.Context, obs models.Observation) error {
	if err := s.store.Append(obs); err != nil {
		if s.metrics != nil {
			s.metrics.RecordError("ingest_rejected")
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordObservation(obs.Patients)
	}
	if s.archive == nil {
		return nil
	}
	actx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()
	if err := s.archive.Store(actx, obs); err != nil {
		s.log.Error("archive observation failed",
			applogger.Time("ts", obs.Timestamp),
			applogger.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordError("archive_store")
		}
	}
	return nil
}

// Health reports readiness. The archive is pinged when configured; an
// unreachable archive does not make the service unhealthy.
func (s *PredictionService) Health(ctx context.Context) models.Health {
	n := s.store.Len()
	h := models.Health{
		ModelLoaded:      s.engine.Loaded(),
		HistoryAvailable: n >= features.Lookback,
		HistoryLength:    n,
		Thresholds:       s.classifier.Thresholds(),
		CurrentTime:      s.now(),
		Archive:          models.ArchiveDisabled,
	}
	if s.archive != nil {
		pctx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()
		h.Archive = models.ArchiveOK
		if err := s.archive.Health(pctx); err != nil {
			s.log.Warn("archive health check failed", applogger.Error(err))
			h.Archive = models.ArchiveUnreachable
		}
	}
	return h
}

// HistoryLength is the number of stored observations. Unlike Health it
// never touches the archive.
func (s *PredictionService) HistoryLength() int { return s.store.Len() }

// HistoryTail is the timestamp of the newest observation, zero if empty.
func (s *PredictionService) HistoryTail() time.Time {
	last, _ := s.store.Last()
	return last.Timestamp
}
