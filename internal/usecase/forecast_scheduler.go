package usecase

import (
	"context"
	"time"

	domrepo "PatientPulse/internal/domain/repository"
	applogger "PatientPulse/pkg/logger"
)

// ForecastScheduler computes the next-hour forecast on a fixed interval
// and publishes it.
type ForecastScheduler struct {
	svc       *PredictionService
	publisher domrepo.ForecastPublisher
	interval  time.Duration
	log       *applogger.Logger
}

func NewForecastScheduler(svc *PredictionService, publisher domrepo.ForecastPublisher, interval time.Duration, log *applogger.Logger) *ForecastScheduler {
	if log == nil {
		log = applogger.NewNop()
	}
	return &ForecastScheduler{svc: svc, publisher: publisher, interval: interval, log: log}
}

// Run ticks until ctx is done, then closes the publisher. The first
// forecast is produced immediately.
func (s *ForecastScheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}
	defer s.closePublisher()
	s.Tick(ctx)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one forecast+publish cycle. Failures are logged.
func (s *ForecastScheduler) Tick(ctx context.Context) {
	f, err := s.svc.ForecastNextHour(ctx)
	if err != nil {
		s.log.Warn("scheduled forecast skipped", applogger.Error(err))
		return
	}
	s.log.Info("scheduled forecast",
		applogger.String("id", f.ID),
		applogger.Time("target", f.TargetTime),
		applogger.Int("patients", f.Value),
		applogger.String("alert", string(f.Tier.Level)),
	)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, f); err != nil {
		s.log.Error("publish forecast failed", applogger.String("id", f.ID), applogger.Error(err))
	}
}

func (s *ForecastScheduler) closePublisher() {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Close(); err != nil {
		s.log.Warn("close forecast publisher", applogger.Error(err))
	}
}
