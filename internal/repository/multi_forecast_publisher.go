package repository

import (
	"context"
	"errors"

	"PatientPulse/internal/domain/models"
	domrepo "PatientPulse/internal/domain/repository"
)

// MultiForecastPublisher fans a forecast out to every publisher and joins
// their errors. One failing sink does not stop the others.
type MultiForecastPublisher struct {
	pubs []domrepo.ForecastPublisher
}

// NewMultiForecastPublisher skips nil publishers.
func NewMultiForecastPublisher(pubs ...domrepo.ForecastPublisher) *MultiForecastPublisher {
	m := &MultiForecastPublisher{}
	for _, p := range pubs {
		if p != nil {
			m.pubs = append(m.pubs, p)
		}
	}
	return m
}

func (m *MultiForecastPublisher) Len() int { return len(m.pubs) }

func (m *MultiForecastPublisher) Publish(ctx context.Context, f models.Forecast) error {
	var errs []error
	for _, p := range m.pubs {
		if err := p.Publish(ctx, f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiForecastPublisher) Close() error {
	var errs []error
	for _, p := range m.pubs {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ domrepo.ForecastPublisher = (*MultiForecastPublisher)(nil)
