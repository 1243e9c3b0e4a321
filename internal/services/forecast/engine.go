package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"PatientPulse/internal/domain/models"
	"PatientPulse/internal/domain/repository"
	domsvc "PatientPulse/internal/domain/service"
	"PatientPulse/pkg/logger"
)

// Engine turns a model's raw regression output into a patient count.
type Engine struct {
	model   domsvc.Model
	log     *logger.Logger
	metrics repository.Metrics
}

// NewEngine wraps model. A nil model yields an engine whose every
// prediction fails with ErrModelUnavailable.
func NewEngine(model domsvc.Model) *Engine {
	return &Engine{model: model, log: logger.NewNop()}
}

func (e *Engine) SetLogger(l *logger.Logger) {
	if l != nil {
		e.log = l
	}
}

func (e *Engine) SetMetrics(m repository.Metrics) { e.metrics = m }

// Loaded reports whether a model is attached.
func (e *Engine) Loaded() bool { return e.model != nil }

// Predict runs the model on fv, rounds half to even and clamps at zero.
func (e *Engine) Predict(ctx context.Context, fv models.FeatureVector) (int, error) {
	if e.model == nil {
		return 0, models.ErrModelUnavailable
	}
	start := time.Now()
	raw, err := e.invoke(ctx, fv)
	if e.metrics != nil {
		e.metrics.RecordLatency("model_predict", time.Since(start).Seconds())
	}
	if err != nil {
		perr := &models.PredictionError{Err: err}
		e.log.Error("model prediction failed", logger.Error(err))
		if e.metrics != nil {
			e.metrics.RecordError("prediction")
		}
		return 0, perr
	}
	return ClampRound(raw), nil
}

func (e *Engine) invoke(ctx context.Context, fv models.FeatureVector) (raw float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()
	raw, err = e.model.Predict(ctx, fv)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("model returned non-finite value %v", raw)
	}
	return raw, nil
}

// ClampRound rounds x half to even, floors the result at zero and
// saturates at math.MaxInt. Bounds are checked in float64 because the int
// conversion of an out-of-range value is implementation defined.
func ClampRound(x float64) int {
	r := math.RoundToEven(x)
	switch {
	case r <= 0:
		return 0
	case r >= math.MaxInt:
		return math.MaxInt
	}
	return int(r)
}
