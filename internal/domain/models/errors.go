package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrModelUnavailable is returned when no model was loaded at startup.
	ErrModelUnavailable = errors.New("forecast model unavailable")
	// ErrInvalidObservation is returned for observations that can never be stored.
	ErrInvalidObservation = errors.New("invalid observation")
)

// InsufficientHistoryError reports fewer observations than a computation needs.
type InsufficientHistoryError struct {
	Need int
	Have int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: need %d hourly observations, have %d", e.Need, e.Have)
}

// OutOfOrderError reports an append that does not advance the series.
type OutOfOrderError struct {
	Tail time.Time
	Got  time.Time
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("out of order observation: %s is not after tail %s",
		e.Got.Format(time.RFC3339), e.Tail.Format(time.RFC3339))
}

// PredictionError wraps a failure raised by the underlying model.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }
