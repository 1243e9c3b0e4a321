package models

import "time"

// Forecast is a next-hour prediction with its alert tier.
type Forecast struct {
	ID          string    `json:"id"`
	TargetTime  time.Time `json:"target_time"`
	Value       int       `json:"value"`
	Tier        AlertTier `json:"alert"`
	GeneratedAt time.Time `json:"generated_at"`
}

// PredictionSnapshot is a forecast or the reason none is available.
type PredictionSnapshot struct {
	TargetTime   time.Time
	Forecast     *Forecast
	Available    bool
	Reason       string
	ModelLoaded  bool
	Thresholds   Thresholds
	HistoryTail  time.Time
	HistoryCount int
}

// Health summarises service readiness.
type Health struct {
	ModelLoaded      bool
	HistoryAvailable bool
	HistoryLength    int
	Thresholds       Thresholds
	CurrentTime      time.Time
	Archive          string // ArchiveDisabled, ArchiveOK or ArchiveUnreachable
}

const (
	ArchiveDisabled    = "disabled"
	ArchiveOK          = "ok"
	ArchiveUnreachable = "unreachable"
)
