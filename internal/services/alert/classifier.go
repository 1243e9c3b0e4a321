package alert

import (
	"fmt"

	"PatientPulse/internal/domain/models"
)

const (
	DefaultHighThreshold   = 40
	DefaultMediumThreshold = 30
)

var (
	highTier   = models.AlertTier{Level: models.AlertHigh, Color: "red", Message: "CRITICAL: High patient volume!"}
	mediumTier = models.AlertTier{Level: models.AlertMedium, Color: "yellow", Message: "WARNING: Elevated patient volume"}
	normalTier = models.AlertTier{Level: models.AlertNormal, Color: "green", Message: "Normal patient volume"}
)

// Classifier maps patient counts to alert tiers. Thresholds are inclusive
// lower bounds of their tier.
type Classifier struct {
	th models.Thresholds
}

// NewClassifier validates thresholds and builds a Classifier.
func NewClassifier(th models.Thresholds) (*Classifier, error) {
	if th.Medium < 0 || th.High < 0 {
		return nil, fmt.Errorf("alert thresholds must be non-negative, got high=%d medium=%d", th.High, th.Medium)
	}
	if th.Medium > th.High {
		return nil, fmt.Errorf("alert medium threshold %d exceeds high threshold %d", th.Medium, th.High)
	}
	return &Classifier{th: th}, nil
}

// Default returns a Classifier with the 40/30 thresholds.
func Default() *Classifier {
	return &Classifier{th: models.Thresholds{High: DefaultHighThreshold, Medium: DefaultMediumThreshold}}
}

func (c *Classifier) Classify(count int) models.AlertTier {
	switch {
	case count >= c.th.High:
		return highTier
	case count >= c.th.Medium:
		return mediumTier
	default:
		return normalTier
	}
}

// Thresholds returns a copy of the configured thresholds.
func (c *Classifier) Thresholds() models.Thresholds { return c.th }
