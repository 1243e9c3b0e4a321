package alert

import (
	"testing"

	"PatientPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBoundaries(t *testing.T) {
	c := Default()
	cases := []struct {
		count int
		level models.AlertLevel
		color string
	}{
		{0, models.AlertNormal, "green"},
		{29, models.AlertNormal, "green"},
		{30, models.AlertMedium, "yellow"},
		{39, models.AlertMedium, "yellow"},
		{40, models.AlertHigh, "red"},
		{1000, models.AlertHigh, "red"},
	}
	for _, tc := range cases {
		tier := c.Classify(tc.count)
		assert.Equal(t, tc.level, tier.Level, "count %d", tc.count)
		assert.Equal(t, tc.color, tier.Color, "count %d", tc.count)
	}
	assert.Equal(t, "CRITICAL: High patient volume!", c.Classify(40).Message)
	assert.Equal(t, "WARNING: Elevated patient volume", c.Classify(30).Message)
	assert.Equal(t, "Normal patient volume", c.Classify(0).Message)
}

func TestClassifyMonotonic(t *testing.T) {
	c := Default()
	prev := -1
	for n := 0; n <= 200; n++ {
		rank := c.Classify(n).Level.Rank()
		require.GreaterOrEqual(t, rank, 0, "count %d yields unknown tier", n)
		require.GreaterOrEqual(t, rank, prev, "tier decreased at count %d", n)
		prev = rank
	}
}

func TestClassifierCustomThresholds(t *testing.T) {
	c, err := NewClassifier(models.Thresholds{High: 10, Medium: 5})
	require.NoError(t, err)
	assert.Equal(t, models.AlertNormal, c.Classify(4).Level)
	assert.Equal(t, models.AlertMedium, c.Classify(5).Level)
	assert.Equal(t, models.AlertHigh, c.Classify(10).Level)
	assert.Equal(t, models.Thresholds{High: 10, Medium: 5}, c.Thresholds())
}

func TestNewClassifierRejectsInvalid(t *testing.T) {
	_, err := NewClassifier(models.Thresholds{High: 20, Medium: 30})
	assert.Error(t, err)
	_, err = NewClassifier(models.Thresholds{High: 20, Medium: -1})
	assert.Error(t, err)
}
