package features

import (
	"errors"
	"testing"
	"time"

	"PatientPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlySeries(start time.Time, counts ...int) []models.Observation {
	out := make([]models.Observation, len(counts))
	for i, c := range counts {
		out[i] = models.Observation{Timestamp: start.Add(time.Duration(i) * time.Hour), Patients: c}
	}
	return out
}

func seq(n, from int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = from + i
	}
	return out
}

func TestSynthesizeLagsAndRollingMeans(t *testing.T) {
	// v0..v23 = 10..33, most recent is 33
	start := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC) // Wednesday
	window := hourlySeries(start, seq(24, 10)...)
	target := window[23].Timestamp.Add(time.Hour)

	v, err := Synthesize(target, window)
	require.NoError(t, err)

	assert.Equal(t, 33.0, v[models.FeatLag1])
	assert.Equal(t, 32.0, v[models.FeatLag2])
	assert.Equal(t, 31.0, v[models.FeatLag3])
	assert.Equal(t, 28.0, v[models.FeatLag6])
	assert.Equal(t, 22.0, v[models.FeatLag12])
	assert.Equal(t, 16.0, v[models.FeatLag18])
	assert.Equal(t, 10.0, v[models.FeatLag24])

	assert.Equal(t, (31.0+32+33)/3, v[models.FeatRolling3h])
	assert.Equal(t, (28.0+29+30+31+32+33)/6, v[models.FeatRolling6h])
	assert.Equal(t, 21.5, v[models.FeatRolling24h])
	assert.Equal(t, 27.5, v[models.FeatRolling12h])
	assert.Equal(t, 24.5, v[models.FeatRolling18h])
	assert.Equal(t, 330.0, v[models.FeatLag1Lag24])
}

func TestSynthesizeUsesLastLookbackEntries(t *testing.T) {
	start := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)
	window := hourlySeries(start, seq(30, 1)...)
	v, err := Synthesize(window[29].Timestamp.Add(time.Hour), window)
	require.NoError(t, err)
	assert.Equal(t, 30.0, v[models.FeatLag1])
	assert.Equal(t, 7.0, v[models.FeatLag24])
}

func TestSynthesizeCalendarFeatures(t *testing.T) {
	start := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	window := hourlySeries(start, seq(24, 20)...)
	// Saturday 2024-03-09 14:00
	target := time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)

	v, err := Synthesize(target, window)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v[models.FeatDayOfWeek])
	assert.Equal(t, 14.0, v[models.FeatHour])
	assert.Equal(t, 1.0, v[models.FeatHoliday])
	assert.Equal(t, 196.0, v[models.FeatHourSq])
	assert.Equal(t, 14.0, v[models.FeatHourHoliday])
	assert.Equal(t, 1.0, v[models.FeatPeakHour])
	assert.Equal(t, 0.0, v[models.FeatSeasonMonsoon])
	assert.Equal(t, 1.0, v[models.FeatSeasonSummer])
	assert.Equal(t, 0.0, v[models.FeatSeasonWinter])
}

func TestSynthesizeWeekdayIsNotHoliday(t *testing.T) {
	start := time.Date(2024, 12, 2, 0, 0, 0, 0, time.UTC)
	window := hourlySeries(start, seq(24, 5)...)
	target := time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC) // Monday

	v, err := Synthesize(target, window)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v[models.FeatDayOfWeek])
	assert.Equal(t, 0.0, v[models.FeatHoliday])
	assert.Equal(t, 0.0, v[models.FeatHourHoliday])
	assert.Equal(t, 0.0, v[models.FeatPeakHour])
	assert.Equal(t, 1.0, v[models.FeatSeasonWinter])
}

func TestSynthesizeInsufficientHistory(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, n := range []int{0, 1, 23} {
		window := hourlySeries(start, seq(n, 1)...)
		_, err := Synthesize(start.Add(time.Duration(n)*time.Hour), window)
		var ih *models.InsufficientHistoryError
		require.True(t, errors.As(err, &ih), "n=%d", n)
		assert.Equal(t, Lookback, ih.Need)
		assert.Equal(t, n, ih.Have)
	}
}

func TestSeasonFlagsExactlyOnePerMonth(t *testing.T) {
	for m := 1; m <= 12; m++ {
		monsoon, summer, winter := SeasonFlags(m)
		assert.Equal(t, 1, monsoon+summer+winter, "month %d", m)
	}
	monsoon, _, _ := SeasonFlags(6)
	assert.Equal(t, 1, monsoon)
	_, summer, _ := SeasonFlags(5)
	assert.Equal(t, 1, summer)
	_, _, winter := SeasonFlags(2)
	assert.Equal(t, 1, winter)
}

func TestPeakHour(t *testing.T) {
	for h := 0; h < 24; h++ {
		want := 0
		if h >= 10 && h <= 16 {
			want = 1
		}
		assert.Equal(t, want, PeakHour(h), "hour %d", h)
	}
	assert.Equal(t, 0, PeakHour(9))
	assert.Equal(t, 1, PeakHour(16))
}

func TestDayOfWeekMondayZero(t *testing.T) {
	monday := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i, DayOfWeek(monday.AddDate(0, 0, i)))
	}
}

func TestFeatureNamesOrder(t *testing.T) {
	want := []string{
		"dayofweek", "hour", "holiday", "lag1", "lag2", "lag3", "lag24", "lag6", "lag12", "lag18",
		"rolling_3h", "rolling_6h", "rolling_24h", "rolling_12h", "rolling_18h",
		"hour_sq", "hour_holiday", "lag1_lag24", "peak_hour",
		"season_Monsoon", "season_Summer", "season_Winter",
	}
	require.Len(t, models.FeatureNames, len(want))
	for i, n := range want {
		assert.Equal(t, n, models.FeatureNames[i])
	}
}

func TestHourKeyHalfHourZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+30*60)
	got := HourKey(time.Date(2024, 7, 1, 14, 47, 12, 0, ist))
	assert.Equal(t, time.Date(2024, 7, 1, 14, 0, 0, 0, ist), got)
}

func TestFeatureVectorNamedAccess(t *testing.T) {
	var v models.FeatureVector
	v[models.FeatLag24] = 17
	got, ok := v.Get("lag24")
	assert.True(t, ok)
	assert.Equal(t, 17.0, got)
	_, ok = v.Get("lag48")
	assert.False(t, ok)

	m := v.Map()
	assert.Len(t, m, models.NumFeatures)
	assert.Equal(t, 17.0, m["lag24"])
}
