package features

import (
	"time"

	"PatientPulse/internal/domain/models"
)

// Lookback is the number of trailing hourly observations a forecast needs.
const Lookback = 24

// Synthesize builds the feature vector for target from the trailing window.
// window must be chronological and end one hour before target; only its last
// Lookback entries are read.
func Synthesize(target time.Time, window []models.Observation) (models.FeatureVector, error) {
	var v models.FeatureVector
	if len(window) < Lookback {
		return v, &models.InsufficientHistoryError{Need: Lookback, Have: len(window)}
	}
	window = window[len(window)-Lookback:]

	dow := DayOfWeek(target)
	hour := target.Hour()
	month := int(target.Month())
	holiday := HolidayFlag(dow)

	v[models.FeatDayOfWeek] = float64(dow)
	v[models.FeatHour] = float64(hour)
	v[models.FeatHoliday] = float64(holiday)

	lag1 := Lag(window, 1)
	lag24 := Lag(window, 24)
	v[models.FeatLag1] = lag1
	v[models.FeatLag2] = Lag(window, 2)
	v[models.FeatLag3] = Lag(window, 3)
	v[models.FeatLag24] = lag24
	v[models.FeatLag6] = Lag(window, 6)
	v[models.FeatLag12] = Lag(window, 12)
	v[models.FeatLag18] = Lag(window, 18)

	v[models.FeatRolling3h] = RollingMean(window, 3)
	v[models.FeatRolling6h] = RollingMean(window, 6)
	v[models.FeatRolling24h] = RollingMean(window, 24)
	v[models.FeatRolling12h] = RollingMean(window, 12)
	v[models.FeatRolling18h] = RollingMean(window, 18)

	v[models.FeatHourSq] = float64(hour * hour)
	v[models.FeatHourHoliday] = float64(hour * holiday)
	v[models.FeatLag1Lag24] = lag1 * lag24
	v[models.FeatPeakHour] = float64(PeakHour(hour))

	monsoon, summer, winter := SeasonFlags(month)
	v[models.FeatSeasonMonsoon] = float64(monsoon)
	v[models.FeatSeasonSummer] = float64(summer)
	v[models.FeatSeasonWinter] = float64(winter)
	return v, nil
}

// Lag returns the count observed k hours before the hour following the window.
func Lag(window []models.Observation, k int) float64 {
	return float64(window[len(window)-k].Patients)
}

// RollingMean returns the arithmetic mean of the last w counts.
func RollingMean(window []models.Observation, w int) float64 {
	sum := 0
	for _, o := range window[len(window)-w:] {
		sum += o.Patients
	}
	return float64(sum) / float64(w)
}
