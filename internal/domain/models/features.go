package models

// Feature column indexes. The order is the column order the trained
// model was fitted on and must never be changed.
const (
	FeatDayOfWeek = iota
	FeatHour
	FeatHoliday
	FeatLag1
	FeatLag2
	FeatLag3
	FeatLag24
	FeatLag6
	FeatLag12
	FeatLag18
	FeatRolling3h
	FeatRolling6h
	FeatRolling24h
	FeatRolling12h
	FeatRolling18h
	FeatHourSq
	FeatHourHoliday
	FeatLag1Lag24
	FeatPeakHour
	FeatSeasonMonsoon
	FeatSeasonSummer
	FeatSeasonWinter

	NumFeatures
)

// FeatureNames lists the column names in model order.
var FeatureNames = [NumFeatures]string{
	FeatDayOfWeek:     "dayofweek",
	FeatHour:          "hour",
	FeatHoliday:       "holiday",
	FeatLag1:          "lag1",
	FeatLag2:          "lag2",
	FeatLag3:          "lag3",
	FeatLag24:         "lag24",
	FeatLag6:          "lag6",
	FeatLag12:         "lag12",
	FeatLag18:         "lag18",
	FeatRolling3h:     "rolling_3h",
	FeatRolling6h:     "rolling_6h",
	FeatRolling24h:    "rolling_24h",
	FeatRolling12h:    "rolling_12h",
	FeatRolling18h:    "rolling_18h",
	FeatHourSq:        "hour_sq",
	FeatHourHoliday:   "hour_holiday",
	FeatLag1Lag24:     "lag1_lag24",
	FeatPeakHour:      "peak_hour",
	FeatSeasonMonsoon: "season_Monsoon",
	FeatSeasonSummer:  "season_Summer",
	FeatSeasonWinter:  "season_Winter",
}

// FeatureVector is the model input, indexed by the Feat* constants.
type FeatureVector [NumFeatures]float64

// FeatureIndex returns the column index for name.
func FeatureIndex(name string) (int, bool) {
	for i, n := range FeatureNames {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// Get returns the value of the named feature.
func (v FeatureVector) Get(name string) (float64, bool) {
	i, ok := FeatureIndex(name)
	if !ok {
		return 0, false
	}
	return v[i], true
}

// Map returns the vector keyed by column name.
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for i, n := range FeatureNames {
		m[n] = v[i]
	}
	return m
}
