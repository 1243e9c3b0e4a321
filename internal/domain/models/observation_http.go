package models

// Requests and responses of the forecast HTTP endpoints.

type IngestObservationRequest struct {
	Timestamp string `json:"timestamp" validate:"required"`
	Patients  int    `json:"patients" validate:"gte=0,lte=100000"`
}

// AnalyticsRequest bounds the returned window; zero means the whole history.
type AnalyticsRequest struct {
	Hours int `query:"hours" json:"hours" validate:"gte=0,lte=8760"`
}

// PredictResponse is the dashboard view of the next-hour forecast.
// Current and Alert are null while no forecast is available.
type PredictResponse struct {
	Current     *int       `json:"current"`
	NextHour    string     `json:"next_hour"`
	ModelStatus bool       `json:"model_status"`
	Alert       *AlertTier `json:"alert"`
	Threshold   Thresholds `json:"threshold"`
	Reason      string     `json:"reason,omitempty"`
}

type NextHourPoint struct {
	Timestamp  string     `json:"timestamp"`
	Prediction *int       `json:"prediction"`
	Alert      *AlertTier `json:"alert"`
}

// AnalyticsResponse carries the chart series; Timestamps, Actual and Alerts are index-aligned.
type AnalyticsResponse struct {
	Timestamps []string      `json:"timestamps"`
	Actual     []int         `json:"actual"`
	Alerts     []AlertTier   `json:"alerts"`
	NextHour   NextHourPoint `json:"next_hour"`
	Thresholds Thresholds    `json:"thresholds"`
}

type HealthResponse struct {
	Status              string     `json:"status"`
	ModelLoaded         bool       `json:"model_loaded"`
	HistoryAvailable    bool       `json:"history_available"`
	HistoryLength       int        `json:"history_length"`
	CurrentTime         string     `json:"current_time"`
	AlertThresholds     Thresholds `json:"alert_thresholds"`
	PredictionFrequency string     `json:"prediction_frequency"`
	Archive             string     `json:"archive"`
}

type IngestResponse struct {
	Observation   Observation `json:"observation"`
	Alert         AlertTier   `json:"alert"`
	HistoryLength int         `json:"history_length"`
}
