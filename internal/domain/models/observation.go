package models

import "time"

// Observation is one hourly patient count.
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	Patients  int       `json:"patients"`
}

// ClassifiedObservation pairs a stored observation with its alert tier.
type ClassifiedObservation struct {
	Observation
	Tier AlertTier `json:"alert"`
}
