package models

// AlertLevel is the operational severity of a patient count.
type AlertLevel string

const (
	AlertNormal AlertLevel = "normal"
	AlertMedium AlertLevel = "medium"
	AlertHigh   AlertLevel = "high"
)

// Rank orders levels from least to most severe.
func (l AlertLevel) Rank() int {
	switch l {
	case AlertNormal:
		return 0
	case AlertMedium:
		return 1
	case AlertHigh:
		return 2
	default:
		return -1
	}
}

// AlertTier is a level with its display color and message.
type AlertTier struct {
	Level   AlertLevel `json:"level"`
	Color   string     `json:"color"`
	Message string     `json:"message"`
}

// Thresholds are the inclusive lower bounds of the medium and high tiers.
type Thresholds struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
}
