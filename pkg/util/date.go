package util

import (
	"strconv"
	"time"
)

// ChartLayout is the timestamp layout of the analytics chart.
const ChartLayout = "2006-01-02 15:04"

// ParseTime accepts RFC3339 (with or without fraction), the chart layout
// "2006-01-02 15:04" (UTC), and unix seconds or milliseconds.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if t, err := time.ParseInLocation(ChartLayout, s, time.UTC); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		if ts > 1e11 {
			return time.UnixMilli(ts).UTC(), true
		}
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// FormatHour renders the top of t's hour as "03:00 PM".
func FormatHour(t time.Time) string {
	return t.Format("03") + ":00 " + t.Format("PM")
}

// FormatChart renders t as "2006-01-02 15:04".
func FormatChart(t time.Time) string {
	return t.Format(ChartLayout)
}
