package features

import "time"

// DayOfWeek returns the weekday with Monday=0 .. Sunday=6.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// HolidayFlag is 1 on weekends. Public holidays are not modelled.
func HolidayFlag(dayOfWeek int) int {
	if dayOfWeek >= 5 {
		return 1
	}
	return 0
}

// PeakHour is 1 between 10:00 and 16:59.
func PeakHour(hour int) int {
	if hour >= 10 && hour <= 16 {
		return 1
	}
	return 0
}

// SeasonFlags one-hot encodes the month: Monsoon Jun-Sep, Summer Mar-May,
// Winter Oct-Feb.
func SeasonFlags(month int) (monsoon, summer, winter int) {
	switch month {
	case 6, 7, 8, 9:
		monsoon = 1
	case 3, 4, 5:
		summer = 1
	case 10, 11, 12, 1, 2:
		winter = 1
	}
	return monsoon, summer, winter
}

// NextHour returns now+1h. Features only depend on the hour, weekday and
// month of the result.
func NextHour(now time.Time) time.Time {
	return now.Add(time.Hour)
}

// HourKey truncates t to the start of its local hour. time.Truncate works on
// absolute time and would misalign zones with half-hour offsets.
func HourKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
