package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}

	got, ok = ParseTime(strconv.FormatInt(ts*1000, 10))
	if !ok || got.Unix() != ts {
		t.Fatalf("unexpected unix ms %v", got)
	}
}

func TestParseTimeChartLayout(t *testing.T) {
	got, ok := ParseTime("2024-07-01 15:00")
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeInvalid(t *testing.T) {
	for _, s := range []string{"", "yesterday", "-5", "2024-13-01 10:00"} {
		if _, ok := ParseTime(s); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestFormatHour(t *testing.T) {
	cases := map[time.Time]string{
		time.Date(2024, 7, 1, 15, 42, 0, 0, time.UTC): "03:00 PM",
		time.Date(2024, 7, 1, 0, 5, 0, 0, time.UTC):   "12:00 AM",
		time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC):   "09:00 AM",
	}
	for in, want := range cases {
		if got := FormatHour(in); got != want {
			t.Fatalf("FormatHour(%v) = %q, want %q", in, got, want)
		}
	}
	if got := FormatChart(time.Date(2024, 7, 1, 15, 4, 0, 0, time.UTC)); got != "2024-07-01 15:04" {
		t.Fatalf("FormatChart = %q", got)
	}
}
