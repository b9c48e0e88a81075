// Package timeutil provides utility functions and types for working with
// time-related operations.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the layout used for calendar-date keys throughout the
// datastore ("2024-11-30").
const DateFormat = "2006-01-02"

// Clock supplies the current wall-clock time. The real implementation is
// SystemClock; tests substitute their own to drive ticks deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Date formats a time value as a calendar-date key.
func Date(t time.Time) string {
	return t.Format(DateFormat)
}

// ParseDayStart parses a "HH:MM" time-of-day string.
func ParseDayStart(s string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time of day: %q", s)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in time of day: %q", s)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in time of day: %q", s)
	}

	return hour, minute, nil
}

// AtOrPastDayStart reports whether the time of day of t is at or past the
// "HH:MM" threshold. Malformed thresholds behave as midnight so that a bad
// preference value can never wedge the daily rollover shut.
func AtOrPastDayStart(t time.Time, dayStart string) bool {
	hour, minute, err := ParseDayStart(dayStart)
	if err != nil {
		return true
	}

	if t.Hour() != hour {
		return t.Hour() > hour
	}

	return t.Minute() >= minute
}

// FormatDuration expresses a duration as "HH:MM:SS".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalSecs := int64(d.Seconds())

	return fmt.Sprintf(
		"%02d:%02d:%02d",
		totalSecs/3600,
		(totalSecs%3600)/60,
		totalSecs%60,
	)
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		0,
		0,
		0,
		0,
		t.Location(),
	)
}

// RoundToEnd resets the given time to the end of the day.
func RoundToEnd(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		23,
		59,
		59,
		0,
		t.Location(),
	)
}

// ToKey converts a time value to a database key for Bolt.
func ToKey(t time.Time) []byte {
	return []byte(t.Format(time.RFC3339Nano))
}

// Period is a named reporting window for history queries.
type Period string

const (
	PeriodAllTime   Period = "all-time"
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	Period7Days     Period = "7days"
	Period14Days    Period = "14days"
	Period30Days    Period = "30days"
	Period90Days    Period = "90days"
	Period180Days   Period = "180days"
	Period365Days   Period = "365days"
)

var Range = map[Period]int{
	PeriodAllTime:   0,
	PeriodToday:     0,
	PeriodYesterday: -1,
	Period7Days:     -6,
	Period14Days:    -13,
	Period30Days:    -29,
	Period90Days:    -89,
	Period180Days:   -179,
	Period365Days:   -364,
}

var PeriodCollection = []Period{
	PeriodAllTime,
	PeriodToday,
	PeriodYesterday,
	Period7Days,
	Period14Days,
	Period30Days,
	Period90Days,
	Period180Days,
	Period365Days,
}
