// Package models defines the entities persisted by Respite.
package models

import (
	"time"
)

// ActivityKind distinguishes activities that earn rest from activities
// that spend it.
type ActivityKind string

const (
	KindWork ActivityKind = "work"
	KindRest ActivityKind = "rest"
)

// PauseActivityID is the sentinel activity id used to tag journal
// segments during which the timer was paused. It never resolves to a
// catalog entry and readers must tolerate it.
const PauseActivityID = -1

// Activity is a user-defined task. Its multiplier scales how fast rest is
// accumulated (work activities) or consumed (rest activities).
type Activity struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	Kind           ActivityKind  `json:"kind"`
	Multiplier     float64       `json:"multiplier"`
	TotalTimeSpent time.Duration `json:"total_time_spent"`
}

// RestLedger is the singleton record tracking the rest budget. Remaining
// rest is derived, never stored: carried-over rest from previous days plus
// rest accumulated today, minus rest consumed today, floored at zero.
type RestLedger struct {
	CarriedOver   time.Duration `json:"carried_over"`
	Accumulated   time.Duration `json:"accumulated"`
	Consumed      time.Duration `json:"consumed"`
	WorkTime      time.Duration `json:"work_time"`
	LastResetDate string        `json:"last_reset_date"`
}

// Remaining reports the spendable rest balance. It is never negative.
func (l *RestLedger) Remaining() time.Duration {
	r := l.CarriedOver + l.Accumulated - l.Consumed
	if r < 0 {
		return 0
	}

	return r
}

// Accrue credits earned rest to the ledger.
func (l *RestLedger) Accrue(d time.Duration) {
	if d < 0 {
		return
	}

	l.Accumulated += d
}

// Consume debits spent rest from the ledger, clamped so that the remaining
// balance never goes below zero. It returns the amount actually consumed.
func (l *RestLedger) Consume(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}

	if r := l.Remaining(); d > r {
		d = r
	}

	l.Consumed += d

	return d
}

// Reset applies the daily carryover policy: the indicated percentage of the
// remaining balance survives into the new day, while the accumulated,
// consumed, and work-time counters are zeroed.
func (l *RestLedger) Reset(carryOverPercent int, date string) {
	carried := time.Duration(
		l.Remaining().Milliseconds()*int64(carryOverPercent)/100,
	) * time.Millisecond

	*l = RestLedger{
		CarriedOver:   carried,
		LastResetDate: date,
	}
}

// UserPreferences is the singleton record holding the daily reset policy.
type UserPreferences struct {
	// CarryOverPercent is the percentage of remaining rest preserved
	// across a daily reset, in [0, 100].
	CarryOverPercent int `json:"carry_over_percent"`
	// DayStart is the time of day ("HH:MM") at which the current day
	// rolls over for reset purposes.
	DayStart string `json:"day_start"`
}

// JournalEntry records one contiguous segment of a session attributed to a
// single activity, or to the pause sentinel.
type JournalEntry struct {
	ID         uint64    `json:"id"`
	ActivityID int       `json:"activity_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Date       string    `json:"date"`
}

// Duration reports the length of the segment.
func (e *JournalEntry) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// History is the immutable summary of a completed session, archived once
// at session end and never mutated afterwards.
type History struct {
	Date            string         `json:"date"`
	StartTime       time.Time      `json:"start_time"`
	EndTime         time.Time      `json:"end_time"`
	WorkTime        time.Duration  `json:"work_time"`
	RestAccumulated time.Duration  `json:"rest_accumulated"`
	RestConsumed    time.Duration  `json:"rest_consumed"`
	Journal         []JournalEntry `json:"journal"`
}

// SessionState is the singleton record of the live session flags. It is
// persisted on every transition so that an interrupted session resumes in
// the same logical state after a restart instead of reverting to idle.
type SessionState struct {
	Active         bool      `json:"active"`
	Working        bool      `json:"working"`
	Paused         bool      `json:"paused"`
	StartTime      time.Time `json:"start_time"`
	SegmentStart   time.Time `json:"segment_start"`
	WorkActivityID int       `json:"work_activity_id"`
	RestActivityID int       `json:"rest_activity_id"`
}
