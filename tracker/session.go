package tracker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ayoisaiah/respite/internal/models"
	"github.com/ayoisaiah/respite/internal/timeutil"
)

// Start begins a new session in working mode. It refuses to reinitialize a
// session that is already in progress.
func (t *Tracker) Start(work, rest *models.Activity) error {
	if t.active {
		return ErrSessionActive
	}

	if work == nil || rest == nil {
		return ErrMissingSelection
	}

	if work.Kind != models.KindWork || rest.Kind != models.KindRest {
		return ErrKindMismatch
	}

	now := t.clock.Now()

	// Journal rows left behind by a session that could not be restored are
	// stale once a new session begins.
	t.journal = nil
	t.enqueue("clear stale journal", false, func() error {
		return t.db.ClearJournal(timeutil.Date(now))
	})

	t.workActivity = work
	t.restActivity = rest
	t.active = true
	t.working = true
	t.paused = false
	t.sessionStart = now
	t.segmentStart = now
	t.depletedNotified = false

	t.sched.start(taskWork, now)
	t.sched.start(taskRest, now)

	t.persistState()

	slog.Info(
		"session started",
		"work", work.Name,
		"rest", rest.Name,
	)

	return nil
}

// SwitchMode updates the selected work/rest activities and, when doSwitch
// is set, flips between working and resting. While paused only the
// selection is updated; the mode toggles take effect when the session
// resumes. Calling it with no session in progress is a no-op.
func (t *Tracker) SwitchMode(work, rest *models.Activity, doSwitch bool) {
	if !t.active {
		return
	}

	// Close out the running segment before touching the selection so time
	// before this instant stays attributed to the previous mode and
	// activity. While paused the open span belongs to the pause sentinel
	// and is flushed on resume instead.
	if !t.paused {
		t.closeSegment(t.clock.Now())
	}

	if work != nil {
		if work.Kind == models.KindWork {
			t.workActivity = work
		} else {
			slog.Warn(
				"ignoring work selection of wrong kind",
				"activity", work.Name,
				"kind", work.Kind,
			)
		}
	}

	if rest != nil {
		if rest.Kind == models.KindRest {
			t.restActivity = rest
		} else {
			slog.Warn(
				"ignoring rest selection of wrong kind",
				"activity", rest.Name,
				"kind", rest.Kind,
			)
		}
	}

	if !t.paused && doSwitch {
		t.working = !t.working
	}

	t.persistState()
}

// Pause suspends the timers. The segment recorded up to this instant is
// attributed to the activity that was running. Pausing an already paused
// or inactive session is a no-op.
func (t *Tracker) Pause() {
	if !t.active || t.paused {
		return
	}

	// closeSegment resets segmentStart, which doubles as the pause-start
	// timestamp for the sentinel entry written on resume.
	t.closeSegment(t.clock.Now())

	t.paused = true

	t.persistState()
}

// Resume lifts a pause, journaling the elapsed pause interval under the
// pause sentinel id. Resuming a session that is not paused is a no-op.
func (t *Tracker) Resume() {
	if !t.active || !t.paused {
		return
	}

	t.closeSegment(t.clock.Now())

	t.paused = false

	t.persistState()
}

// End archives the current session into history, applies the daily
// carryover reset to the rest ledger, and returns the machine to idle.
func (t *Tracker) End() error {
	if !t.active {
		return ErrNoSession
	}

	now := t.clock.Now()

	// Both tickers must be fully stopped before finalization so a late
	// tick cannot mutate the ledger after the session is archived.
	t.sched.stop(taskWork)
	t.sched.stop(taskRest)

	// Flushes the pending pause segment when ending while paused, or the
	// final real-activity segment otherwise.
	t.closeSegment(now)

	// Preferences are re-read here so edits made while the session ran
	// govern this reset.
	if prefs, err := t.db.Preferences(); err == nil {
		t.prefs = *prefs
	} else {
		slog.Error("unable to refresh preferences, using loaded values",
			"error", err)
	}

	hist := &models.History{
		Date:            timeutil.Date(now),
		StartTime:       t.sessionStart,
		EndTime:         now,
		WorkTime:        t.ledger.WorkTime,
		RestAccumulated: t.ledger.Accumulated,
		RestConsumed:    t.ledger.Consumed,
		Journal:         append([]models.JournalEntry(nil), t.journal...),
	}

	err := t.archive(hist)
	if err != nil {
		// The session stays live so no accounting is lost; the tickers
		// resume and the user can retry ending it.
		t.sched.start(taskWork, now)
		t.sched.start(taskRest, now)

		return fmt.Errorf("archiving session: %w", err)
	}

	t.ledger.Reset(t.prefs.CarryOverPercent, timeutil.Date(now))

	ledger := t.ledger
	t.enqueue("persist reset ledger", true, func() error {
		return t.db.UpdateLedger(&ledger)
	})

	for _, date := range journalDates(hist.Journal) {
		d := date

		t.enqueue("clear folded journal", false, func() error {
			return t.db.ClearJournal(d)
		})
	}

	t.active = false
	t.working = false
	t.paused = false
	t.sessionStart = time.Time{}
	t.segmentStart = time.Time{}
	t.workActivity = nil
	t.restActivity = nil
	t.journal = nil
	t.depletedNotified = false

	t.persistState()
	t.removeStatusFile()

	slog.Info(
		"session archived",
		"date", hist.Date,
		"work_time", hist.WorkTime,
		"rest_accumulated", hist.RestAccumulated,
		"rest_consumed", hist.RestConsumed,
	)

	t.postSession(hist)

	return nil
}

// archive persists the history record, retrying a few times since losing
// an entire session to a transient write failure is not acceptable.
func (t *Tracker) archive(hist *models.History) error {
	var err error

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		err = t.db.AppendHistory(hist)
		if err == nil {
			return nil
		}

		slog.Error(
			"unable to archive session",
			"attempt", attempt,
			"error", err,
		)
	}

	return err
}

// closeSegment appends a journal entry spanning from the open segment's
// start to now, attributed to the logically active activity (the pause
// sentinel while paused), then opens the next segment at now. The journal
// therefore stays a gap-free, non-overlapping partition of the session.
// With no open segment it does nothing.
func (t *Tracker) closeSegment(now time.Time) {
	if t.segmentStart.IsZero() {
		return
	}

	start := t.segmentStart

	// The clock went backwards. Record a zero-length segment rather than
	// corrupting the journal with a negative span.
	if now.Before(start) {
		now = start
	}

	id := models.PauseActivityID

	var act *models.Activity

	if !t.paused {
		if t.working {
			act = t.workActivity
		} else {
			act = t.restActivity
		}

		if act != nil {
			id = act.ID
		}
	}

	entry := models.JournalEntry{
		ActivityID: id,
		StartTime:  start,
		EndTime:    now,
		Date:       timeutil.Date(start),
	}

	t.journal = append(t.journal, entry)

	e := entry
	t.enqueue("append journal entry", true, func() error {
		return t.db.AppendJournalEntry(&e)
	})

	if act != nil {
		act.TotalTimeSpent += now.Sub(start)

		a := *act
		t.enqueue("update activity total", false, func() error {
			return t.db.UpdateActivity(&a)
		})
	}

	t.segmentStart = now
}

// persistState saves the session flags so an interrupted session resumes
// in the same logical state after a restart.
func (t *Tracker) persistState() {
	s := models.SessionState{
		Active:       t.active,
		Working:      t.working,
		Paused:       t.paused,
		StartTime:    t.sessionStart,
		SegmentStart: t.segmentStart,
	}

	if t.workActivity != nil {
		s.WorkActivityID = t.workActivity.ID
	}

	if t.restActivity != nil {
		s.RestActivityID = t.restActivity.ID
	}

	t.enqueue("update session state", true, func() error {
		return t.db.UpdateSessionState(&s)
	})
}

// journalDates returns the distinct calendar dates the journal touches, in
// first-seen order. A session that runs past midnight spans two.
func journalDates(journal []models.JournalEntry) []string {
	var dates []string

	seen := make(map[string]struct{})

	for _, e := range journal {
		if _, ok := seen[e.Date]; ok {
			continue
		}

		seen[e.Date] = struct{}{}

		dates = append(dates, e.Date)
	}

	return dates
}
