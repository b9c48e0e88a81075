// Package tracker operates the Respite session timer: it owns the session
// state machine, drives the periodic work and rest ticks, keeps the rest
// ledger consistent, and archives completed sessions.
//
// All state mutation is serialized onto the goroutine that calls the
// command methods and Tick. Live, that goroutine is the Run event loop;
// boundary layers talk to it through Dispatch and Events. Tests call the
// command methods directly with a fake clock.
package tracker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayoisaiah/respite/config"
	"github.com/ayoisaiah/respite/internal/models"
	"github.com/ayoisaiah/respite/internal/timeutil"
	"github.com/ayoisaiah/respite/store"
)

// Tracker runs the session state machine. It is not safe for concurrent
// use: exactly one goroutine may call its methods.
type Tracker struct {
	db    store.DB
	opts  *config.App
	clock timeutil.Clock

	active  bool
	working bool
	paused  bool

	sessionStart time.Time
	// segmentStart is the start of the currently open journal segment.
	// Zero means no segment is open.
	segmentStart time.Time

	workActivity *models.Activity
	restActivity *models.Activity

	ledger models.RestLedger
	prefs  models.UserPreferences

	journal []models.JournalEntry

	// depletedNotified gates the rest-exhausted notification to once per
	// depletion.
	depletedNotified bool

	sched  *scheduler
	cmds   chan Command
	writes chan writeOp
	events chan Snapshot
}

// Snapshot is the observable state published to boundary layers after
// every mutation.
type Snapshot struct {
	Active        bool          `json:"active"`
	Working       bool          `json:"working"`
	Paused        bool          `json:"paused"`
	WorkTime      time.Duration `json:"work_time"`
	RestRemaining time.Duration `json:"rest_remaining"`
	WorkActivity  string        `json:"work_activity"`
	RestActivity  string        `json:"rest_activity"`
	SessionStart  time.Time     `json:"session_start"`
	Segments      int           `json:"segments"`
}

// New constructs a tracker, creating the singleton ledger and preference
// rows on first run and restoring an interrupted session if the persisted
// session flags say one was active.
func New(
	db store.DB,
	opts *config.App,
	clock timeutil.Clock,
) (*Tracker, error) {
	t := &Tracker{
		db:     db,
		opts:   opts,
		clock:  clock,
		sched:  newScheduler(),
		cmds:   make(chan Command, 8),
		events: make(chan Snapshot, 16),
	}

	t.sched.register(taskWork, t.workTick)
	t.sched.register(taskRest, t.restTick)

	err := t.bootstrap()
	if err != nil {
		return nil, err
	}

	return t, nil
}

// bootstrap loads the singleton rows, creating them explicitly when they
// do not exist yet, and restores a previously interrupted session.
func (t *Tracker) bootstrap() error {
	now := t.clock.Now()

	prefs, err := t.db.Preferences()

	switch {
	case err == nil:
		t.prefs = *prefs
	case errors.Is(err, store.ErrNotFound):
		t.prefs = models.UserPreferences{
			CarryOverPercent: t.opts.DefaultCarryOver,
			DayStart:         t.opts.DefaultDayStart,
		}

		err = t.db.UpdatePreferences(&t.prefs)
		if err != nil {
			return fmt.Errorf("creating default preferences: %w", err)
		}
	default:
		return fmt.Errorf("loading preferences: %w", err)
	}

	ledger, err := t.db.Ledger()

	switch {
	case err == nil:
		t.ledger = *ledger
	case errors.Is(err, store.ErrNotFound):
		t.ledger = models.RestLedger{
			LastResetDate: timeutil.Date(now),
		}

		err = t.db.UpdateLedger(&t.ledger)
		if err != nil {
			return fmt.Errorf("creating rest ledger: %w", err)
		}
	default:
		return fmt.Errorf("loading rest ledger: %w", err)
	}

	state, err := t.db.SessionState()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("loading session state: %w", err)
	}

	if state.Active {
		t.restoreSession(state, now)
	}

	return nil
}

// restoreSession resumes an interrupted session in the same logical state
// it was in when the process exited. The time the process spent down stays
// attributed to whatever segment was open, keeping the journal gap-free.
func (t *Tracker) restoreSession(s *models.SessionState, now time.Time) {
	t.active = true
	t.working = s.Working
	t.paused = s.Paused
	t.sessionStart = s.StartTime
	t.segmentStart = s.SegmentStart

	if t.segmentStart.IsZero() {
		t.segmentStart = now
	}

	t.workActivity = t.loadActivity(s.WorkActivityID, models.KindWork)
	t.restActivity = t.loadActivity(s.RestActivityID, models.KindRest)

	journal, err := t.db.JournalForDate(timeutil.Date(now))
	if err != nil {
		slog.Error("unable to reload session journal", "error", err)
	}

	for _, e := range journal {
		t.journal = append(t.journal, *e)
	}

	slog.Info(
		"restored interrupted session",
		"started", t.sessionStart,
		"working", t.working,
		"paused", t.paused,
		"segments", len(t.journal),
	)
}

// loadActivity resolves a persisted activity id. Dangling ids (the user
// deleted the activity while a session was live) degrade to a placeholder
// instead of failing the restore.
func (t *Tracker) loadActivity(
	id int,
	kind models.ActivityKind,
) *models.Activity {
	a, err := t.db.GetActivity(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("unable to load activity", "id", id, "error", err)
		}

		return &models.Activity{
			ID:         id,
			Name:       "unknown",
			Kind:       kind,
			Multiplier: 1,
		}
	}

	return a
}

// Ledger returns a copy of the in-memory rest ledger.
func (t *Tracker) Ledger() models.RestLedger {
	return t.ledger
}

// Preferences returns a copy of the loaded user preferences.
func (t *Tracker) Preferences() models.UserPreferences {
	return t.prefs
}

// Journal returns the journal entries recorded so far in the current
// session.
func (t *Tracker) Journal() []models.JournalEntry {
	return append([]models.JournalEntry(nil), t.journal...)
}

// Active reports whether a session is in progress.
func (t *Tracker) Active() bool {
	return t.active
}

func (t *Tracker) snapshot() Snapshot {
	snap := Snapshot{
		Active:        t.active,
		Working:       t.working,
		Paused:        t.paused,
		WorkTime:      t.ledger.WorkTime,
		RestRemaining: t.ledger.Remaining(),
		SessionStart:  t.sessionStart,
		Segments:      len(t.journal),
	}

	if t.workActivity != nil {
		snap.WorkActivity = t.workActivity.Name
	}

	if t.restActivity != nil {
		snap.RestActivity = t.restActivity.Name
	}

	return snap
}
