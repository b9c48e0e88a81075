package tracker

import (
	"log/slog"
	"time"

	"github.com/ayoisaiah/respite/internal/timeutil"
)

const (
	taskWork = "work"
	taskRest = "rest"
)

type tickFunc func(now time.Time, elapsed time.Duration)

type task struct {
	run    tickFunc
	last   time.Time
	active bool
}

// scheduler owns the periodic tick tasks. It has no goroutines of its own:
// the tracker's event loop calls fire on every base tick, so task bodies
// run on the same serialized context as every other state mutation.
// Starting a started task or stopping a stopped one is a no-op.
type scheduler struct {
	tasks map[string]*task
	order []string
}

func newScheduler() *scheduler {
	return &scheduler{tasks: make(map[string]*task)}
}

func (s *scheduler) register(name string, fn tickFunc) {
	s.tasks[name] = &task{run: fn}
	s.order = append(s.order, name)
}

func (s *scheduler) start(name string, now time.Time) {
	t, ok := s.tasks[name]
	if !ok || t.active {
		return
	}

	t.active = true
	t.last = now
}

func (s *scheduler) stop(name string) {
	t, ok := s.tasks[name]
	if !ok {
		return
	}

	t.active = false
}

func (s *scheduler) fire(now time.Time) {
	for _, name := range s.order {
		t := s.tasks[name]
		if !t.active {
			continue
		}

		elapsed := now.Sub(t.last)
		t.last = now

		// Clock skew: never feed a negative delta into the ledger.
		if elapsed < 0 {
			elapsed = 0
		}

		t.run(now, elapsed)
	}
}

// Tick advances the tracker by one scheduling beat: it fires whichever
// tick tasks are active, evaluates the day boundary, and refreshes the
// status file.
func (t *Tracker) Tick(now time.Time) {
	t.sched.fire(now)
	t.maybeRollover(now)

	if t.active {
		err := t.writeStatusFile()
		if err != nil {
			slog.Warn("unable to write status file", "error", err)
		}
	}
}

// workTick accrues elapsed wall-clock time into the cumulative work-time
// counter. Its effect is gated off while paused or resting.
func (t *Tracker) workTick(_ time.Time, elapsed time.Duration) {
	if !t.active || t.paused || !t.working {
		return
	}

	t.ledger.WorkTime += elapsed

	t.persistLedger()
}

// restTick accrues rest while working and consumes it while resting, in
// both cases scaled by the selected activity's multiplier. Its effect is
// gated off while paused.
func (t *Tracker) restTick(_ time.Time, elapsed time.Duration) {
	if !t.active || t.paused {
		return
	}

	if t.working {
		if t.workActivity != nil {
			t.ledger.Accrue(scale(elapsed, t.workActivity.Multiplier))
			t.depletedNotified = false
		}
	} else if t.restActivity != nil {
		t.ledger.Consume(scale(elapsed, t.restActivity.Multiplier))

		if t.ledger.Remaining() == 0 && !t.depletedNotified {
			t.depletedNotified = true
			t.notifyDepleted()
		}
	}

	t.persistLedger()
}

// maybeRollover ends the session automatically once the calendar date has
// moved past the ledger's last reset AND the configured day-start time of
// day has been reached. Ending performs the reset and stamps the reset
// date, so the trigger cannot fire twice in one day.
func (t *Tracker) maybeRollover(now time.Time) {
	if !t.active {
		return
	}

	if t.ledger.LastResetDate == timeutil.Date(now) {
		return
	}

	if !timeutil.AtOrPastDayStart(now, t.prefs.DayStart) {
		return
	}

	slog.Info(
		"day boundary reached, ending session",
		"last_reset", t.ledger.LastResetDate,
		"day_start", t.prefs.DayStart,
	)

	err := t.End()
	if err != nil {
		slog.Error("automatic session end failed", "error", err)
		return
	}

	t.notifyRollover()
}

func (t *Tracker) persistLedger() {
	l := t.ledger

	t.enqueue("update rest ledger", false, func() error {
		return t.db.UpdateLedger(&l)
	})
}

// scale converts elapsed time into a ledger delta using the activity
// multiplier. The result is truncated to whole milliseconds so that rest
// is always under- rather than over-credited across many ticks.
func scale(d time.Duration, multiplier float64) time.Duration {
	ms := int64(float64(d.Milliseconds()) * multiplier)

	return time.Duration(ms) * time.Millisecond
}
