package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ayoisaiah/respite/config"
	"github.com/ayoisaiah/respite/internal/models"
	"github.com/ayoisaiah/respite/internal/timeutil"
)

var testStart = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func testOpts() *config.App {
	return &config.App{
		TickInterval:     time.Second,
		Notify:           false,
		DefaultCarryOver: 50,
		DefaultDayStart:  "00:00",
	}
}

func newTestTracker(
	t *testing.T,
	db *memStore,
	clock *fakeClock,
) *Tracker {
	t.Helper()

	tr, err := New(db, testOpts(), clock)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}

	return tr
}

func seedActivities(
	t *testing.T,
	db *memStore,
	workMult, restMult float64,
) (work, rest *models.Activity) {
	t.Helper()

	work = &models.Activity{
		Name:       "Deep work",
		Kind:       models.KindWork,
		Multiplier: workMult,
	}
	rest = &models.Activity{
		Name:       "Gaming",
		Kind:       models.KindRest,
		Multiplier: restMult,
	}

	for _, a := range []*models.Activity{work, rest} {
		err := db.UpdateActivity(a)
		if err != nil {
			t.Fatalf("UpdateActivity: unexpected error: %v", err)
		}
	}

	return work, rest
}

func tickSeconds(tr *Tracker, clock *fakeClock, n int) {
	for range n {
		tr.Tick(clock.advance(time.Second))
	}
}

// assertPartition verifies the journal is a gap-free, non-overlapping
// partition of [start, end].
func assertPartition(
	t *testing.T,
	journal []models.JournalEntry,
	start, end time.Time,
) {
	t.Helper()

	if len(journal) == 0 {
		t.Fatal("expected a non-empty journal")
	}

	if !journal[0].StartTime.Equal(start) {
		t.Errorf(
			"journal starts at %v, want %v",
			journal[0].StartTime,
			start,
		)
	}

	if !journal[len(journal)-1].EndTime.Equal(end) {
		t.Errorf(
			"journal ends at %v, want %v",
			journal[len(journal)-1].EndTime,
			end,
		)
	}

	for i, e := range journal {
		if e.EndTime.Before(e.StartTime) {
			t.Errorf("entry %d ends before it starts: %+v", i, e)
		}

		if i == 0 {
			continue
		}

		if !e.StartTime.Equal(journal[i-1].EndTime) {
			t.Errorf(
				"gap or overlap between entries %d and %d: %v != %v",
				i-1,
				i,
				journal[i-1].EndTime,
				e.StartTime,
			)
		}
	}
}

func TestStartValidation(t *testing.T) {
	db := newMemStore()
	clock := &fakeClock{now: testStart}
	tr := newTestTracker(t, db, clock)

	work, rest := seedActivities(t, db, 1, 1)

	err := tr.Start(nil, rest)
	if !errors.Is(err, ErrMissingSelection) {
		t.Fatalf("want ErrMissingSelection, got %v", err)
	}

	err = tr.Start(rest, work)
	if !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("want ErrKindMismatch, got %v", err)
	}

	err = tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	err = tr.Start(work, rest)
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("want ErrSessionActive on double start, got %v", err)
	}
}

func TestAccrualAndConsumption(t *testing.T) {
	db := newMemStore()
	clock := &fakeClock{now: testStart}
	tr := newTestTracker(t, db, clock)

	// Work multiplier 1.0, rest multiplier 2.0.
	work, rest := seedActivities(t, db, 1, 2)

	err := tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	tickSeconds(tr, clock, 10)

	ledger := tr.Ledger()

	if got, want := ledger.WorkTime, 10*time.Second; got != want {
		t.Errorf("work time after 10 ticks = %v, want %v", got, want)
	}

	if got, want := ledger.Accumulated, 10*time.Second; got != want {
		t.Errorf("accumulated rest = %v, want %v", got, want)
	}

	tr.SwitchMode(nil, nil, true)

	tickSeconds(tr, clock, 5)

	ledger = tr.Ledger()

	// 5 ticks at multiplier 2.0 consume the full 10s budget.
	if got := ledger.Remaining(); got != 0 {
		t.Errorf("remaining rest = %v, want 0", got)
	}

	if got, want := ledger.Consumed, 10*time.Second; got != want {
		t.Errorf("consumed rest = %v, want %v", got, want)
	}

	// Further consumption clamps at zero instead of going negative.
	tickSeconds(tr, clock, 3)

	ledger = tr.Ledger()

	if got := ledger.Remaining(); got != 0 {
		t.Errorf("remaining rest after over-consumption = %v, want 0", got)
	}

	if got, want := ledger.Consumed, 10*time.Second; got != want {
		t.Errorf(
			"consumed must not exceed the budget: got %v, want %v",
			got,
			want,
		)
	}
}

func TestMultiplierTruncation(t *testing.T) {
	db := newMemStore()
	clock := &fakeClock{now: testStart}
	tr := newTestTracker(t, db, clock)

	work, rest := seedActivities(t, db, 0.333, 1)

	err := tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	tickSeconds(tr, clock, 1)

	// 1000ms x 0.333 truncates to 333ms, never rounds up.
	if got, want := tr.Ledger().Accumulated, 333*time.Millisecond; got != want {
		t.Errorf("accumulated rest = %v, want %v", got, want)
	}
}

func TestJournalPartition(t *testing.T) {
	db := newMemStore()
	clock := &fakeClock{now: testStart}
	tr := newTestTracker(t, db, clock)

	work, rest := seedActivities(t, db, 1, 1)

	err := tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	tickSeconds(tr, clock, 2)
	tr.SwitchMode(nil, nil, true) // work -> rest at +2s

	tickSeconds(tr, clock, 3)
	tr.Pause() // rest segment closed at +5s

	tickSeconds(tr, clock, 3)
	tr.Resume() // pause sentinel at +8s

	tickSeconds(tr, clock, 4)

	err = tr.End() // final rest segment at +12s
	if err != nil {
		t.Fatalf("End: unexpected error: %v", err)
	}

	if len(db.history) != 1 {
		t.Fatalf("want 1 archived session, got %d", len(db.history))
	}

	hist := db.history[0]

	assertPartition(t, hist.Journal, testStart, testStart.Add(12*time.Second))

	wantIDs := []int{work.ID, rest.ID, models.PauseActivityID, rest.ID}

	var gotIDs []int
	for _, e := range hist.Journal {
		gotIDs = append(gotIDs, e.ActivityID)
	}

	if diff := cmp.Diff(wantIDs, gotIDs); diff != "" {
		t.Errorf("journal attribution mismatch (-want +got):\n%s", diff)
	}

	// The machine is restartable after end.
	if tr.Active() {
		t.Error("tracker still active after End")
	}

	err = tr.Start(work, rest)
	if err != nil {
		t.Errorf("Start after End: unexpected error: %v", err)
	}
}

func TestPauseGatesLedgerAndIsIdempotent(t *testing.T) {
	db := newMemStore()
	clock := &fakeClock{now: testStart}
	tr := newTestTracker(t, db, clock)

	work, rest := seedActivities(t, db, 1, 1)

	err := tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	tickSeconds(tr, clock, 2)

	tr.Pause()

	before := tr.Ledger()
	segments := len(tr.Journal())

	// A second pause must not change anything.
	tr.Pause()

	if got := len(tr.Journal()); got != segments {
		t.Errorf("second pause added journal entries: %d -> %d",
			segments, got)
	}

	// Ticks continue to fire while paused but must not touch the ledger.
	tickSeconds(tr, clock, 3)

	if diff := cmp.Diff(before, tr.Ledger()); diff != "" {
		t.Errorf("ledger mutated while paused (-want +got):\n%s", diff)
	}

	tr.Resume()

	journal := tr.Journal()
	last := journal[len(journal)-1]

	if last.ActivityID != models.PauseActivityID {
		t.Errorf(
			"pause segment tagged with %d, want sentinel %d",
			last.ActivityID,
			models.PauseActivityID,
		)
	}

	if got, want := last.Duration(), 3*time.Second; got != want {
		t.Errorf("pause segment duration = %v, want %v", got, want)
	}
}

func TestEndWhilePausedFlushesPauseSegment(t *testing.T) {
	db := newMemStore()
	clock := &fakeClock{now: testStart}
	tr := newTestTracker(t, db, clock)

	work, rest := seedActivities(t, db, 1, 1)

	err := tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	tickSeconds(tr, clock, 5)
	tr.Pause()

	tickSeconds(tr, clock, 3)

	err = tr.End()
	if err != nil {
		t.Fatalf("End: unexpected error: %v", err)
	}

	hist := db.history[0]

	assertPartition(t, hist.Journal, testStart, testStart.Add(8*time.Second))

	last := hist.Journal[len(hist.Journal)-1]
	if last.ActivityID != models.PauseActivityID {
		t.Errorf(
			"final segment tagged with %d, want sentinel %d",
			last.ActivityID,
			models.PauseActivityID,
		)
	}

	var total time.Duration
	for _, e := range hist.Journal {
		total += e.Duration()
	}

	if want := hist.EndTime.Sub(hist.StartTime); total != want {
		t.Errorf("journal total = %v, want session span %v", total, want)
	}
}

func TestSwitchSelectionWithoutToggle(t *testing.T) {
	db := newMemStore()
	clock := &fakeClock{now: testStart}
	tr := newTestTracker(t, db, clock)

	work, rest := seedActivities(t, db, 1, 1)

	harder := &models.Activity{
		Name:       "Thesis",
		Kind:       models.KindWork,
		Multiplier: 3,
	}

	err := db.UpdateActivity(harder)
	if err != nil {
		t.Fatalf("UpdateActivity: unexpected error: %v", err)
	}

	err = tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	tickSeconds(tr, clock, 2)

	// Re-attribute ongoing time to a new work activity without flipping
	// to resting.
	tr.SwitchMode(harder, nil, false)

	journal := tr.Journal()
	if got, want := journal[len(journal)-1].ActivityID, work.ID; got != want {
		t.Errorf("closed segment attributed to %d, want %d", got, want)
	}

	tickSeconds(tr, clock, 1)

	// Still working, now at the new activity's multiplier.
	ledger := tr.Ledger()

	if got, want := ledger.Accumulated, 5*time.Second; got != want {
		t.Errorf("accumulated rest = %v, want %v", got, want)
	}

	if got, want := ledger.WorkTime, 3*time.Second; got != want {
		t.Errorf("work time = %v, want %v", got, want)
	}
}

func TestCarryoverReset(t *testing.T) {
	db := newMemStore()
	clock := &fakeClock{now: testStart}
	tr := newTestTracker(t, db, clock)

	work, rest := seedActivities(t, db, 1, 1)

	err := tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	tickSeconds(tr, clock, 10)

	err = tr.End()
	if err != nil {
		t.Fatalf("End: unexpected error: %v", err)
	}

	ledger := tr.Ledger()

	// 10s remaining at 50% carry-over.
	if got, want := ledger.Remaining(), 5*time.Second; got != want {
		t.Errorf("post-reset remaining = %v, want %v", got, want)
	}

	if ledger.Accumulated != 0 || ledger.Consumed != 0 ||
		ledger.WorkTime != 0 {
		t.Errorf(
			"counters not zeroed by reset: %+v",
			ledger,
		)
	}

	if got, want := ledger.LastResetDate, timeutil.Date(clock.Now()); got != want {
		t.Errorf("last reset date = %q, want %q", got, want)
	}

	// The folded journal rows are deleted after archival.
	if len(db.journal) != 0 {
		t.Errorf("want journal cleared after archival, got %d rows",
			len(db.journal))
	}
}

func TestDayBoundaryTrigger(t *testing.T) {
	db := newMemStore()

	clock := &fakeClock{
		now: time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC),
	}

	opts := testOpts()
	opts.DefaultDayStart = "05:00"

	tr, err := New(db, opts, clock)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}

	work, rest := seedActivities(t, db, 1, 1)

	err = tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	// Past midnight but before the configured day start: the session must
	// stay open.
	clock.now = time.Date(2024, 3, 2, 0, 30, 0, 0, time.UTC)
	tr.Tick(clock.Now())

	if !tr.Active() {
		t.Fatal("session ended before the configured day-start time")
	}

	// At the day-start threshold the session ends automatically.
	clock.now = time.Date(2024, 3, 2, 5, 0, 0, 0, time.UTC)
	tr.Tick(clock.Now())

	if tr.Active() {
		t.Fatal("session still active past the day boundary")
	}

	if len(db.history) != 1 {
		t.Fatalf("want 1 archived session, got %d", len(db.history))
	}

	if got, want := db.ledger.LastResetDate, "2024-03-02"; got != want {
		t.Errorf("last reset date = %q, want %q", got, want)
	}

	// The trigger must not fire again the same day.
	tr.Tick(clock.advance(time.Second))

	if len(db.history) != 1 {
		t.Errorf("day boundary fired twice: %d archives", len(db.history))
	}
}

func TestArchiveFailureKeepsSessionLive(t *testing.T) {
	db := newMemStore()
	clock := &fakeClock{now: testStart}
	tr := newTestTracker(t, db, clock)

	work, rest := seedActivities(t, db, 1, 1)

	err := tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	tickSeconds(tr, clock, 4)

	db.historyErr = errors.New("disk full")

	err = tr.End()
	if err == nil {
		t.Fatal("want error when archival fails")
	}

	if !tr.Active() {
		t.Fatal("session must stay live when archival fails")
	}

	// Ticking continues after the failed end.
	tickSeconds(tr, clock, 2)

	db.historyErr = nil

	err = tr.End()
	if err != nil {
		t.Fatalf("End after recovery: unexpected error: %v", err)
	}

	if got, want := db.history[0].WorkTime, 6*time.Second; got != want {
		t.Errorf("archived work time = %v, want %v", got, want)
	}
}

func TestRestoreInterruptedSession(t *testing.T) {
	db := newMemStore()
	clock := &fakeClock{now: testStart}
	tr := newTestTracker(t, db, clock)

	work, rest := seedActivities(t, db, 1, 1)

	err := tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	tickSeconds(tr, clock, 2)
	tr.Pause()

	// Simulate a process restart: a fresh tracker over the same store.
	restored := newTestTracker(t, db, clock)

	if !restored.Active() {
		t.Fatal("restored tracker is idle, want active")
	}

	snap := restored.snapshot()

	if !snap.Paused {
		t.Error("restored tracker lost its paused state")
	}

	if got, want := snap.WorkTime, 2*time.Second; got != want {
		t.Errorf("restored work time = %v, want %v", got, want)
	}

	if got := len(restored.Journal()); got != 1 {
		t.Fatalf("restored journal has %d entries, want 1", got)
	}

	// The restored session continues cleanly: resume journals the pause
	// span, including the downtime, under the sentinel id.
	clock.advance(3 * time.Second)
	restored.Resume()

	journal := restored.Journal()
	last := journal[len(journal)-1]

	if last.ActivityID != models.PauseActivityID {
		t.Errorf(
			"pause segment tagged with %d, want sentinel %d",
			last.ActivityID,
			models.PauseActivityID,
		)
	}

	if got, want := last.Duration(), 3*time.Second; got != want {
		t.Errorf("pause segment duration = %v, want %v", got, want)
	}
}

func TestDeletedActivityToleratedOnRestore(t *testing.T) {
	db := newMemStore()
	clock := &fakeClock{now: testStart}
	tr := newTestTracker(t, db, clock)

	work, rest := seedActivities(t, db, 1, 1)

	err := tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	tickSeconds(tr, clock, 2)

	// The user deletes the work activity mid-session.
	err = db.DeleteActivity(work.ID)
	if err != nil {
		t.Fatalf("DeleteActivity: unexpected error: %v", err)
	}

	restored := newTestTracker(t, db, clock)

	if !restored.Active() {
		t.Fatal("restored tracker is idle, want active")
	}

	// The dangling reference degrades to a placeholder, never an error.
	snap := restored.snapshot()
	if snap.WorkActivity != "unknown" {
		t.Errorf("work activity = %q, want placeholder", snap.WorkActivity)
	}

	err = restored.End()
	if err != nil {
		t.Fatalf("End with dangling activity: unexpected error: %v", err)
	}
}

func TestClockSkewClampsSegment(t *testing.T) {
	db := newMemStore()
	clock := &fakeClock{now: testStart}
	tr := newTestTracker(t, db, clock)

	work, rest := seedActivities(t, db, 1, 1)

	err := tr.Start(work, rest)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}

	// The clock jumps backwards before the first segment closes.
	clock.now = testStart.Add(-10 * time.Second)
	tr.Pause()

	journal := tr.Journal()
	if got := journal[0].Duration(); got != 0 {
		t.Errorf("skewed segment duration = %v, want 0", got)
	}

	// A skewed tick must not produce a negative ledger delta either.
	tr.Resume()
	tr.Tick(clock.Now())

	ledger := tr.Ledger()
	if got := ledger.Remaining(); got < 0 {
		t.Errorf("remaining rest went negative: %v", got)
	}
}
