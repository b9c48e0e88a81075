package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ayoisaiah/respite/internal/models"
)

// maxWriteAttempts bounds retries for a failing datastore write.
const maxWriteAttempts = 3

// CommandKind identifies a state machine command issued by a boundary
// layer.
type CommandKind int

const (
	CmdStart CommandKind = iota + 1
	CmdSwitch
	CmdPause
	CmdResume
	CmdEnd
)

// Command is the message boundary layers send into the tracker's event
// loop. Work/Rest carry optional activity selections; Switch controls
// whether CmdSwitch flips the working/resting mode or only re-attributes
// ongoing time to a new selection.
type Command struct {
	Kind   CommandKind
	Work   *models.Activity
	Rest   *models.Activity
	Switch bool
}

// writeOp is one queued datastore write. Critical ops (journal appends,
// state transitions) are never dropped; optimistic per-tick mirror writes
// may be, since each one is a whole-record upsert superseded by the next.
type writeOp struct {
	desc     string
	critical bool
	fn       func() error
}

// Dispatch enqueues a command for the event loop. It is the only
// tracker method that is safe to call from other goroutines.
func (t *Tracker) Dispatch(cmd Command) {
	t.cmds <- cmd
}

// Events returns the channel on which state snapshots are published after
// every mutation.
func (t *Tracker) Events() <-chan Snapshot {
	return t.events
}

// Run owns the tracker until ctx is cancelled, serializing commands and
// periodic ticks onto a single goroutine. On cancellation the session is
// left active in the datastore so the next run resumes it.
func (t *Tracker) Run(ctx context.Context) error {
	t.writes = make(chan writeOp, 256)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for op := range t.writes {
			t.commit(op)
		}
	}()

	if t.active {
		now := t.clock.Now()
		t.sched.start(taskWork, now)
		t.sched.start(taskRest, now)
	}

	ticker := time.NewTicker(t.opts.TickInterval)
	defer ticker.Stop()

	t.publish()

	for {
		select {
		case <-ctx.Done():
			t.removeStatusFile()

			close(t.writes)
			wg.Wait()

			t.writes = nil

			return nil

		case cmd := <-t.cmds:
			t.apply(cmd)
			t.publish()

		case now := <-ticker.C:
			t.Tick(now)
			t.publish()
		}
	}
}

func (t *Tracker) apply(cmd Command) {
	switch cmd.Kind {
	case CmdStart:
		err := t.Start(cmd.Work, cmd.Rest)
		if err != nil {
			slog.Warn("start rejected", "error", err)
		}
	case CmdSwitch:
		t.SwitchMode(cmd.Work, cmd.Rest, cmd.Switch)
	case CmdPause:
		t.Pause()
	case CmdResume:
		t.Resume()
	case CmdEnd:
		err := t.End()
		if err != nil && !errors.Is(err, ErrNoSession) {
			slog.Error("end session failed", "error", err)
		}
	}
}

// publish pushes the current snapshot without ever blocking the loop; a
// slow subscriber only misses intermediate states.
func (t *Tracker) publish() {
	select {
	case t.events <- t.snapshot():
	default:
	}
}

// enqueue hands a write to the persister goroutine. Before Run starts (and
// after it stops) writes execute inline, which keeps command-line actions
// and tests synchronous.
func (t *Tracker) enqueue(desc string, critical bool, fn func() error) {
	op := writeOp{desc: desc, critical: critical, fn: fn}

	if t.writes == nil {
		t.commit(op)
		return
	}

	select {
	case t.writes <- op:
	default:
		if op.critical {
			// Block rather than lose a journal entry or state change.
			t.writes <- op
			return
		}

		// The next tick re-upserts the same record; dropping this write
		// under backpressure loses at most one tick interval.
		slog.Warn("write queue full, dropping optimistic write",
			"op", op.desc)
	}
}

// commit performs a queued write with bounded retries.
func (t *Tracker) commit(op writeOp) {
	var err error

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		err = op.fn()
		if err == nil {
			return
		}

		slog.Warn(
			"datastore write failed",
			"op", op.desc,
			"attempt", attempt,
			"error", err,
		)
	}

	slog.Error(
		"datastore write abandoned",
		"op", op.desc,
		"error", err,
	)
}
