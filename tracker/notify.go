package tracker

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/gen2brain/beeep"

	"github.com/ayoisaiah/respite/internal/models"
	"github.com/ayoisaiah/respite/internal/timeutil"

	"github.com/kballard/go-shellquote"
)

// notifyDepleted alerts the user that the rest budget has run out while
// resting.
func (t *Tracker) notifyDepleted() {
	if !t.opts.Notify {
		return
	}

	err := beeep.Notify(
		"Rest budget depleted",
		"Your accumulated rest has run out. Time to get back to work!",
		"",
	)
	if err != nil {
		slog.Warn("unable to display notification", "error", err)
	}

	go playSound(t.opts.DepletedSound)
}

// notifyRollover alerts the user that the day boundary ended their session
// automatically.
func (t *Tracker) notifyRollover() {
	if !t.opts.Notify {
		return
	}

	err := beeep.Notify(
		"New day started",
		"Yesterday's session was archived and your rest carried over.",
		"",
	)
	if err != nil {
		slog.Warn("unable to display notification", "error", err)
	}
}

// postSession runs the after-archive hooks: a summary notification, the
// session-end sound, and the user's session_cmd.
func (t *Tracker) postSession(hist *models.History) {
	if t.opts.Notify {
		msg := fmt.Sprintf(
			"Worked %s, used %s of rest.",
			timeutil.FormatDuration(hist.WorkTime),
			timeutil.FormatDuration(hist.RestConsumed),
		)

		err := beeep.Notify("Session archived", msg, "")
		if err != nil {
			slog.Warn("unable to display notification", "error", err)
		}

		playSound(t.opts.SessionEndSound)
	}

	err := runSessionCmd(t.opts.SessionCmd)
	if err != nil {
		slog.Error("session_cmd failed", "error", err)
	}
}

// runSessionCmd executes the specified command.
func runSessionCmd(sessionCmd string) error {
	if sessionCmd == "" {
		return nil
	}

	cmdSlice, err := shellquote.Split(sessionCmd)
	if err != nil {
		return fmt.Errorf("unable to parse session_cmd option: %w", err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	name := cmdSlice[0]
	args := cmdSlice[1:]

	cmd := exec.Command(name, args...)

	return cmd.Run()
}
