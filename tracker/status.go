package tracker

import (
	"bufio"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/pterm/pterm"
	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/respite/config"
	"github.com/ayoisaiah/respite/internal/timeutil"
)

// writeStatusFile mirrors the current snapshot to the status file so a
// second respite process can report on a running timer without taking the
// database lock.
func (t *Tracker) writeStatusFile() error {
	if config.StatusFilePath() == "" {
		return nil
	}

	statusFile, err := os.Create(config.StatusFilePath())
	if err != nil {
		return err
	}

	defer func() {
		ferr := statusFile.Close()
		if ferr != nil {
			err = ferr
		}
	}()

	b, err := json.Marshal(t.snapshot())
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(statusFile)

	_, err = writer.Write(b)
	if err != nil {
		return err
	}

	return writer.Flush()
}

func (t *Tracker) removeStatusFile() {
	if config.StatusFilePath() == "" {
		return
	}

	_ = os.Remove(config.StatusFilePath())
}

// ReportStatus reports the status of the currently running timer.
func ReportStatus() error {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(config.DBFilePath(), fileMode, &bolt.Options{
		Timeout: 100 * time.Millisecond,
	})
	// This means respite is not running, so no status to report
	if err == nil {
		_ = db.Close()
		return nil
	}

	if !errors.Is(err, bolt.ErrDatabaseOpen) &&
		!errors.Is(err, bolt.ErrTimeout) {
		return err
	}

	fileBytes, err := os.ReadFile(config.StatusFilePath())
	if err != nil {
		// missing file should not return an error
		return nil
	}

	var snap Snapshot

	err = json.Unmarshal(fileBytes, &snap)
	if err != nil {
		return err
	}

	if !snap.Active {
		return nil
	}

	mode := "Working on " + snap.WorkActivity
	if snap.Paused {
		mode = "Paused"
	} else if !snap.Working {
		mode = "Resting with " + snap.RestActivity
	}

	pterm.Printfln(
		"[%s] work: %s, rest left: %s",
		mode,
		timeutil.FormatDuration(snap.WorkTime),
		timeutil.FormatDuration(snap.RestRemaining),
	)

	return nil
}
