package store

import (
	"errors"
	"time"

	"github.com/ayoisaiah/respite/internal/models"
)

// ErrNotFound is reported when a singleton row or keyed record has not been
// created yet. Callers distinguish "not created" from a storage failure and
// perform first-run default creation explicitly.
var ErrNotFound = errors.New("record not found")

// DB is the database storage interface.
type DB interface {
	// Activities returns every activity in the catalog.
	Activities() ([]*models.Activity, error)
	// GetActivity looks up a single activity. It reports ErrNotFound for
	// ids that are absent from the catalog, including the pause sentinel.
	GetActivity(id int) (*models.Activity, error)
	// UpdateActivity creates or overwrites an activity. A zero id is
	// replaced with a freshly generated one.
	UpdateActivity(a *models.Activity) error
	// DeleteActivity removes an activity from the catalog. Journal entries
	// referencing it are left in place; readers tolerate dangling ids.
	DeleteActivity(id int) error

	// Ledger returns the singleton rest ledger, or ErrNotFound before
	// first-run creation.
	Ledger() (*models.RestLedger, error)
	UpdateLedger(l *models.RestLedger) error

	// Preferences returns the singleton user preferences, or ErrNotFound
	// before first-run creation.
	Preferences() (*models.UserPreferences, error)
	UpdatePreferences(p *models.UserPreferences) error

	// AppendHistory archives a completed session. History records are
	// immutable once written.
	AppendHistory(h *models.History) error
	// HistoryInRange returns archived sessions whose end time falls within
	// [start, end], in chronological order.
	HistoryInRange(start, end time.Time) ([]*models.History, error)

	// AppendJournalEntry persists one live journal segment so an
	// in-progress session survives a process restart.
	AppendJournalEntry(e *models.JournalEntry) error
	// JournalForDate returns the live journal segments recorded for a
	// calendar date, in append order.
	JournalForDate(date string) ([]*models.JournalEntry, error)
	// ClearJournal removes the live journal segments for a calendar date
	// after they have been folded into a history record.
	ClearJournal(date string) error

	// SessionState returns the persisted session flags, or ErrNotFound
	// before any session has run.
	SessionState() (*models.SessionState, error)
	UpdateSessionState(s *models.SessionState) error

	// Close ends the database connection.
	Close() error
	// Open begins a database connection.
	Open() error
}
