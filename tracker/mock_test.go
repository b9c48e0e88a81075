package tracker

import (
	"time"

	"github.com/ayoisaiah/respite/internal/models"
	"github.com/ayoisaiah/respite/store"
)

// fakeClock is a manually advanced clock for deterministic tick tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

// memStore is an in-memory store.DB used by the tracker tests.
type memStore struct {
	activities map[int]models.Activity
	nextID     int
	ledger     *models.RestLedger
	prefs      *models.UserPreferences
	history    []*models.History
	journal    []models.JournalEntry
	journalSeq uint64
	state      *models.SessionState

	historyErr error
}

func newMemStore() *memStore {
	return &memStore{activities: make(map[int]models.Activity)}
}

func (m *memStore) Activities() ([]*models.Activity, error) {
	var result []*models.Activity

	for id := range m.activities {
		a := m.activities[id]
		result = append(result, &a)
	}

	return result, nil
}

func (m *memStore) GetActivity(id int) (*models.Activity, error) {
	a, ok := m.activities[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	return &a, nil
}

func (m *memStore) UpdateActivity(a *models.Activity) error {
	if a.ID == 0 {
		m.nextID++
		a.ID = m.nextID
	}

	m.activities[a.ID] = *a

	return nil
}

func (m *memStore) DeleteActivity(id int) error {
	delete(m.activities, id)
	return nil
}

func (m *memStore) Ledger() (*models.RestLedger, error) {
	if m.ledger == nil {
		return nil, store.ErrNotFound
	}

	l := *m.ledger

	return &l, nil
}

func (m *memStore) UpdateLedger(l *models.RestLedger) error {
	cp := *l
	m.ledger = &cp

	return nil
}

func (m *memStore) Preferences() (*models.UserPreferences, error) {
	if m.prefs == nil {
		return nil, store.ErrNotFound
	}

	p := *m.prefs

	return &p, nil
}

func (m *memStore) UpdatePreferences(p *models.UserPreferences) error {
	cp := *p
	m.prefs = &cp

	return nil
}

func (m *memStore) AppendHistory(h *models.History) error {
	if m.historyErr != nil {
		return m.historyErr
	}

	m.history = append(m.history, h)

	return nil
}

func (m *memStore) HistoryInRange(
	start, end time.Time,
) ([]*models.History, error) {
	var result []*models.History

	for _, h := range m.history {
		if h.EndTime.Before(start) || h.EndTime.After(end) {
			continue
		}

		result = append(result, h)
	}

	return result, nil
}

func (m *memStore) AppendJournalEntry(e *models.JournalEntry) error {
	m.journalSeq++
	e.ID = m.journalSeq
	m.journal = append(m.journal, *e)

	return nil
}

func (m *memStore) JournalForDate(
	date string,
) ([]*models.JournalEntry, error) {
	var result []*models.JournalEntry

	for i := range m.journal {
		if m.journal[i].Date != date {
			continue
		}

		e := m.journal[i]
		result = append(result, &e)
	}

	return result, nil
}

func (m *memStore) ClearJournal(date string) error {
	var kept []models.JournalEntry

	for _, e := range m.journal {
		if e.Date != date {
			kept = append(kept, e)
		}
	}

	m.journal = kept

	return nil
}

func (m *memStore) SessionState() (*models.SessionState, error) {
	if m.state == nil {
		return nil, store.ErrNotFound
	}

	s := *m.state

	return &s, nil
}

func (m *memStore) UpdateSessionState(s *models.SessionState) error {
	cp := *s
	m.state = &cp

	return nil
}

func (m *memStore) Open() error  { return nil }
func (m *memStore) Close() error { return nil }
