// Package store connects to the data store and manages activities, the
// rest ledger, journal entries, and session history
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/respite/internal/models"
	"github.com/ayoisaiah/respite/internal/timeutil"
)

var pathToDB string

var errRespiteRunning = errors.New(
	"is Respite already running? Only one instance can be active at a time",
)

const (
	activityBucket = "activities"
	ledgerBucket   = "rest_ledger"
	prefsBucket    = "user_preferences"
	historyBucket  = "history"
	journalBucket  = "journal"
	stateBucket    = "session_state"
)

// singletonKey is the fixed key under which one-row records are upserted.
var singletonKey = []byte("0")

var buckets = []string{
	activityBucket,
	ledgerBucket,
	prefsBucket,
	historyBucket,
	journalBucket,
	stateBucket,
}

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)

	return b
}

// journalKey orders entries by date first so that a single cursor prefix
// scan retrieves one day's journal.
func journalKey(date string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s/%020d", date, seq))
}

func (c *Client) putJSON(bucket string, key []byte, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put(key, value)
	})
}

func (c *Client) getJSON(bucket string, key []byte, v any) error {
	return c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket)).Get(key)
		if len(b) == 0 {
			return ErrNotFound
		}

		return json.Unmarshal(b, v)
	})
}

func (c *Client) Activities() ([]*models.Activity, error) {
	var result []*models.Activity

	err := c.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(activityBucket)).
			ForEach(func(_, v []byte) error {
				var a models.Activity

				err := json.Unmarshal(v, &a)
				if err != nil {
					return err
				}

				result = append(result, &a)

				return nil
			})
	})

	return result, err
}

func (c *Client) GetActivity(id int) (*models.Activity, error) {
	var a models.Activity

	err := c.getJSON(activityBucket, itob(uint64(id)), &a)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (c *Client) UpdateActivity(a *models.Activity) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(activityBucket))

		if a.ID == 0 {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}

			a.ID = int(seq)
		}

		value, err := json.Marshal(a)
		if err != nil {
			return err
		}

		return b.Put(itob(uint64(a.ID)), value)
	})
}

func (c *Client) DeleteActivity(id int) error {
	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(activityBucket)).Delete(itob(uint64(id)))
	})
}

func (c *Client) Ledger() (*models.RestLedger, error) {
	var l models.RestLedger

	err := c.getJSON(ledgerBucket, singletonKey, &l)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

func (c *Client) UpdateLedger(l *models.RestLedger) error {
	return c.putJSON(ledgerBucket, singletonKey, l)
}

func (c *Client) Preferences() (*models.UserPreferences, error) {
	var p models.UserPreferences

	err := c.getJSON(prefsBucket, singletonKey, &p)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (c *Client) UpdatePreferences(p *models.UserPreferences) error {
	return c.putJSON(prefsBucket, singletonKey, p)
}

func (c *Client) AppendHistory(h *models.History) error {
	return c.putJSON(historyBucket, timeutil.ToKey(h.EndTime), h)
}

func (c *Client) HistoryInRange(
	start, end time.Time,
) ([]*models.History, error) {
	var result []*models.History

	err := c.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket([]byte(historyBucket)).Cursor()
		min := timeutil.ToKey(start)
		max := timeutil.ToKey(end)

		for k, v := cur.Seek(min); k != nil && bytes.Compare(k, max) <= 0; k, v = cur.Next() {
			var h models.History

			err := json.Unmarshal(v, &h)
			if err != nil {
				return err
			}

			result = append(result, &h)
		}

		return nil
	})

	return result, err
}

func (c *Client) AppendJournalEntry(e *models.JournalEntry) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(journalBucket))

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		e.ID = seq

		value, err := json.Marshal(e)
		if err != nil {
			return err
		}

		return b.Put(journalKey(e.Date, seq), value)
	})
}

func (c *Client) JournalForDate(
	date string,
) ([]*models.JournalEntry, error) {
	var result []*models.JournalEntry

	prefix := []byte(date + "/")

	err := c.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket([]byte(journalBucket)).Cursor()

		for k, v := cur.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cur.Next() {
			var e models.JournalEntry

			err := json.Unmarshal(v, &e)
			if err != nil {
				return err
			}

			result = append(result, &e)
		}

		return nil
	})

	return result, err
}

func (c *Client) ClearJournal(date string) error {
	prefix := []byte(date + "/")

	return c.Update(func(tx *bolt.Tx) error {
		cur := tx.Bucket([]byte(journalBucket)).Cursor()

		for k, _ := cur.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = cur.Next() {
			err := cur.Delete()
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (c *Client) SessionState() (*models.SessionState, error) {
	var s models.SessionState

	err := c.getJSON(stateBucket, singletonKey, &s)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (c *Client) UpdateSessionState(s *models.SessionState) error {
	return c.putJSON(stateBucket, singletonKey, s)
}

func (c *Client) Open() error {
	db, err := openDB(pathToDB)
	if err != nil {
		return err
	}

	*c = Client{
		db,
	}

	return nil
}

// openDB creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, errRespiteRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	pathToDB = dbPath

	db, err := openDB(pathToDB)
	if err != nil {
		return nil, err
	}
	// Create the necessary buckets for storing data if they do not exist already
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			_, err = tx.CreateBucketIfNotExists([]byte(name))
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		db,
	}, nil
}
