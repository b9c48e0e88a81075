package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/ayoisaiah/respite/internal/models"
)

func fixtureHistories() []*models.History {
	at := func(hour, minute int) time.Time {
		return time.Date(2024, 3, 1, hour, minute, 0, 0, time.UTC)
	}

	return []*models.History{
		{
			Date:            "2024-03-01",
			StartTime:       at(9, 0),
			EndTime:         at(10, 0),
			WorkTime:        40 * time.Minute,
			RestAccumulated: 40 * time.Minute,
			RestConsumed:    20 * time.Minute,
			Journal: []models.JournalEntry{
				{
					ActivityID: 1,
					StartTime:  at(9, 0),
					EndTime:    at(9, 40),
					Date:       "2024-03-01",
				},
				{
					ActivityID: models.PauseActivityID,
					StartTime:  at(9, 40),
					EndTime:    at(9, 45),
					Date:       "2024-03-01",
				},
				{
					ActivityID: 2,
					StartTime:  at(9, 45),
					EndTime:    at(10, 0),
					Date:       "2024-03-01",
				},
			},
		},
	}
}

func fixtureResolver() Resolver {
	return NameResolver([]*models.Activity{
		{ID: 1, Name: "Writing", Kind: models.KindWork},
		{ID: 2, Name: "Chess", Kind: models.KindRest},
	})
}

func TestNameResolver(t *testing.T) {
	resolve := fixtureResolver()

	cases := []struct {
		id   int
		want string
	}{
		{id: 1, want: "Writing"},
		{id: 2, want: "Chess"},
		{id: models.PauseActivityID, want: "Paused"},
		{id: 99, want: "unknown"},
	}

	for _, tc := range cases {
		if got := resolve(tc.id); got != tc.want {
			t.Errorf("resolve(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	err := WriteJSON(fixtureHistories(), fixtureResolver(), &buf)
	if err != nil {
		t.Fatalf("WriteJSON: unexpected error: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "write_json", buf.Bytes())
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer

	err := WriteJSON(nil, fixtureResolver(), &buf)
	if err != nil {
		t.Fatalf("WriteJSON: unexpected error: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "write_json_empty", buf.Bytes())
}

func TestNewFilter(t *testing.T) {
	t.Run("named period", func(t *testing.T) {
		f, err := NewFilter("today", "", "")
		if err != nil {
			t.Fatalf("NewFilter: unexpected error: %v", err)
		}

		if !f.EndTime.After(f.StartTime) {
			t.Errorf("want start < end, got %v .. %v", f.StartTime, f.EndTime)
		}
	})

	t.Run("unknown period", func(t *testing.T) {
		_, err := NewFilter("fortnight", "", "")
		if !errors.Is(err, errInvalidPeriod) {
			t.Fatalf("want errInvalidPeriod, got %v", err)
		}
	})

	t.Run("all time has open start", func(t *testing.T) {
		f, err := NewFilter("all-time", "", "")
		if err != nil {
			t.Fatalf("NewFilter: unexpected error: %v", err)
		}

		if !f.StartTime.IsZero() {
			t.Errorf("want zero start time, got %v", f.StartTime)
		}
	})

	t.Run("defaults to the last seven days", func(t *testing.T) {
		f, err := NewFilter("", "", "")
		if err != nil {
			t.Fatalf("NewFilter: unexpected error: %v", err)
		}

		if got := f.EndTime.Sub(f.StartTime); got < 6*24*time.Hour {
			t.Errorf("default window spans %v, want at least 6 days", got)
		}
	})

	t.Run("free-form dates", func(t *testing.T) {
		f, err := NewFilter("", "2024-03-01", "2024-03-05")
		if err != nil {
			t.Fatalf("NewFilter: unexpected error: %v", err)
		}

		if !f.StartTime.Before(f.EndTime) {
			t.Errorf("want start < end, got %v .. %v", f.StartTime, f.EndTime)
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := NewFilter("", "2024-03-05", "2024-03-01")
		if !errors.Is(err, errInvalidDateRange) {
			t.Fatalf("want errInvalidDateRange, got %v", err)
		}
	})
}
