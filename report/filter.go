// Package report renders archived sessions for review.
package report

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"

	"github.com/ayoisaiah/respite/internal/timeutil"
)

var (
	errInvalidDateRange = errors.New(
		"the start time must be earlier than the end time",
	)

	errInvalidPeriod = errors.New(
		"please provide a valid time period",
	)
)

// Filter bounds a history query by time.
type Filter struct {
	StartTime time.Time
	EndTime   time.Time
}

// timeRange returns the start and end time according to the specified
// time period.
func timeRange(period timeutil.Period) (start, end time.Time) {
	now := time.Now()

	start = timeutil.RoundToStart(now)
	end = timeutil.RoundToEnd(now)

	//nolint:exhaustive // other cases covered by default
	switch period {
	case timeutil.PeriodToday:
		return
	case timeutil.PeriodYesterday:
		start = now.AddDate(0, 0, timeutil.Range[period])
		start = timeutil.RoundToStart(start)
		end = timeutil.RoundToEnd(start)

		return
	case timeutil.PeriodAllTime:
		start = time.Time{}
		return
	default:
		start = now.AddDate(0, 0, timeutil.Range[period])
		start = timeutil.RoundToStart(start)
	}

	return
}

// NewFilter builds a history filter from a named period, or from free-form
// start/end date strings when no period is given.
func NewFilter(period, start, end string) (*Filter, error) {
	f := &Filter{}

	p := timeutil.Period(strings.TrimSpace(period))

	if p != "" {
		if !slices.Contains(timeutil.PeriodCollection, p) {
			return nil, errInvalidPeriod
		}

		f.StartTime, f.EndTime = timeRange(p)

		return f, nil
	}

	if start == "" {
		f.StartTime, f.EndTime = timeRange(timeutil.Period7Days)
	} else {
		dt, err := dateparser.Parse(nil, start)
		if err != nil {
			return nil, err
		}

		f.StartTime = dt.Time
		f.EndTime = timeutil.RoundToEnd(time.Now())
	}

	if end != "" {
		dt, err := dateparser.Parse(nil, end)
		if err != nil {
			return nil, err
		}

		f.EndTime = dt.Time
	}

	if f.EndTime.Before(f.StartTime) {
		return nil, errInvalidDateRange
	}

	return f, nil
}
