package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ayoisaiah/respite/internal/models"
	"github.com/ayoisaiah/respite/internal/timeutil"
	"github.com/ayoisaiah/respite/internal/ui"
)

// Resolver maps an activity id to a display name. It must tolerate
// dangling ids and the pause sentinel.
type Resolver func(id int) string

// NameResolver builds a Resolver over the activity catalog. Missing ids
// render as "unknown" and the pause sentinel as "Paused".
func NameResolver(activities []*models.Activity) Resolver {
	names := make(map[int]string, len(activities))

	for _, a := range activities {
		names[a.ID] = a.Name
	}

	return func(id int) string {
		if id == models.PauseActivityID {
			return "Paused"
		}

		if name, ok := names[id]; ok {
			return name
		}

		return "unknown"
	}
}

const timeFormat = "15:04:05"

// List renders one table row per archived session.
func List(histories []*models.History, w io.Writer) {
	data := [][]string{
		{
			"DATE",
			"STARTED",
			"ENDED",
			"WORK TIME",
			"REST EARNED",
			"REST USED",
			"SEGMENTS",
		},
	}

	for _, h := range histories {
		data = append(data, []string{
			h.Date,
			h.StartTime.Format(timeFormat),
			h.EndTime.Format(timeFormat),
			ui.Green(timeutil.FormatDuration(h.WorkTime)),
			ui.Cyan(timeutil.FormatDuration(h.RestAccumulated)),
			ui.Magenta(timeutil.FormatDuration(h.RestConsumed)),
			fmt.Sprintf("%d", len(h.Journal)),
		})
	}

	ui.PrintTable(data, w)
}

// Journal renders the segment-by-segment breakdown of each archived
// session.
func Journal(histories []*models.History, resolve Resolver, w io.Writer) {
	for _, h := range histories {
		fmt.Fprintf(
			w,
			"%s (worked %s)\n",
			ui.Highlight(h.Date),
			timeutil.FormatDuration(h.WorkTime),
		)

		data := [][]string{
			{"ACTIVITY", "FROM", "TO", "DURATION"},
		}

		for _, e := range h.Journal {
			data = append(data, []string{
				resolve(e.ActivityID),
				e.StartTime.Format(timeFormat),
				e.EndTime.Format(timeFormat),
				timeutil.FormatDuration(e.Duration()),
			})
		}

		ui.PrintTable(data, w)
	}
}

// jsonHistory is the stable JSON shape emitted for scripting.
type jsonHistory struct {
	Date            string        `json:"date"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	WorkTime        string        `json:"work_time"`
	RestAccumulated string        `json:"rest_accumulated"`
	RestConsumed    string        `json:"rest_consumed"`
	Journal         []jsonSegment `json:"journal"`
}

type jsonSegment struct {
	Activity  string    `json:"activity"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`
}

// WriteJSON emits the archived sessions as indented JSON.
func WriteJSON(
	histories []*models.History,
	resolve Resolver,
	w io.Writer,
) error {
	out := make([]jsonHistory, 0, len(histories))

	for _, h := range histories {
		jh := jsonHistory{
			Date:            h.Date,
			StartTime:       h.StartTime,
			EndTime:         h.EndTime,
			WorkTime:        timeutil.FormatDuration(h.WorkTime),
			RestAccumulated: timeutil.FormatDuration(h.RestAccumulated),
			RestConsumed:    timeutil.FormatDuration(h.RestConsumed),
		}

		for _, e := range h.Journal {
			jh.Journal = append(jh.Journal, jsonSegment{
				Activity:  resolve(e.ActivityID),
				StartTime: e.StartTime,
				EndTime:   e.EndTime,
				Duration:  timeutil.FormatDuration(e.Duration()),
			})
		}

		out = append(out, jh)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(append(b, '\n'))

	return err
}
