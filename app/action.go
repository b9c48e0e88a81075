package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/maruel/natural"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/respite/config"
	"github.com/ayoisaiah/respite/internal/models"
	"github.com/ayoisaiah/respite/internal/timeutil"
	"github.com/ayoisaiah/respite/internal/ui"
	"github.com/ayoisaiah/respite/report"
	"github.com/ayoisaiah/respite/store"
	"github.com/ayoisaiah/respite/tracker"
	"github.com/ayoisaiah/respite/tui"
)

var (
	errActivityName = errors.New("an activity name is required")

	errActivityID = errors.New(
		"an activity id is required (see 'respite activity list')",
	)

	errInvalidKind = errors.New("activity kind must be 'work' or 'rest'")

	errInvalidMultiplier = errors.New(
		"the multiplier must be greater than zero",
	)

	errInvalidCarryOver = errors.New(
		"the carry-over percentage must be in [0, 100]",
	)
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

func parseKind(s string) (models.ActivityKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "work":
		return models.KindWork, nil
	case "rest":
		return models.KindRest, nil
	default:
		return "", errInvalidKind
	}
}

func openDB() (*store.Client, error) {
	return store.NewClient(config.DBFilePath())
}

// findByName resolves an activity by case-insensitive name match.
func findByName(
	activities []*models.Activity,
	name string,
) *models.Activity {
	for _, a := range activities {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}

	return nil
}

// chooseActivities resolves the session's work and rest activities from
// flags, prompting with a select form for whichever is missing.
func chooseActivities(
	ctx *cli.Context,
	db store.DB,
) (work, rest *models.Activity, err error) {
	activities, err := db.Activities()
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(activities, func(i, j int) bool {
		return natural.Less(activities[i].Name, activities[j].Name)
	})

	byID := make(map[int]*models.Activity)

	var workOpts, restOpts []huh.Option[int]

	for _, a := range activities {
		byID[a.ID] = a

		opt := huh.NewOption(
			fmt.Sprintf("%s (x%g)", a.Name, a.Multiplier),
			a.ID,
		)

		if a.Kind == models.KindWork {
			workOpts = append(workOpts, opt)
		} else {
			restOpts = append(restOpts, opt)
		}
	}

	if len(workOpts) == 0 || len(restOpts) == 0 {
		return nil, nil, errors.New(
			"at least one work and one rest activity are required: add them with 'respite activity add'",
		)
	}

	if name := ctx.String("work"); name != "" {
		work = findByName(activities, name)
		if work == nil {
			return nil, nil, fmt.Errorf("no activity named %q", name)
		}
	}

	if name := ctx.String("rest"); name != "" {
		rest = findByName(activities, name)
		if rest == nil {
			return nil, nil, fmt.Errorf("no activity named %q", name)
		}
	}

	var groups []*huh.Group

	var workID, restID int

	if work == nil {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[int]().
				Title("Work activity").
				Options(workOpts...).
				Value(&workID),
		))
	}

	if rest == nil {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[int]().
				Title("Rest activity").
				Options(restOpts...).
				Value(&restID),
		))
	}

	if len(groups) > 0 {
		err = huh.NewForm(groups...).Run()
		if err != nil {
			return nil, nil, err
		}
	}

	if work == nil {
		work = byID[workID]
	}

	if rest == nil {
		rest = byID[restID]
	}

	return work, rest, nil
}

// defaultAction starts (or resumes) the timer and runs the interactive
// view until the user quits.
func defaultAction(ctx *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	t, err := tracker.New(db, cfg, timeutil.SystemClock{})
	if err != nil {
		return err
	}

	if !t.Active() {
		work, rest, err := chooseActivities(ctx, db)
		if err != nil {
			return err
		}

		t.Dispatch(tracker.Command{
			Kind: tracker.CmdStart,
			Work: work,
			Rest: rest,
		})
	}

	runCtx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		defer close(done)

		_ = t.Run(runCtx)
	}()

	_, err = tea.NewProgram(tui.New(t)).Run()

	cancel()
	<-done

	return err
}

func activityAddAction(ctx *cli.Context) error {
	name := strings.TrimSpace(ctx.String("name"))
	if name == "" {
		return errActivityName
	}

	kind, err := parseKind(ctx.String("kind"))
	if err != nil {
		return err
	}

	multiplier := ctx.Float64("multiplier")
	if multiplier <= 0 {
		return errInvalidMultiplier
	}

	db, err := openDB()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	a := &models.Activity{
		Name:       name,
		Kind:       kind,
		Multiplier: multiplier,
	}

	err = db.UpdateActivity(a)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("added %s activity %q (id %d)", kind, name, a.ID)

	return nil
}

func activityEditAction(ctx *cli.Context) error {
	if !ctx.IsSet("id") {
		return errActivityID
	}

	db, err := openDB()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	a, err := db.GetActivity(ctx.Int("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no activity with id %d", ctx.Int("id"))
		}

		return err
	}

	if name := strings.TrimSpace(ctx.String("name")); name != "" {
		a.Name = name
	}

	if ctx.IsSet("multiplier") {
		multiplier := ctx.Float64("multiplier")
		if multiplier <= 0 {
			return errInvalidMultiplier
		}

		a.Multiplier = multiplier
	}

	err = db.UpdateActivity(a)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("updated activity %q", a.Name)

	return nil
}

func activityDeleteAction(ctx *cli.Context) error {
	if !ctx.IsSet("id") {
		return errActivityID
	}

	db, err := openDB()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	err = db.DeleteActivity(ctx.Int("id"))
	if err != nil {
		return err
	}

	pterm.Success.Printfln("deleted activity %d", ctx.Int("id"))

	return nil
}

func activityListAction(_ *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	activities, err := db.Activities()
	if err != nil {
		return err
	}

	sort.Slice(activities, func(i, j int) bool {
		return natural.Less(activities[i].Name, activities[j].Name)
	})

	data := [][]string{
		{"ID", "NAME", "KIND", "MULTIPLIER", "TOTAL TIME"},
	}

	for _, a := range activities {
		data = append(data, []string{
			fmt.Sprintf("%d", a.ID),
			a.Name,
			string(a.Kind),
			fmt.Sprintf("x%g", a.Multiplier),
			timeutil.FormatDuration(a.TotalTimeSpent),
		})
	}

	ui.PrintTable(data, os.Stdout)

	return nil
}

func historyAction(ctx *cli.Context) error {
	filter, err := report.NewFilter(
		ctx.String("period"),
		ctx.String("start"),
		ctx.String("end"),
	)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	histories, err := db.HistoryInRange(filter.StartTime, filter.EndTime)
	if err != nil {
		return err
	}

	activities, err := db.Activities()
	if err != nil {
		return err
	}

	resolve := report.NameResolver(activities)

	if ctx.Bool("json") {
		return report.WriteJSON(histories, resolve, os.Stdout)
	}

	report.List(histories, os.Stdout)

	if ctx.Bool("journal") {
		report.Journal(histories, resolve, os.Stdout)
	}

	return nil
}

func setAction(ctx *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	prefs, err := db.Preferences()
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		prefs = &models.UserPreferences{
			CarryOverPercent: cfg.DefaultCarryOver,
			DayStart:         cfg.DefaultDayStart,
		}
	}

	if ctx.IsSet("carry-over") {
		pct := ctx.Int("carry-over")
		if pct < 0 || pct > 100 {
			return errInvalidCarryOver
		}

		prefs.CarryOverPercent = pct
	}

	if dayStart := ctx.String("day-start"); dayStart != "" {
		_, _, err = timeutil.ParseDayStart(dayStart)
		if err != nil {
			return err
		}

		prefs.DayStart = dayStart
	}

	err = db.UpdatePreferences(prefs)
	if err != nil {
		return err
	}

	pterm.Success.Printfln(
		"carry-over: %d%%, day starts at %s (applies at the next reset)",
		prefs.CarryOverPercent,
		prefs.DayStart,
	)

	return nil
}

func statusAction(_ *cli.Context) error {
	return tracker.ReportStatus()
}

// editConfigAction handles the edit-config command which opens the respite
// config file in the user's default text editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	cmd := exec.Command(editor, config.ConfigFilePath())

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
