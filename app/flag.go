package app

import "github.com/urfave/cli/v2"

var (
	workFlag = &cli.StringFlag{
		Name:    "work",
		Aliases: []string{"w"},
		Usage:   "Name of the work activity to track",
	}

	restFlag = &cli.StringFlag{
		Name:    "rest",
		Aliases: []string{"r"},
		Usage:   "Name of the rest activity to draw the rest budget from",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable system notifications (rest depleted, session archived)",
	}

	sessionCmdFlag = &cli.StringFlag{
		Name:    "session-cmd",
		Aliases: []string{"cmd"},
		Usage:   "Execute an arbitrary command after each session is archived",
	}

	nameFlag = &cli.StringFlag{
		Name:  "name",
		Usage: "Activity name",
	}

	kindFlag = &cli.StringFlag{
		Name:  "kind",
		Usage: "Activity kind: work or rest",
	}

	multiplierFlag = &cli.Float64Flag{
		Name:  "multiplier",
		Usage: "How fast rest is accumulated (work) or consumed (rest) per unit of time",
		Value: 1.0,
	}

	idFlag = &cli.IntFlag{
		Name:  "id",
		Usage: "Activity id (see 'respite activity list')",
	}

	periodFlag = &cli.StringFlag{
		Name:    "period",
		Aliases: []string{"p"},
		Usage:   "Report period: today, yesterday, 7days, 14days, 30days, 90days, 180days, 365days, all-time",
	}

	startFlag = &cli.StringFlag{
		Name:  "start",
		Usage: "Report start date (free-form, e.g. 'last monday')",
	}

	endFlag = &cli.StringFlag{
		Name:  "end",
		Usage: "Report end date (free-form)",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Emit the report as JSON",
	}

	journalFlag = &cli.BoolFlag{
		Name:  "journal",
		Usage: "Include the segment-by-segment activity journal",
	}

	carryOverFlag = &cli.IntFlag{
		Name:  "carry-over",
		Usage: "Percentage of remaining rest carried over at the daily reset [0-100]",
		Value: -1,
	}

	dayStartFlag = &cli.StringFlag{
		Name:  "day-start",
		Usage: "Time of day (HH:MM) at which a new day begins for reset purposes",
	}
)
