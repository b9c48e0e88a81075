// Package app defines the respite command-line interface.
package app

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/respite/config"
	"github.com/ayoisaiah/respite/internal/ui"
)

const (
	envNoColor        = "NO_COLOR"
	envRespiteNoColor = "RESPITE_NO_COLOR"
)

// cfg holds the loaded runtime configuration after beforeAction runs.
var cfg *config.App

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

func beforeAction(ctx *cli.Context) error {
	if _, ok := os.LookupEnv(envNoColor); ok {
		disableStyling()
	}

	if _, ok := os.LookupEnv(envRespiteNoColor); ok {
		disableStyling()
	}

	config.InitializePaths()
	config.InitLogger()

	var err error

	cfg, err = config.Load()
	if err != nil {
		return err
	}

	if ctx.Bool("disable-notification") {
		cfg.Notify = false
	}

	if ctx.String("session-cmd") != "" {
		cfg.SessionCmd = ctx.String("session-cmd")
	}

	ui.DarkTheme = cfg.DarkTheme

	return nil
}

// Get retrieves the respite app instance.
func Get() *cli.App {
	respiteApp := &cli.App{
		Name: "respite",
		Authors: []*cli.Author{
			{
				Name:  "Ayooluwa Isaiah",
				Email: "ayo@freshman.tech",
			},
		},
		Usage: `
		Respite is a study timer for the command-line. Time spent on work
		activities earns a spendable rest budget at each activity's multiplier;
		rest activities draw it back down. Sessions are journaled, archived
		daily, and the remaining rest carries over at a configurable rate.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:  "activity",
				Usage: "Manage the activity catalog",
				Subcommands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "Add a work or rest activity",
						Flags:  []cli.Flag{nameFlag, kindFlag, multiplierFlag},
						Action: activityAddAction,
					},
					{
						Name:   "edit",
						Usage:  "Edit an activity's name or multiplier",
						Flags:  []cli.Flag{idFlag, nameFlag, multiplierFlag},
						Action: activityEditAction,
					},
					{
						Name:   "delete",
						Usage:  "Delete an activity",
						Flags:  []cli.Flag{idFlag},
						Action: activityDeleteAction,
					},
					{
						Name:   "list",
						Usage:  "List all activities",
						Action: activityListAction,
					},
				},
			},
			{
				Name: "history",
				Usage: `
				Review archived sessions. Defaults to a reporting period of 7 days`,
				Flags: []cli.Flag{
					periodFlag,
					startFlag,
					endFlag,
					jsonFlag,
					journalFlag,
				},
				Action: historyAction,
			},
			{
				Name:   "set",
				Usage:  "Update the carry-over percentage or day-start time",
				Flags:  []cli.Flag{carryOverFlag, dayStartFlag},
				Action: setAction,
			},
			{
				Name:   "status",
				Usage:  "Print the status of the timer",
				Action: statusAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags: []cli.Flag{
			workFlag,
			restFlag,
			disableNotificationFlag,
			sessionCmdFlag,
		},
		Action: defaultAction,
		Before: beforeAction,
	}

	return respiteApp
}
