package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/ayoisaiah/respite/internal/timeutil"
)

// viperKeys defines the mapping between config keys and their Viper
// counterparts.
const (
	keyTickInterval     = "timer.tick_interval"
	keyNotify           = "notifications.enabled"
	keyDepletedSound    = "notifications.depleted_sound"
	keySessionEndSound  = "notifications.session_end_sound"
	keySessionCmd       = "settings.cmd"
	keyTwentyFourHour   = "settings.24hr_clock"
	keyDarkTheme        = "display.dark_theme"
	keyDefaultCarryOver = "defaults.carry_over_percent"
	keyDefaultDayStart  = "defaults.day_start"
)

// App holds the runtime configuration loaded from the YAML config file.
// The carry-over and day-start values here are only seeds for first-run
// preference creation; the live policy is stored in the database and edited
// with the set command.
type App struct {
	TickInterval     time.Duration `mapstructure:"-"`
	Notify           bool          `mapstructure:"-"`
	DepletedSound    string        `mapstructure:"-"`
	SessionEndSound  string        `mapstructure:"-"`
	SessionCmd       string        `mapstructure:"-"`
	TwentyFourHour   bool          `mapstructure:"-"`
	DarkTheme        bool          `mapstructure:"-"`
	DefaultCarryOver int           `mapstructure:"-"`
	DefaultDayStart  string        `mapstructure:"-"`
}

func setupViper(v *viper.Viper) {
	v.SetDefault(keyTickInterval, "1s")
	v.SetDefault(keyNotify, true)
	v.SetDefault(keyDepletedSound, "")
	v.SetDefault(keySessionEndSound, "")
	v.SetDefault(keySessionCmd, "")
	v.SetDefault(keyTwentyFourHour, true)
	v.SetDefault(keyDarkTheme, true)
	v.SetDefault(keyDefaultCarryOver, 50)
	v.SetDefault(keyDefaultDayStart, "00:00")
}

func loadViperConfig(v *viper.Viper, c *App) error {
	tick, err := time.ParseDuration(v.GetString(keyTickInterval))
	if err != nil || tick <= 0 {
		return fmt.Errorf("invalid tick interval: %q", v.GetString(keyTickInterval))
	}

	c.TickInterval = tick
	c.Notify = v.GetBool(keyNotify)
	c.DepletedSound = v.GetString(keyDepletedSound)
	c.SessionEndSound = v.GetString(keySessionEndSound)
	c.SessionCmd = v.GetString(keySessionCmd)
	c.TwentyFourHour = v.GetBool(keyTwentyFourHour)
	c.DarkTheme = v.GetBool(keyDarkTheme)
	c.DefaultCarryOver = v.GetInt(keyDefaultCarryOver)
	c.DefaultDayStart = v.GetString(keyDefaultDayStart)

	if c.DefaultCarryOver < 0 || c.DefaultCarryOver > 100 {
		return fmt.Errorf(
			"carry-over percentage must be in [0, 100], got %d",
			c.DefaultCarryOver,
		)
	}

	if _, _, err := timeutil.ParseDayStart(c.DefaultDayStart); err != nil {
		return err
	}

	return nil
}

// Load reads the config file, writing one populated with defaults if it
// does not exist yet.
func Load() (*App, error) {
	v := viper.New()

	v.SetConfigFile(configFilePath)
	v.SetConfigType("yaml")

	setupViper(v)

	var c App

	err := v.ReadInConfig()
	if err == nil {
		return &c, loadViperConfig(v, &c)
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config file failed: %w", err)
	}

	if err := v.WriteConfigAs(configFilePath); err != nil {
		return nil, fmt.Errorf("writing default config failed: %w", err)
	}

	return &c, loadViperConfig(v, &c)
}
