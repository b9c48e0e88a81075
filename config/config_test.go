package config

import (
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pterm/pterm"
)

func TestMain(m *testing.M) {
	// Replace the respite directory to avoid overriding real configuration.
	configDir = "respite_test"

	InitializePaths()

	pterm.DisableOutput()

	code := m.Run()

	// Cleanup test directories.
	for _, p := range []string{configFilePath, dbFilePath} {
		err := os.RemoveAll(filepath.Dir(p))
		if err != nil {
			log.Fatal(err)
		}
	}

	os.Exit(code)
}

func resetConfigFile(t *testing.T) {
	t.Helper()

	err := os.RemoveAll(configFilePath)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLoadWritesDefaults(t *testing.T) {
	resetConfigFile(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}

	if _, err := os.Stat(configFilePath); err != nil {
		t.Errorf("default config file was not written: %v", err)
	}

	if got, want := c.TickInterval, time.Second; got != want {
		t.Errorf("TickInterval = %v, want %v", got, want)
	}

	if !c.Notify {
		t.Error("Notify = false, want true by default")
	}

	if got, want := c.DefaultCarryOver, 50; got != want {
		t.Errorf("DefaultCarryOver = %d, want %d", got, want)
	}

	if got, want := c.DefaultDayStart, "00:00"; got != want {
		t.Errorf("DefaultDayStart = %q, want %q", got, want)
	}

	// A second load reads the file just written.
	c2, err := Load()
	if err != nil {
		t.Fatalf("Load (second): unexpected error: %v", err)
	}

	if *c2 != *c {
		t.Errorf("reloaded config differs: %+v != %+v", c2, c)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			name: "carry-over out of range",
			content: "defaults:\n" +
				"  carry_over_percent: 150\n",
		},
		{
			name: "malformed day start",
			content: "defaults:\n" +
				"  day_start: quarter past nine\n",
		},
		{
			name: "non-positive tick interval",
			content: "timer:\n" +
				"  tick_interval: 0s\n",
		},
		{
			name: "unparseable tick interval",
			content: "timer:\n" +
				"  tick_interval: fast\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resetConfigFile(t)

			err := os.WriteFile(configFilePath, []byte(tc.content), 0o644)
			if err != nil {
				t.Fatal(err)
			}

			if _, err := Load(); err == nil {
				t.Fatal("want error, got none")
			}
		})
	}

	resetConfigFile(t)
}
