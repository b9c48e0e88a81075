// Package config handles Respite's configuration and file paths
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
)

// Version is set at build time.
var Version = "dev"

var (
	configDir      = "respite"
	configFileName = "config.yml"
	dbFileName     = "respite.db"
	statusFileName = "status.json"
	logFileName    = "respite.log"
	dbFilePath     string
	configFilePath string
	statusFilePath string
	logFilePath    string
)

// Dir returns the name of the directory where config and data files live.
func Dir() string {
	return configDir
}

// DBFilePath returns the path to the datastore.
func DBFilePath() string {
	return dbFilePath
}

// ConfigFilePath returns the path to the YAML config file.
func ConfigFilePath() string {
	return configFilePath
}

// StatusFilePath returns the path to the status file written by a running
// timer.
func StatusFilePath() string {
	return statusFilePath
}

// LogFilePath returns the path to the rotating log file.
func LogFilePath() string {
	return logFilePath
}

// InitializePaths resolves the config and data file locations through XDG.
// Setting RESPITE_ENV switches to suffixed file names so that tests and
// development runs never touch real data.
func InitializePaths() {
	respiteEnv := strings.TrimSpace(os.Getenv("RESPITE_ENV"))
	if respiteEnv != "" {
		configFileName = fmt.Sprintf("config_%s.yml", respiteEnv)
		dbFileName = fmt.Sprintf("respite_%s.db", respiteEnv)
		statusFileName = fmt.Sprintf("status_%s.json", respiteEnv)
		logFileName = fmt.Sprintf("respite_%s.log", respiteEnv)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)
	statusFilePath = filepath.Join(dataDir, statusFileName)
	logFilePath = filepath.Join(dataDir, logFileName)
}
