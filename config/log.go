package config

import (
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger directs slog output to a rotating log file in the data
// directory. Terminal output stays on pterm; the log file is for the tick
// path, where failures must be recorded without disturbing the timer view.
func InitLogger() {
	level := slog.LevelInfo
	if strings.EqualFold(os.Getenv("RESPITE_DEBUG"), "1") {
		level = slog.LevelDebug
	}

	w := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    5, // megabytes
		MaxBackups: 2,
		MaxAge:     28, // days
	}

	slog.SetDefault(
		slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
	)
}
