package logging

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New creates the application logger with console and file output and
// installs it as the zerolog global so leaf packages can log too.
func New() zerolog.Logger {
	logPath := getLogPath()

	os.MkdirAll(filepath.Dir(logPath), 0755)

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		// Console-only is still a working logger; don't refuse to start.
		logger := zerolog.New(console).With().Timestamp().Logger()
		logger.Warn().Err(err).Str("path", logPath).Msg("failed to open log file")
		log.Logger = logger
		return logger
	}

	multi := zerolog.MultiLevelWriter(console, logFile)
	logger := zerolog.New(multi).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// getLogPath returns platform-specific log file path
func getLogPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Logs"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/state"
		}
	}

	return filepath.Join(base, "deskchat", "deskchat.log")
}
