package common

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the process-wide logger. Console mode uses the pretty
// writer for development; otherwise plain JSON on stdout.
func NewLogger(level string, console bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if console {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(lvl).With().Timestamp().Logger()
}
