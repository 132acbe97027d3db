package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// The CLI logs to stderr so stdout stays reserved for device output.
var logger zerolog.Logger

func init() {
	logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	return logger
}
