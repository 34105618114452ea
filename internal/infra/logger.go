package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger constructs a zerolog.Logger with sane defaults for the dashboard.
func NewLogger(appEnv string) zerolog.Logger {
	return newLogger(os.Stderr, appEnv)
}

func newLogger(w io.Writer, appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch appEnv {
	case "development":
		level = zerolog.DebugLevel
	case "cli":
		level = zerolog.WarnLevel
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()

	if appEnv == "development" || appEnv == "cli" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	}

	return logger
}

// NopLogger returns a logger that drops everything; library constructors use it
// when the caller does not inject one.
func NopLogger() *Logger {
	l := zerolog.Nop()
	return &l
}

// Logger aliases the zerolog.Logger so callers outside the infra package can
// depend on the logging contract without importing the third-party module
// directly.
type Logger = zerolog.Logger
