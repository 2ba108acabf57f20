// Package logger provides the process-wide structured logger backed by
// zerolog. Call Init once at startup, then Get anywhere.
package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	instance zerolog.Logger
	once     sync.Once
)

// Init builds the singleton logger. Level is one of trace, debug, info, warn,
// error (defaults to info). Pretty switches from JSON to console output.
func Init(level string, pretty bool) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339

		var out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		logger := zerolog.New(os.Stdout)
		if pretty {
			logger = zerolog.New(out)
		}

		instance = logger.Level(parseLevel(level)).With().Timestamp().Logger()
	})
	return instance
}

// Get returns the singleton logger, initialising it with defaults if Init was
// never called (useful in tests).
func Get() zerolog.Logger {
	Init("info", false)
	return instance
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
