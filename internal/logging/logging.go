// ABOUTME: zerolog setup for the command-line tools
// ABOUTME: Resolves the level from a flag value or SMD_LOG_LEVEL and installs a console writer
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLevel names the environment variable consulted when no level is given.
const EnvLevel = "SMD_LOG_LEVEL"

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// fall back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// ResolveLevel prefers an explicit level and otherwise reads EnvLevel.
func ResolveLevel(flagValue string) zerolog.Level {
	if flagValue == "" {
		flagValue = os.Getenv(EnvLevel)
	}
	return ParseLevel(flagValue)
}

// Init installs a console logger on w as the global logger and returns it.
func Init(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		With().
		Timestamp().
		Logger()
	log.Logger = logger

	log.Debug().
		Str("level", level.String()).
		Msg("Logger initialized")
	return logger
}
