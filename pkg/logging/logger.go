// Package logging configures zerolog for the blitzr client and proxy.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is the textual log level accepted in configuration.
type LogLevel string

const (
	// LevelDebug logs page fetches, cache hits and everything above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs retries, throttling and errors.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level written.
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool

	// Output defaults to os.Stderr when nil.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup installs a global zerolog logger built from cfg and returns it.
// Loggers created afterwards with NewLogger inherit its output.
func Setup(cfg Config) zerolog.Logger {
	// Set global log level
	zerolog.SetGlobalLevel(ParseLevel(string(cfg.Level)))

	// Configure output
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	// Create logger with timestamp and install it globally
	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel maps a level name to a zerolog level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger returns a child of the global logger tagged with a component field.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Level guidelines:
//
// Debug
//   - page fetches (endpoint, offset, limit, items)
//   - cache hits and misses, conditional requests
//   - generator start and exhaustion
//
// Info
//   - completed streams served by the proxy
//   - quota state updates while healthy
//   - server startup and shutdown
//
// Warn
//   - retry attempts
//   - throttling below the quota warning threshold
//   - cache errors that fall back to a direct request
//
// Error
//   - requests failed after retries
//   - requests blocked by an exhausted quota
//   - failed generators
//
// Common fields: component, endpoint, stream, offset, limit, status_code,
// error_class, duration, cache_hit, quota_remaining.
