package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	Logger zerolog.Logger
)

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

func init() {
	// Nothing may reach the terminal once the UI owns it, so the default is silent
	// until Configure or ConfigureFile picks a destination.
	Logger = zerolog.New(io.Discard).With().Timestamp().Logger()
}

// ParseLevel maps a configured level name onto a LogLevel, defaulting to info.
func ParseLevel(name string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(name))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "warning":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func zeroLevel(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Configure sets up the global logger with the specified level and output
func Configure(level LogLevel, w io.Writer, pretty bool) {
	zerolog.SetGlobalLevel(zeroLevel(level))

	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}

	Logger = zerolog.New(w).With().Timestamp().Logger()

	// Update the global logger
	log.Logger = Logger
}

// ConfigureFile points the global logger at an append-only log file. The
// returned closer must be closed when the process is done logging.
func ConfigureFile(level LogLevel, path string) (io.Closer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	Configure(level, f, true)
	return f, nil
}

// GetLogLevelFromEnv lets DEBUG=1 or DEBUG=true override the configured level
func GetLogLevelFromEnv(configured LogLevel) LogLevel {
	debug := os.Getenv("DEBUG")
	if strings.ToLower(debug) == "true" || debug == "1" {
		return LevelDebug
	}
	if configured == "" {
		return LevelInfo
	}
	return configured
}

// Debugf logs a formatted message at debug level
func Debugf(format string, args ...interface{}) {
	Logger.Debug().Msgf(format, args...)
}

// Infof logs a formatted message at info level
func Infof(format string, args ...interface{}) {
	Logger.Info().Msgf(format, args...)
}

// Warnf logs a formatted message at warn level
func Warnf(format string, args ...interface{}) {
	Logger.Warn().Msgf(format, args...)
}

// Errorf logs a formatted message at error level
func Errorf(format string, args ...interface{}) {
	Logger.Error().Msgf(format, args...)
}

// WithField creates a logger with a field
func WithField(key string, value interface{}) zerolog.Logger {
	return Logger.With().Interface(key, value).Logger()
}

// Component returns a child logger tagged with the owning component.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
