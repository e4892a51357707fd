// Package logger configures slog for the tradebot binaries and provides the http request logging middleware.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLogLevel converts a level name (debug, info, warn/warning, error) to a slog.Level.
// Unknown names give slog.LevelDebug.
func ParseLogLevel(level string) slog.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelDebug
	}
	return l
}

// InitLogger creates the process logger.
// The dev environment gets colourized text on stderr, everything else JSON on stdout.
func InitLogger(logLevel slog.Level, environment string) *slog.Logger {
	w := io.Writer(os.Stdout)
	if environment == "dev" {
		w = os.Stderr
	}
	return New(w, logLevel, environment)
}

// New creates a logger writing to w using the handler InitLogger would pick for environment.
func New(w io.Writer, logLevel slog.Level, environment string) *slog.Logger {
	var h slog.Handler
	if environment == "dev" {
		h = tint.NewHandler(w, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})
	}
	return slog.New(h)
}
