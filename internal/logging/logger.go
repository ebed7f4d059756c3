package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

var ErrInvalidLogLevel = errors.New("invalid log level")

// Levels lists the accepted level names.
var Levels = []string{"debug", "info", "warn", "error"}

// ValidateLevel is meant for CLI flag validators.
func ValidateLevel(value string) error {
	if !slices.Contains(Levels, value) {
		return fmt.Errorf("%w: %s, allowed values are: %s", ErrInvalidLogLevel, value, Levels)
	}
	return nil
}

func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidLogLevel, level)
	}
}

// New builds the process logger. Terminals get colored tint output, anything
// else gets JSON lines.
func New(level string, w *os.File) (*slog.Logger, error) {
	parsedLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	if isatty.IsTerminal(w.Fd()) {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      parsedLevel,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parsedLevel})
	}

	return slog.New(handler), nil
}

// Discard returns a logger that drops everything. Meant for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
