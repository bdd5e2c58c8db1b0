// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	LevelQuiet   = 1
	LevelInfo    = 2
	LevelVerbose = 3
)

// Level maps the 1-3 verbosity scale onto slog levels. 1 keeps warnings and
// errors, 2 adds info, 3 adds debug.
func Level(verbosity int) (slog.Level, error) {
	switch verbosity {
	case LevelQuiet:
		return slog.LevelWarn, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelVerbose:
		return slog.LevelDebug, nil
	default:
		return 0, fmt.Errorf("unsupported log level %d (want 1, 2 or 3)", verbosity)
	}
}

// New returns a logger writing to w in the given format ("text" or "json").
func New(w io.Writer, verbosity int, format string) (*slog.Logger, error) {
	level, err := Level(verbosity)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
}
