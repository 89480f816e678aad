// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a configured level name to a slog level. Unknown names
// fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal", "critical":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options configures New.
type Options struct {
	Level string
	// File, when set, receives every record as JSON in addition to Output.
	File string
	// Output is the primary stream, usually os.Stdout.
	Output io.Writer
	// Console selects the coloured line format for Output instead of JSON.
	Console bool
}

// New returns a logger and a function that closes the log file, if any.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := ParseLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var primary slog.Handler
	if opts.Console {
		primary = NewConsoleHandler(out, level)
	} else {
		primary = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}

	closeFn := func() error { return nil }
	if opts.File == "" {
		return slog.New(primary), closeFn, nil
	}

	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(fanoutHandler{primary, fileHandler}), f.Close, nil
}
