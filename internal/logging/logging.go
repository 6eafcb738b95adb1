// Package logging builds the process logger. The TUI owns the terminal,
// so interactive runs log to a file; headless runs write human-readable
// output on stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// NewFile returns a logger appending JSON lines to path and a close func.
// An empty path discards everything.
func NewFile(path, level string) (zerolog.Logger, func(), error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	if path == "" {
		return zerolog.New(io.Discard), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	logger := zerolog.New(file).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "lingo").
		Logger()
	return logger, func() { file.Close() }, nil
}

// NewConsole returns a pretty-printing logger on stderr.
func NewConsole(level string) (zerolog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	logger := zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "lingo").
		Logger()
	return logger, nil
}

func parseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
