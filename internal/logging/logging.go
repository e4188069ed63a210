// Package logging builds the phpfind logger: human-readable records on stderr
// and, when requested, JSON records appended to a log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	slogmulti "github.com/samber/slog-multi"
)

// EnvDebug enables debug logging when set to a true value.
const EnvDebug = "PHPFIND_DEBUG"

// Options controls New.
type Options struct {
	// Stderr receives text records. Nil means os.Stderr.
	Stderr io.Writer
	// Debug lowers the level from Warn to Debug.
	Debug bool
	// File, if set, receives JSON records at Debug level.
	File string
}

// Logger is a *slog.Logger that owns its log file.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New builds a logger from opts.
func New(opts Options) (*Logger, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}

	var file *os.File
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return &Logger{
		Logger: slog.New(slogmulti.Fanout(handlers...)),
		file:   file,
	}, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// DebugFromEnv reports whether $PHPFIND_DEBUG holds a true value.
func DebugFromEnv() bool {
	v, err := strconv.ParseBool(os.Getenv(EnvDebug))
	return err == nil && v
}
