// Package logutils builds the process-wide zerolog logger.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/colonyops/taskdesk/internal/core/logging"
)

// DefaultFile is the log file name used when Options.Path is empty.
const DefaultFile = "taskdesk.log"

// Options selects the level and destination of the logger.
type Options struct {
	Level string // debug, info, warn, error or fatal

	// Path is the log file. Empty means DefaultFile inside Dir, "-" means
	// stdout.
	Path string
	Dir  string
}

// Target returns the file the logger will append to, or "" for stdout.
func (o Options) Target() string {
	switch o.Path {
	case "-":
		return ""
	case "":
		return filepath.Join(o.Dir, DefaultFile)
	default:
		return o.Path
	}
}

// New builds a JSON logger with context fields attached. Stdout output
// switches to the console writer when attached to a terminal. The returned
// func closes the log file.
func New(opts Options) (zerolog.Logger, func(), error) {
	noop := func() {}

	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), noop, fmt.Errorf("log level: %w", err)
	}

	out, closer, err := openTarget(opts.Target())
	if err != nil {
		return zerolog.Nop(), noop, err
	}

	l := zerolog.New(out).
		Level(lvl).
		Hook(logging.ContextHook{}).
		With().Timestamp().Logger()
	return l, closer, nil
}

func openTarget(path string) (io.Writer, func(), error) {
	if path == "" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}, func() {}, nil
		}
		return os.Stdout, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
