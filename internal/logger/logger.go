// Package logger builds the slog.Logger used across rubrica.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the level, format and destination of log output.
type Options struct {
	Level  string // debug, info, warn or error
	Format string // text or json
	File   string // "" or "-" for Stderr, os.DevNull to discard
	Stderr io.Writer
}

func level(option string) (slog.Leveler, bool) {
	switch strings.ToLower(option) {
	case "":
		return slog.LevelWarn, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return nil, false
	}
}

func nopClose() error { return nil }

// New returns a logger for opts and a function that closes its log file.
// Values that cannot be used fall back to the defaults and the returned
// logger reports what it could not honor.
func New(opts Options) (*slog.Logger, func() error) {
	lvl, ok := level(opts.Level)
	if !ok {
		bad := opts.Level
		opts.Level = ""
		logger, closer := New(opts)
		logger.Warn("could not parse logger level", "level", bad)
		return logger, closer
	}
	handlerOpts := slog.HandlerOptions{Level: lvl}

	var output io.Writer
	closer := nopClose
	switch opts.File {
	case "", "-":
		output = opts.Stderr
		if output == nil {
			output = os.Stderr
		}
	case os.DevNull:
		return slog.New(slog.DiscardHandler), nopClose
	default:
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			opts.File = ""
			logger, closer := New(opts)
			logger.Warn("could not open logger file", "err", err)
			return logger, closer
		}
		output = f
		closer = f.Close
	}

	switch strings.ToLower(opts.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(output, &handlerOpts)), closer
	case "json":
		return slog.New(slog.NewJSONHandler(output, &handlerOpts)), closer
	default:
		_ = closer()
		bad := opts.Format
		opts.Format = "text"
		logger, closer := New(opts)
		logger.Warn("could not parse logger format", "format", bad)
		return logger, closer
	}
}
