// Package common holds shared service identity and logging setup.
package common

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// LoggingOpts configures the process-wide logger.
type LoggingOpts struct {
	// Debug enables debug-level logging.
	Debug bool

	// JSON switches to machine-readable JSON output.
	JSON bool

	// Service is added as a 'service' tag to all log entries.
	Service string

	// Version is added as a 'version' tag to all log entries.
	Version string
}

// SetupLogger creates the process logger: tinted console output by default,
// JSON when requested.
func SetupLogger(opts *LoggingOpts) (log *slog.Logger) {
	logLevel := slog.LevelInfo
	if opts.Debug {
		logLevel = slog.LevelDebug
	}

	if opts.JSON {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	} else {
		log = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
		}))
	}

	if opts.Service != "" {
		log = log.With("service", opts.Service)
	}

	if opts.Version != "" {
		log = log.With("version", opts.Version)
	}

	return log
}
