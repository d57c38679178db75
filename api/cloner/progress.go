package cloner

import (
	"log/slog"
)

// LogReporter forwards remote provisioning progress events to the
// structured log. It is the default progress observer when none is
// injected.
type LogReporter struct {
	log *slog.Logger
}

// NewLogReporter creates a progress reporter writing to the given logger.
func NewLogReporter(log *slog.Logger) *LogReporter {
	return &LogReporter{log: log}
}

// Progress logs one remote progress event.
func (r *LogReporter) Progress(message string, step, total int) {
	r.log.Info("Provisioning progress",
		slog.String("message", message),
		slog.Int("step", step),
		slog.Int("total", total))
}
