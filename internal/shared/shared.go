// package shared defines configuration, errors and logging helpers used by every package.
package shared

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a [log.Logger] writing to w with a "nicofix" prefix, timestamps and caller reporting.
//
// The writer defaults to [os.Stderr] so fixture summaries on stdout stay clean.
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "nicofix",
		ReportTimestamp: true,
		ReportCaller:    true,
		TimeFormat:      time.TimeOnly,
	})
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// Verbosity maps the --verbose flag to a log level.
func Verbosity(verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	return log.InfoLevel
}

// GenerateID generates a capture run ID from a v4 [uuid.UUID]
func GenerateID() string {
	return uuid.New().String()
}
