// Package logging configures logrus for the dashboard. The terminal UI owns
// stdout, so log output goes to a file.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

// CorrelationIDKey stores the request correlation id in a context.
const CorrelationIDKey contextKey = "correlation_id"

const correlationIDField = "correlation_id"

// Setup points the standard logrus logger at the file at path and sets the
// level. The returned closer releases the file.
func Setup(path, level string) (io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}

	//nolint:gosec // log path is configured by the local user
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	Configure(f, lvl)
	return f, nil
}

// Configure sets the standard logger's output, level and formatter.
func Configure(w io.Writer, level logrus.Level) {
	logrus.SetOutput(w)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})
}

// Discard silences the standard logger.
func Discard() {
	logrus.SetOutput(io.Discard)
}

// WithCorrelationID returns a context carrying a fresh correlation id.
func WithCorrelationID(ctx context.Context) (context.Context, string) {
	id := uuid.New().String()
	return context.WithValue(ctx, CorrelationIDKey, id), id
}

// CorrelationID returns the id stored by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// ForContext returns a log entry tagged with the context's correlation id.
func ForContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())
	if ctx == nil {
		return entry
	}
	if id := CorrelationID(ctx); id != "" {
		return entry.WithField(correlationIDField, id)
	}
	return entry
}
