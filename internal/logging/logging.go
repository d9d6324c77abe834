// Package logging builds the logrus loggers shared by the binlid commands
// and the HTTP server.
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Default levels.
const (
	CLILevel    = "warn"
	ServerLevel = "info"
)

// New returns a JSON logger writing to out at the named level. An empty
// level means info.
func New(level string, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(out)

	if strings.TrimSpace(level) == "" {
		level = ServerLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	return log, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

type ctxKey struct{}

// WithContext binds entry to ctx.
func WithContext(ctx context.Context, entry logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the logger bound to ctx, or fallback when none is.
func FromContext(ctx context.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if entry, ok := ctx.Value(ctxKey{}).(logrus.FieldLogger); ok {
		return entry
	}
	return fallback
}
