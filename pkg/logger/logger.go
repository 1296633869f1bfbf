package logger

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

type contextKey struct{}

// Logger returns the log entry carried by ctx, or a fresh entry bound to the
// standard logger when the context carries none.
func Logger(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(contextKey{}).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// ToContext attaches a log entry to ctx so downstream calls inherit its fields.
func ToContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, contextKey{}, entry)
}

// Setup configures the standard logger from the application config.
// Local environments get human-readable output, everything else JSON.
func Setup(environment, level string) {
	if strings.EqualFold(environment, "local") {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
