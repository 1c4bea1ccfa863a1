package logger

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	userIDKey    ctxKey = "user_id"
)

var base = logrus.New()

// Init configures the process-wide logger. Production environments get JSON
// output so log shippers can index the fields.
func Init(env, level string) {
	base.SetOutput(os.Stdout)
	if env == "production" {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)
}

// L returns the base logger.
func L() *logrus.Logger {
	return base
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// WithContext returns an entry carrying the request and user IDs found in ctx.
func WithContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(base)
	if ctx == nil {
		return entry
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		entry = entry.WithField("request_id", id)
	}
	if id, ok := ctx.Value(userIDKey).(string); ok && id != "" {
		entry = entry.WithField("user_id", id)
	}
	return entry
}
