package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey string

const ctxKeyLogger ctxKey = "logger"

// NewLogger returns a JSON logger for production or a debug text logger for dev.
func NewLogger(dev bool) *slog.Logger {
	return newLogger(os.Stdout, dev)
}

func newLogger(w io.Writer, dev bool) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	if dev {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}

// WithLogger stores a request scoped logger in ctx.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, log)
}

// LoggerFromContext returns the logger stored by WithLogger, or fallback.
func LoggerFromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if log, ok := ctx.Value(ctxKeyLogger).(*slog.Logger); ok && log != nil {
		return log
	}
	return fallback
}
