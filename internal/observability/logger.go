package observability

import (
	"context"
	"io"
	"log/slog"
)

type ctxKey string

const traceIDKey ctxKey = "trace_id"

type LoggerConfig struct {
	Service  string
	Profile  string
	LogLevel slog.Level
	LogJSON  bool
}

func NewLogger(cfg LoggerConfig, writer io.Writer) *slog.Logger {
	if writer == nil {
		writer = io.Discard
	}
	var handler slog.Handler
	if cfg.LogJSON {
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: cfg.LogLevel})
	} else {
		handler = slog.NewTextHandler(writer, &slog.HandlerOptions{Level: cfg.LogLevel})
	}
	return slog.New(handler).With(
		slog.String("service", cfg.Service),
		slog.String("profile", cfg.Profile),
	)
}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func TraceIDFromContext(ctx context.Context) string {
	value, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return ""
	}
	return value
}
