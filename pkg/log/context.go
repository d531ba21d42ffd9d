package log

import "context"

type ctxKey byte

const loggerContextKey ctxKey = iota

// std is returned when no logger is stored in the context.
var std = New()

// ContextWithLogger returns a new context carrying the given logger.
func ContextWithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// LoggerFromContext returns the logger stored in the context, or the default logger.
func LoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerContextKey).(Logger); ok {
		return logger
	}

	return std
}
