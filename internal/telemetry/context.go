package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

const (
	telemeterContextKey ctxKey = iota
)

type ctxKey byte

func ContextWithTelemeter(ctx context.Context, tlm *Telemeter) context.Context {
	return context.WithValue(ctx, telemeterContextKey, tlm)
}

// TelemeterFromContext returns the telemeter stored in ctx, or a no-op telemeter.
func TelemeterFromContext(ctx context.Context) *Telemeter {
	if val := ctx.Value(telemeterContextKey); val != nil {
		if val, ok := val.(*Telemeter); ok {
			return val
		}
	}

	return new(Telemeter)
}

// TraceParentFromContext renders the span of ctx as a W3C `traceparent` value, or "" without a span.
func TraceParentFromContext(ctx context.Context) string {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return ""
	}

	flags := "00"
	if spanContext.TraceFlags().IsSampled() {
		flags = "01"
	}

	return "00-" + spanContext.TraceID().String() + "-" + spanContext.SpanID().String() + "-" + flags
}
