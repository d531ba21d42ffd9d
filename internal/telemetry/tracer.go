package telemetry

import (
	"context"
	"io"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/monorel/monorel/internal/errors"
)

const (
	noneExporterType     = "none"
	consoleExporterType  = "console"
	otlpHTTPExporterType = "otlpHttp"
	otlpGrpcExporterType = "otlpGrpc"
	httpExporterType     = "http"

	traceParentParts = 4
)

type Tracer struct {
	trace.Tracer
	provider          *sdktrace.TracerProvider
	parentSpanContext *trace.SpanContext
}

// NewTracer creates and configures the traces collection. It returns nil when tracing is disabled.
func NewTracer(ctx context.Context, appName, appVersion string, writer io.Writer, opts *Options) (*Tracer, error) {
	spanExporter, err := NewTraceExporter(ctx, writer, opts)
	if err != nil {
		return nil, err
	}

	if spanExporter == nil {
		return nil, nil
	}

	res, err := newResource(appName, appVersion)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(provider)

	tracer := &Tracer{
		Tracer:   provider.Tracer(appName),
		provider: provider,
	}

	if opts.TraceParent != "" {
		parent, err := ParseTraceParent(opts.TraceParent)
		if err != nil {
			return nil, err
		}

		tracer.parentSpanContext = &parent
	}

	return tracer, nil
}

// ParseTraceParent parses a W3C `traceparent` value into a remote span context.
func ParseTraceParent(traceParent string) (trace.SpanContext, error) {
	parts := strings.Split(traceParent, "-")
	if len(parts) != traceParentParts {
		return trace.SpanContext{}, errors.Errorf("invalid %s value %s", TraceParentEnv, traceParent)
	}

	traceIDHex, spanIDHex, traceFlagsStr := parts[1], parts[2], parts[3]

	parsedFlag, err := strconv.Atoi(traceFlagsStr)
	if err != nil {
		return trace.SpanContext{}, errors.Errorf("invalid trace flags: %w", err)
	}

	traceFlags := trace.FlagsSampled
	if parsedFlag == 0 {
		traceFlags = 0
	}

	traceID, err := trace.TraceIDFromHex(traceIDHex)
	if err != nil {
		return trace.SpanContext{}, errors.New(err)
	}

	spanID, err := trace.SpanIDFromHex(spanIDHex)
	if err != nil {
		return trace.SpanContext{}, errors.New(err)
	}

	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: traceFlags,
		Remote:     true,
	}), nil
}

// NewTraceExporter creates a new exporter based on the telemetry options.
func NewTraceExporter(ctx context.Context, writer io.Writer, opts *Options) (sdktrace.SpanExporter, error) {
	switch opts.TraceExporter {
	case "", noneExporterType:
		return nil, nil
	case httpExporterType:
		if opts.TraceExporterHTTPEndpoint == "" {
			return nil, &ErrorMissingEnvVariable{
				Vars: []string{TraceExporterHTTPEndpointEnv},
			}
		}

		config := []otlptracehttp.Option{otlptracehttp.WithEndpoint(opts.TraceExporterHTTPEndpoint)}
		if opts.TraceExporterInsecureEndpoint {
			config = append(config, otlptracehttp.WithInsecure())
		}

		return otlptracehttp.New(ctx, config...)
	case otlpHTTPExporterType:
		var config []otlptracehttp.Option
		if opts.TraceExporterInsecureEndpoint {
			config = append(config, otlptracehttp.WithInsecure())
		}

		return otlptracehttp.New(ctx, config...)
	case otlpGrpcExporterType:
		var config []otlptracegrpc.Option
		if opts.TraceExporterInsecureEndpoint {
			config = append(config, otlptracegrpc.WithInsecure())
		}

		return otlptracegrpc.New(ctx, config...)
	case consoleExporterType:
		return stdouttrace.New(stdouttrace.WithWriter(writer))
	}

	return nil, errors.New(&ErrorUnknownExporter{Kind: "trace", Name: opts.TraceExporter})
}

// Trace collects traces for method execution.
func (tracer *Tracer) Trace(ctx context.Context, name string, attrs map[string]any, fn func(childCtx context.Context) error) error {
	if tracer == nil || tracer.provider == nil {
		return fn(ctx)
	}

	if tracer.parentSpanContext != nil && !trace.SpanContextFromContext(ctx).IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, *tracer.parentSpanContext)
	}

	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(mapToAttributes(attrs)...))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	return nil
}

func (tracer *Tracer) shutdown(ctx context.Context) error {
	if tracer == nil || tracer.provider == nil {
		return nil
	}

	err := tracer.provider.Shutdown(ctx)
	tracer.provider = nil

	return errors.New(err)
}
