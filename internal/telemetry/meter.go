package telemetry

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/monorel/monorel/internal/errors"
)

const (
	// grpcHTTPExporterType is kept as an alias of otlpGrpc for metric exporters.
	grpcHTTPExporterType = "grpcHttp"

	metricDurationSuffix = "_duration"
	metricCountSuffix    = "_count"
	metricErrorsSuffix   = "_errors"
)

type Meter struct {
	metric.Meter
	provider *sdkmetric.MeterProvider
}

// NewMeter creates and configures the metrics collection. It returns nil when metrics are disabled.
func NewMeter(ctx context.Context, appName, appVersion string, writer io.Writer, opts *Options) (*Meter, error) {
	exporter, err := NewMetricsExporter(ctx, writer, opts)
	if err != nil {
		return nil, err
	}

	if exporter == nil {
		return nil, nil
	}

	res, err := newResource(appName, appVersion)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(time.Second))),
	)

	otel.SetMeterProvider(provider)

	return &Meter{
		Meter:    provider.Meter(appName),
		provider: provider,
	}, nil
}

// NewMetricsExporter creates a new exporter based on the telemetry options.
func NewMetricsExporter(ctx context.Context, writer io.Writer, opts *Options) (sdkmetric.Exporter, error) {
	switch opts.MetricExporter {
	case "", noneExporterType:
		return nil, nil
	case otlpHTTPExporterType:
		var config []otlpmetrichttp.Option
		if opts.MetricExporterInsecureEndpoint {
			config = append(config, otlpmetrichttp.WithInsecure())
		}

		return otlpmetrichttp.New(ctx, config...)
	case otlpGrpcExporterType, grpcHTTPExporterType:
		var config []otlpmetricgrpc.Option
		if opts.MetricExporterInsecureEndpoint {
			config = append(config, otlpmetricgrpc.WithInsecure())
		}

		return otlpmetricgrpc.New(ctx, config...)
	case consoleExporterType:
		return stdoutmetric.New(stdoutmetric.WithWriter(writer))
	}

	return nil, errors.New(&ErrorUnknownExporter{Kind: "metric", Name: opts.MetricExporter})
}

// Time records the duration, the invocation count and failures of fn under metrics derived from name.
func (meter *Meter) Time(ctx context.Context, name string, attrs map[string]any, fn func(childCtx context.Context) error) error {
	if meter == nil || meter.provider == nil {
		return fn(ctx)
	}

	metricName := CleanMetricName(name)
	attributes := metric.WithAttributes(mapToAttributes(attrs)...)

	if counter, err := meter.Int64Counter(metricName + metricCountSuffix); err == nil {
		counter.Add(ctx, 1, attributes)
	}

	start := time.Now()
	err := fn(ctx)

	if histogram, herr := meter.Int64Histogram(metricName+metricDurationSuffix, metric.WithUnit("ms")); herr == nil {
		histogram.Record(ctx, time.Since(start).Milliseconds(), attributes)
	}

	if err != nil {
		if counter, cerr := meter.Int64Counter(metricName + metricErrorsSuffix); cerr == nil {
			counter.Add(ctx, 1, attributes)
		}
	}

	return err
}

func (meter *Meter) shutdown(ctx context.Context) error {
	if meter == nil || meter.provider == nil {
		return nil
	}

	err := meter.provider.Shutdown(ctx)
	meter.provider = nil

	return errors.New(err)
}
