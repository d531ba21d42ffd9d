package telemetry

// Options configures trace and metric collection. Empty exporters disable collection.
type Options struct {
	TraceExporter                  string
	TraceExporterHTTPEndpoint      string
	TraceParent                    string
	MetricExporter                 string
	TraceExporterInsecureEndpoint  bool
	MetricExporterInsecureEndpoint bool
}

// Environment variables read into Options by the CLI.
const (
	TraceExporterEnv             = "MONOREL_TELEMETRY_TRACE_EXPORTER"
	TraceExporterHTTPEndpointEnv = "MONOREL_TELEMETRY_TRACE_EXPORTER_HTTP_ENDPOINT"
	TraceExporterInsecureEnv     = "MONOREL_TELEMETRY_TRACE_EXPORTER_INSECURE_ENDPOINT"
	MetricExporterEnv            = "MONOREL_TELEMETRY_METRIC_EXPORTER"
	MetricExporterInsecureEnv    = "MONOREL_TELEMETRY_METRIC_EXPORTER_INSECURE_ENDPOINT"
	TraceParentEnv               = "TRACEPARENT"
)
