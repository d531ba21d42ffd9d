// Package global provides CLI global flags.
package global

import (
	"github.com/urfave/cli/v2"

	"github.com/monorel/monorel/cli/flags"
	"github.com/monorel/monorel/internal/output"
	"github.com/monorel/monorel/internal/telemetry"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
)

const (
	// Logs related flags.

	LogLevelFlagName  = "log-level"
	LogFormatFlagName = "log-format"

	WorkingDirFlagName     = "working-dir"
	OutputFileFlagName     = "output-file"
	MainBranchFlagName     = "main-branch"
	DevBranchFlagName      = "dev-branch"
	ExcludeNegatedFlagName = "exclude-negated"

	// Telemetry flags.

	TelemetryTraceExporterFlagName                  = "telemetry-trace-exporter"
	TelemetryTraceExporterInsecureEndpointFlagName  = "telemetry-trace-exporter-insecure-endpoint"
	TelemetryTraceExporterHTTPEndpointFlagName      = "telemetry-trace-exporter-http-endpoint"
	TraceparentFlagName                             = "traceparent"
	TelemetryMetricExporterFlagName                 = "telemetry-metric-exporter"
	TelemetryMetricExporterInsecureEndpointFlagName = "telemetry-metric-exporter-insecure-endpoint"
)

// NewFlags creates and returns global flags common for all commands.
func NewFlags(opts *options.Options) []cli.Flag {
	prefix := flags.Prefix{flags.MonorelPrefix}

	return []cli.Flag{
		&cli.StringFlag{
			Name:    LogLevelFlagName,
			EnvVars: prefix.EnvVars(LogLevelFlagName),
			Value:   opts.LogLevel.String(),
			Usage:   "Sets the logging level: " + log.AllLevels.String() + ".",
			Action: func(_ *cli.Context, val string) error {
				level, err := log.ParseLevel(val)
				if err != nil {
					return err
				}

				opts.LogLevel = level

				return nil
			},
		},
		&cli.StringFlag{
			Name:        LogFormatFlagName,
			EnvVars:     prefix.EnvVars(LogFormatFlagName),
			Destination: &opts.LogFormat,
			Value:       log.PrettyFormat,
			Usage:       "Sets the log format: pretty, json or bare.",
		},
		&cli.StringFlag{
			Name:        WorkingDirFlagName,
			EnvVars:     prefix.EnvVars(WorkingDirFlagName, "GITHUB_WORKSPACE"),
			Destination: &opts.WorkingDir,
			Usage:       "The workspace root, which must also be the repository root. Defaults to the current directory.",
		},
		&cli.StringFlag{
			Name:        OutputFileFlagName,
			EnvVars:     prefix.EnvVars(OutputFileFlagName, output.GitHubOutputEnv),
			Destination: &opts.OutputFile,
			Usage:       "File the run outputs are appended to. Outputs are printed when empty.",
		},
		&cli.StringFlag{
			Name:        MainBranchFlagName,
			EnvVars:     prefix.EnvVars(MainBranchFlagName),
			Destination: &opts.MainBranch,
			Value:       options.DefaultMainBranch,
			Usage:       "The branch releases and staging builds are made from.",
		},
		&cli.StringFlag{
			Name:        DevBranchFlagName,
			EnvVars:     prefix.EnvVars(DevBranchFlagName),
			Destination: &opts.DevBranch,
			Value:       options.DefaultDevBranch,
			Usage:       "The integration branch dev builds are made from.",
		},
		&cli.BoolFlag{
			Name:        ExcludeNegatedFlagName,
			EnvVars:     prefix.EnvVars(ExcludeNegatedFlagName),
			Destination: &opts.ExcludeNegated,
			Usage:       "Apply `!` workspace patterns as exclusions instead of ignoring them.",
		},

		// Telemetry flags.

		&cli.StringFlag{
			Name:        TelemetryTraceExporterFlagName,
			EnvVars:     []string{telemetry.TraceExporterEnv},
			Destination: &opts.Telemetry.TraceExporter,
			Usage:       "Enables traces export. Supported exporters: none, console, otlpHttp, otlpGrpc, http.",
		},
		&cli.StringFlag{
			Name:        TelemetryTraceExporterHTTPEndpointFlagName,
			EnvVars:     []string{telemetry.TraceExporterHTTPEndpointEnv},
			Destination: &opts.Telemetry.TraceExporterHTTPEndpoint,
			Usage:       "The endpoint traces are sent to by the http exporter.",
		},
		&cli.BoolFlag{
			Name:        TelemetryTraceExporterInsecureEndpointFlagName,
			EnvVars:     []string{telemetry.TraceExporterInsecureEnv},
			Destination: &opts.Telemetry.TraceExporterInsecureEndpoint,
			Usage:       "Sends traces without TLS.",
		},
		&cli.StringFlag{
			Name:        TraceparentFlagName,
			EnvVars:     []string{telemetry.TraceParentEnv},
			Destination: &opts.Telemetry.TraceParent,
			Usage:       "Parent span of the run, in W3C traceparent format.",
		},
		&cli.StringFlag{
			Name:        TelemetryMetricExporterFlagName,
			EnvVars:     []string{telemetry.MetricExporterEnv},
			Destination: &opts.Telemetry.MetricExporter,
			Usage:       "Enables metrics export. Supported exporters: none, console, otlpHttp, otlpGrpc.",
		},
		&cli.BoolFlag{
			Name:        TelemetryMetricExporterInsecureEndpointFlagName,
			EnvVars:     []string{telemetry.MetricExporterInsecureEnv},
			Destination: &opts.Telemetry.MetricExporterInsecureEndpoint,
			Usage:       "Sends metrics without TLS.",
		},
	}
}
