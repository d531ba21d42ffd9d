// Package run provides the `monorel run` command, which builds and publishes the changed packages.
package run

import (
	"github.com/urfave/cli/v2"

	"github.com/monorel/monorel/cli/commands/changed"
	"github.com/monorel/monorel/cli/flags"
	"github.com/monorel/monorel/options"
)

const (
	CommandName = "run"

	RegistryTargetFlagName   = "registry"
	RegistryURLFlagName      = "registry-url"
	RegistryScopeFlagName    = "registry-scope"
	RegistryTokenEnvFlagName = "registry-token-env"

	AuditFlagName       = "audit"
	AuditLevelFlagName  = "audit-level"
	FailOnAuditFlagName = "fail-on-audit"

	NoPublishFlagName          = "no-publish"
	DryRunFlagName             = "dry-run"
	SkipInstallFlagName        = "skip-install"
	SkipTestsFlagName          = "skip-tests"
	PackageManagerFlagName     = "package-manager"
	BuildCommandFlagName       = "build-command"
	ArtifactsDirFlagName       = "artifacts-dir"
	ShowPackageSummaryFlagName = "summary-per-package"
)

func NewFlags(cmdOpts *Options) []cli.Flag {
	prefix := flags.Prefix{flags.MonorelPrefix}

	runFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        RegistryTargetFlagName,
			EnvVars:     prefix.EnvVars(RegistryTargetFlagName),
			Destination: &cmdOpts.Registry.Target,
			Value:       options.RegistryNPM,
			Usage:       "The registry to publish to: npm, github or custom.",
		},
		&cli.StringFlag{
			Name:        RegistryURLFlagName,
			EnvVars:     prefix.EnvVars(RegistryURLFlagName),
			Destination: &cmdOpts.Registry.URL,
			Usage:       "The registry URL. Required for the custom registry.",
		},
		&cli.StringFlag{
			Name:        RegistryScopeFlagName,
			EnvVars:     prefix.EnvVars(RegistryScopeFlagName),
			Destination: &cmdOpts.Registry.Scope,
			Usage:       "The @owner scope package names are published under. Required for the github registry.",
		},
		&cli.StringFlag{
			Name:        RegistryTokenEnvFlagName,
			EnvVars:     prefix.EnvVars(RegistryTokenEnvFlagName),
			Destination: &cmdOpts.Registry.TokenEnv,
			Value:       options.DefaultTokenEnv,
			Usage:       "The environment variable holding the registry token.",
		},
		&cli.BoolFlag{
			Name:        AuditFlagName,
			EnvVars:     prefix.EnvVars(AuditFlagName),
			Destination: &cmdOpts.Audit.Enabled,
			Usage:       "Audit the dependencies of every built package.",
		},
		&cli.StringFlag{
			Name:        AuditLevelFlagName,
			EnvVars:     prefix.EnvVars(AuditLevelFlagName),
			Destination: &cmdOpts.Audit.Level,
			Value:       options.DefaultAuditLevel,
			Usage:       "The lowest severity that fails the audit: low, moderate, high or critical.",
		},
		&cli.BoolFlag{
			Name:        FailOnAuditFlagName,
			EnvVars:     prefix.EnvVars(FailOnAuditFlagName),
			Destination: &cmdOpts.Audit.FailOnAudit,
			Usage:       "Mark packages whose audit fails as failed.",
		},
		&cli.BoolFlag{
			Name:    NoPublishFlagName,
			EnvVars: prefix.EnvVars(NoPublishFlagName),
			Usage:   "Build and test without publishing.",
			Action: func(_ *cli.Context, val bool) error {
				cmdOpts.Publish = !val
				return nil
			},
		},
		&cli.BoolFlag{
			Name:        DryRunFlagName,
			EnvVars:     prefix.EnvVars(DryRunFlagName),
			Destination: &cmdOpts.DryRun,
			Usage:       "Pass --dry-run to the publish command.",
		},
		&cli.BoolFlag{
			Name:        SkipInstallFlagName,
			EnvVars:     prefix.EnvVars(SkipInstallFlagName),
			Destination: &cmdOpts.SkipInstall,
			Usage:       "Do not install the workspace dependencies before building.",
		},
		&cli.BoolFlag{
			Name:        SkipTestsFlagName,
			EnvVars:     prefix.EnvVars(SkipTestsFlagName),
			Destination: &cmdOpts.SkipTests,
			Usage:       "Do not run the test script of the packages.",
		},
		&cli.StringFlag{
			Name:        PackageManagerFlagName,
			EnvVars:     prefix.EnvVars(PackageManagerFlagName),
			Destination: &cmdOpts.PackageManager,
			Usage:       "The package manager to use: npm, pnpm, yarn or bun. Detected from the lockfiles by default.",
		},
		&cli.StringFlag{
			Name:        BuildCommandFlagName,
			EnvVars:     prefix.EnvVars(BuildCommandFlagName),
			Destination: &cmdOpts.BuildCommand,
			Usage:       "Command run in each package directory instead of its build script.",
		},
		&cli.StringFlag{
			Name:        ArtifactsDirFlagName,
			EnvVars:     prefix.EnvVars(ArtifactsDirFlagName),
			Destination: &cmdOpts.ArtifactsDir,
			Value:       options.DefaultArtifactsDir,
			Usage:       "Directory, relative to the workspace root, receiving the build results and audit summaries.",
		},
		&cli.BoolFlag{
			Name:        ShowPackageSummaryFlagName,
			EnvVars:     prefix.EnvVars(ShowPackageSummaryFlagName),
			Destination: &cmdOpts.ShowPackageSummary,
			Value:       true,
			Usage:       "List every package in the run summary.",
		},
	}

	return append(runFlags, changed.NewFlags(cmdOpts.Options, &cmdOpts.Event)...)
}

func NewCommand(opts *options.Options) *cli.Command {
	cmdOpts := NewOptions(opts)

	return &cli.Command{
		Name:  CommandName,
		Usage: "Build and publish the changed packages in dependency order.",
		Flags: NewFlags(cmdOpts),
		Before: func(_ *cli.Context) error {
			return cmdOpts.Validate()
		},
		Action: func(ctx *cli.Context) error {
			return Run(ctx.Context, cmdOpts)
		},
	}
}
