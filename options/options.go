// Package options provides a set of options that configure the behavior of the monorel program.
package options

import (
	"context"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/telemetry"
	"github.com/monorel/monorel/pkg/log"
)

const ContextKey ctxKey = iota

const (
	DefaultMainBranch = "main"
	DefaultDevBranch  = "dev"

	// DefaultTokenEnv is the environment variable the registry token is read from at publish time.
	DefaultTokenEnv = "NODE_AUTH_TOKEN"

	DefaultAuditLevel = "high"

	// DefaultArtifactsDir is relative to the workspace root.
	DefaultArtifactsDir = ".monorel"

	defaultLogLevel = log.InfoLevel
)

// Registry targets.
const (
	RegistryNPM    = "npm"
	RegistryGitHub = "github"
	RegistryCustom = "custom"

	NPMRegistryURL    = "https://registry.npmjs.org/"
	GitHubRegistryURL = "https://npm.pkg.github.com/"
)

var (
	// AuditLevels are the severity thresholds understood by the audit command, lowest first.
	AuditLevels = []string{"low", "moderate", "high", "critical"}

	validate = validator.New(validator.WithRequiredStructEnabled())
)

type ctxKey byte

// RegistryOptions selects the registry packages are published to.
type RegistryOptions struct {
	Target string `validate:"required,oneof=npm github custom"`
	// URL is required for the custom target and overrides the default of the others.
	URL string `validate:"required_if=Target custom,omitempty,url"`
	// Scope is the `@owner` scope package names are rewritten to. GitHub Packages requires it.
	Scope    string `validate:"required_if=Target github,omitempty,startswith=@,excludes=/"`
	TokenEnv string `validate:"required"`
}

// RegistryURL returns the URL of the selected registry, always with a trailing slash.
func (opts RegistryOptions) RegistryURL() string {
	url := opts.URL

	if url == "" {
		switch opts.Target {
		case RegistryGitHub:
			url = GitHubRegistryURL
		default:
			url = NPMRegistryURL
		}
	}

	if !strings.HasSuffix(url, "/") {
		url += "/"
	}

	return url
}

// Validate reports an invalid registry target configuration.
func (opts RegistryOptions) Validate() error {
	if err := validate.Struct(opts); err != nil {
		return errors.New(InvalidRegistryError{Err: err})
	}

	return nil
}

// AuditOptions controls the vulnerability audit of built packages.
type AuditOptions struct {
	Level       string `validate:"required,oneof=low moderate high critical"`
	Enabled     bool
	FailOnAudit bool
}

// Options represents a set of configurations for a monorel run.
type Options struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Telemetry *telemetry.Options
	// Env is the process environment, used for GitHub Actions fallbacks.
	Env map[string]string

	Registry RegistryOptions
	Audit    AuditOptions

	// RunID identifies the run in logs, telemetry and artifacts.
	RunID string
	// WorkingDir is the workspace root, which is also the repository root.
	WorkingDir   string
	ArtifactsDir string
	// OutputFile receives the result records, usually `$GITHUB_OUTPUT`. Empty writes them to Writer.
	OutputFile string
	MainBranch string
	DevBranch  string
	LogFormat  string
	LogLevel   log.Level

	All            bool
	Publish        bool
	DryRun         bool
	SkipInstall    bool
	SkipTests      bool
	ExcludeNegated bool
}

// NewOptions creates a new Options object with reasonable defaults for real usage.
func NewOptions() *Options {
	return NewOptionsWithWriters(os.Stdout, os.Stderr)
}

// NewOptionsWithWriters creates a new Options object with the given writers.
func NewOptionsWithWriters(stdout, stderr io.Writer) *Options {
	return &Options{
		Writer:       stdout,
		ErrWriter:    stderr,
		Telemetry:    new(telemetry.Options),
		Env:          map[string]string{},
		RunID:        uuid.NewString(),
		ArtifactsDir: DefaultArtifactsDir,
		MainBranch:   DefaultMainBranch,
		DevBranch:    DefaultDevBranch,
		LogLevel:     defaultLogLevel,
		Registry: RegistryOptions{
			Target:   RegistryNPM,
			TokenEnv: DefaultTokenEnv,
		},
		Audit: AuditOptions{
			Level: DefaultAuditLevel,
		},
		Publish: true,
	}
}

// NewOptionsForTest creates options suitable for tests, rooted at workingDir and writing nowhere.
func NewOptionsForTest(workingDir string) *Options {
	opts := NewOptionsWithWriters(io.Discard, io.Discard)
	opts.WorkingDir = workingDir

	return opts
}

// Validate checks the options that must be valid before any package is processed.
func (opts *Options) Validate() error {
	if err := opts.Registry.Validate(); err != nil {
		return err
	}

	if opts.Audit.Enabled {
		if err := validate.Struct(opts.Audit); err != nil {
			return errors.New(InvalidAuditLevelError{Level: opts.Audit.Level})
		}
	}

	return nil
}

// ArtifactPath returns the path of an artifact file. A relative ArtifactsDir is resolved against WorkingDir.
func (opts *Options) ArtifactPath(elem ...string) string {
	dir := opts.ArtifactsDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(opts.WorkingDir, dir)
	}

	return filepath.Join(append([]string{dir}, elem...)...)
}

// Clone performs a deep copy of `opts`.
func (opts *Options) Clone() *Options {
	newOpts := *opts
	newOpts.Env = maps.Clone(opts.Env)

	if opts.Telemetry != nil {
		telemetryOpts := *opts.Telemetry
		newOpts.Telemetry = &telemetryOpts
	}

	return &newOpts
}

// ContextWithOptions returns a copy of ctx carrying opts.
func ContextWithOptions(ctx context.Context, opts *Options) context.Context {
	return context.WithValue(ctx, ContextKey, opts)
}

// FromContext returns the options stored in ctx, or nil.
func FromContext(ctx context.Context) *Options {
	if val := ctx.Value(ContextKey); val != nil {
		if opts, ok := val.(*Options); ok {
			return opts
		}
	}

	return nil
}
