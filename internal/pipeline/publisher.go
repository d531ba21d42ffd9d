package pipeline

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/manifest"
	"github.com/monorel/monorel/internal/shell"
	"github.com/monorel/monorel/internal/util"
	"github.com/monorel/monorel/internal/workspace"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
)

// Scripts run by the publisher when the package declares them.
const (
	BuildScript = "build"
	TestScript  = "test"
)

// CommandPublisher builds and publishes packages with the package manager of the workspace.
type CommandPublisher struct {
	RunOptions     *shell.RunOptions
	PackageManager PackageManager
	RootDir        string

	// BuildCommand, when set, replaces the `build` script. It is split with shell quoting rules.
	BuildCommand string
	SkipInstall  bool
	SkipTests    bool

	installed bool
}

// NewCommandPublisher creates a publisher for the workspace at rootDir.
func NewCommandPublisher(rootDir string, pm PackageManager, runOpts *shell.RunOptions) *CommandPublisher {
	return &CommandPublisher{
		RootDir:        rootDir,
		PackageManager: pm,
		RunOptions:     runOpts,
	}
}

// Publish installs the workspace dependencies once per run, then builds, tests and publishes the package.
// The manifest is rewritten for publishing and restored before Publish returns.
func (p *CommandPublisher) Publish(ctx context.Context, l log.Logger, req *PublishRequest) (err error) {
	pkg := req.Package
	pkgDir := filepath.Join(p.RootDir, filepath.FromSlash(pkg.Dir))
	manifestPath := filepath.Join(p.RootDir, filepath.FromSlash(pkg.ManifestPath))

	pkgManifest := pkg.Manifest
	if pkgManifest == nil {
		if pkgManifest, err = workspace.ReadManifest(manifestPath); err != nil {
			return err
		}
	}

	if err := p.install(ctx, l); err != nil {
		return err
	}

	snap, err := manifest.Take(manifestPath)
	if err != nil {
		return err
	}

	defer func() {
		if restoreErr := snap.Restore(); restoreErr != nil {
			err = errors.Join(err, restoreErr)
		}
	}()

	rewrite := ManifestRewrite{
		Version:  req.Version,
		Versions: req.Versions,
	}

	if req.Registry.Target == options.RegistryGitHub {
		rewrite.Scope = req.Registry.Scope
	}

	if err := RewriteManifest(manifestPath, rewrite); err != nil {
		return err
	}

	l.Infof("Building %s@%s", pkg.Name, req.Version)

	if err := p.build(ctx, l, pkgDir, pkg.Name, pkgManifest); err != nil {
		return err
	}

	if !p.SkipTests && pkgManifest.HasScript(TestScript) {
		if err := p.run(ctx, l, pkgDir, pkg.Name, p.PackageManager.Name, p.PackageManager.RunArgs(TestScript)...); err != nil {
			return err
		}
	}

	if !req.Publish {
		l.Debugf("Publishing disabled, skipping publish of %s", pkg.Name)
		return nil
	}

	publishedName := ScopedName(pkg.Name, rewrite.Scope)
	public := req.Registry.Target == options.RegistryNPM && strings.HasPrefix(publishedName, "@")

	command, args := p.PackageManager.PublishCommand(req.Tag, req.Registry.RegistryURL(), public, req.DryRun)

	l.Infof("Publishing %s@%s with tag %s", publishedName, req.Version, req.Tag)

	return p.run(ctx, l, pkgDir, pkg.Name, command, args...)
}

func (p *CommandPublisher) build(ctx context.Context, l log.Logger, pkgDir, name string, pkgManifest *workspace.Manifest) error {
	if p.BuildCommand != "" {
		args, err := shlex.Split(p.BuildCommand)
		if err != nil {
			return errors.Errorf("invalid build command %q: %w", p.BuildCommand, err)
		}

		if len(args) == 0 {
			return nil
		}

		return p.run(ctx, l, pkgDir, name, args[0], args[1:]...)
	}

	if !pkgManifest.HasScript(BuildScript) {
		return nil
	}

	return p.run(ctx, l, pkgDir, name, p.PackageManager.Name, p.PackageManager.RunArgs(BuildScript)...)
}

func (p *CommandPublisher) install(ctx context.Context, l log.Logger) error {
	if p.SkipInstall || p.installed {
		return nil
	}

	l.Infof("Installing workspace dependencies with %s", p.PackageManager.Name)

	if err := p.run(ctx, l, p.RootDir, "", p.PackageManager.Name, p.PackageManager.InstallArgs()...); err != nil {
		return err
	}

	p.installed = true

	return nil
}

// run runs a command in dir. Output lines are prefixed with `[prefix]` unless prefix is empty.
func (p *CommandPublisher) run(ctx context.Context, l log.Logger, dir, prefix, command string, args ...string) error {
	runOpts := &shell.RunOptions{WorkingDir: dir}

	if p.RunOptions != nil {
		runOpts.Env = p.RunOptions.Env
		runOpts.Writer = prefixed(p.RunOptions.Writer, prefix)
		runOpts.ErrWriter = prefixed(p.RunOptions.ErrWriter, prefix)
	}

	return shell.RunCommand(ctx, l, runOpts, command, args...)
}

func prefixed(w io.Writer, prefix string) io.Writer {
	if w == nil || prefix == "" {
		return w
	}

	return util.PrefixedWriter(w, "["+prefix+"] ")
}
