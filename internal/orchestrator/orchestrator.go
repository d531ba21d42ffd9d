// Package orchestrator drives the sequential build and publish of the changed packages.
package orchestrator

import (
	"context"
	"strings"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/flow"
	"github.com/monorel/monorel/internal/git"
	"github.com/monorel/monorel/internal/pipeline"
	"github.com/monorel/monorel/internal/report"
	"github.com/monorel/monorel/internal/telemetry"
	"github.com/monorel/monorel/internal/workspace"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
)

const auditArtifactsDir = "audit"

// Runner builds packages one at a time. A failing package never stops the packages after it.
type Runner struct {
	registry  pipeline.RegistryConfigurer
	publisher pipeline.Publisher
	auditor   pipeline.Auditor
	resolver  *flow.Resolver
	report    *report.Report
	opts      *options.Options

	// workspace seeds the versions `workspace:` specifiers resolve to.
	workspace workspace.Packages
}

// Option configures a Runner.
type Option func(*Runner)

// WithReport records every package run in r.
func WithReport(r *report.Report) Option {
	return func(runner *Runner) {
		runner.report = r
	}
}

// WithResolver overrides the flow resolver, mainly to pin the staging clock.
func WithResolver(resolver *flow.Resolver) Option {
	return func(runner *Runner) {
		runner.resolver = resolver
	}
}

// WithWorkspace sets every discovered package, including those that are not built.
func WithWorkspace(pkgs workspace.Packages) Option {
	return func(runner *Runner) {
		runner.workspace = pkgs
	}
}

// NewRunner creates a Runner using the given collaborators.
func NewRunner(opts *options.Options, registry pipeline.RegistryConfigurer, publisher pipeline.Publisher, auditor pipeline.Auditor, runnerOpts ...Option) *Runner {
	runner := &Runner{
		opts:      opts,
		registry:  registry,
		publisher: publisher,
		auditor:   auditor,
		resolver:  flow.NewResolver(),
		report:    report.NewReport(),
	}

	for _, opt := range runnerOpts {
		opt(runner)
	}

	return runner
}

// Report returns the report the runner records into.
func (runner *Runner) Report() *report.Report {
	return runner.report
}

// Exclude records packages that are not built in this run.
func (runner *Runner) Exclude(pkgs workspace.Packages) error {
	for _, pkg := range pkgs {
		if err := runner.report.AddRun(report.NewRun(pkg.Name)); err != nil {
			return err
		}

		if err := runner.report.EndRun(pkg.Name, report.WithResult(report.ResultExcluded), report.WithReason(report.ReasonUnchanged)); err != nil {
			return err
		}
	}

	return nil
}

// Run builds pkgs in order and returns one result per package. When any package failed, the
// results are returned together with a BuildFailedError.
func (runner *Runner) Run(ctx context.Context, l log.Logger, event flow.Context, pkgs workspace.Packages) (BuildResults, error) {
	versions := make(map[string]string, len(runner.workspace)+len(pkgs))

	for _, pkg := range runner.workspace {
		versions[pkg.Name] = pkg.Version
	}

	for _, pkg := range pkgs {
		versions[pkg.Name] = pkg.Version
	}

	results := make(BuildResults, 0, len(pkgs))

	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return results, errors.New(err)
		}

		if err := runner.report.AddRun(report.NewRun(pkg.Name)); err != nil {
			return results, err
		}

		pkgLogger := l.WithField(log.FieldKeyPrefix, pkg.Name)

		var out outcome

		err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "package_build", map[string]any{
			"package": pkg.Name,
			"event":   string(event.EventType),
		}, func(ctx context.Context) error {
			out = runner.buildPackage(ctx, pkgLogger, event, pkg, versions)

			if failure, ok := out.(Failure); ok {
				return failure.Err
			}

			return nil
		})
		if err != nil {
			pkgLogger.Debugf("Telemetry recorded failure: %v", err)
		}

		result, err := runner.result(pkg, out)
		if err != nil {
			return results, err
		}

		if success, ok := out.(Success); ok {
			versions[pkg.Name] = success.Version
		}

		results = append(results, result)
	}

	if failed := results.Failed(); len(failed) > 0 {
		return results, errors.New(BuildFailedError{Packages: failed})
	}

	return results, nil
}

// buildPackage runs every step for one package. The registry configuration is restored before it returns.
func (runner *Runner) buildPackage(ctx context.Context, l log.Logger, event flow.Context, pkg *workspace.Package, versions map[string]string) (out outcome) {
	fl, err := runner.resolver.Resolve(event, pkg.Version, git.ShortSHA(event.CommitSHA))
	if err != nil {
		l.Errorf("Cannot resolve version of %s: %v", pkg.Name, err)
		return Failure{Reason: report.ReasonFlowError, Err: err}
	}

	l.Infof("Resolved %s flow: %s@%s with tag %s", fl.Type, pkg.Name, fl.Version, fl.Tag)

	restore, err := runner.registry.Configure(ctx, l, pkg, runner.opts.Registry)
	if err != nil {
		l.Errorf("Cannot configure registry for %s: %v", pkg.Name, err)
		return Failure{Reason: report.ReasonRegistryError, Err: err}
	}

	defer func() {
		if err := restore(); err != nil {
			l.Errorf("Cannot restore registry configuration: %v", err)

			if _, ok := out.(Success); ok {
				out = Failure{Reason: report.ReasonRegistryError, Err: err}
			}
		}
	}()

	req := &pipeline.PublishRequest{
		Package:  pkg,
		Registry: runner.opts.Registry,
		Versions: versions,
		Version:  fl.Version,
		Tag:      fl.Tag,
		Publish:  runner.opts.Publish,
		DryRun:   runner.opts.DryRun,
	}

	if err := runner.publisher.Publish(ctx, l, req); err != nil {
		l.Errorf("Build of %s failed: %v", pkg.Name, err)
		return Failure{Reason: report.ReasonPublishError, Err: err}
	}

	success := Success{Version: fl.Version, Tag: fl.Tag}

	if !runner.opts.Audit.Enabled {
		return success
	}

	return runner.audit(ctx, l, pkg, success)
}

func (runner *Runner) audit(ctx context.Context, l log.Logger, pkg *workspace.Package, success Success) outcome {
	req := &pipeline.AuditRequest{
		Package:      pkg,
		Level:        runner.opts.Audit.Level,
		ArtifactPath: runner.auditArtifactPath(pkg.Name),
	}

	err := runner.auditor.Audit(ctx, l, req)
	if err == nil {
		return success
	}

	if runner.opts.Audit.FailOnAudit {
		l.Errorf("Audit of %s failed: %v", pkg.Name, err)

		// The package is already published; its run is closed as a success before escalating.
		if endErr := runner.report.EndRun(pkg.Name, report.WithVersion(success.Version, success.Tag)); endErr != nil {
			l.Debugf("Cannot end run of %s: %v", pkg.Name, endErr)
		}

		return Failure{Reason: report.ReasonAuditFailed, Err: err}
	}

	l.Warnf("Audit of %s failed, ignoring: %v", pkg.Name, err)

	success.AuditIgnored = true

	return success
}

// result ends the report run of pkg and converts out to the emitted form.
func (runner *Runner) result(pkg *workspace.Package, out outcome) (BuildResult, error) {
	switch out := out.(type) {
	case Success:
		endOpts := []report.EndOption{report.WithVersion(out.Version, out.Tag)}

		if out.AuditIgnored {
			endOpts = append(endOpts, report.WithReason(report.ReasonAuditIgnored))
		}

		if err := runner.report.EndRun(pkg.Name, endOpts...); err != nil {
			return BuildResult{}, err
		}

		return BuildResult{Name: pkg.Name, Version: out.Version, Result: ResultSuccess}, nil
	case Failure:
		endOpts := []report.EndOption{
			report.WithResult(report.ResultFailed),
			report.WithReason(out.Reason),
			report.WithError(out.Err),
		}

		if err := runner.report.EndRun(pkg.Name, endOpts...); err != nil {
			return BuildResult{}, err
		}

		result := BuildResult{Name: pkg.Name, Version: pkg.Version, Result: ResultFailed}

		if run := runner.report.GetRun(pkg.Name); run != nil && run.Version != "" {
			result.Version = run.Version
		}

		if out.Err != nil {
			result.Error = out.Err.Error()
		}

		return result, nil
	}

	return BuildResult{}, errors.Errorf("unknown outcome %T for %s", out, pkg.Name)
}

func (runner *Runner) auditArtifactPath(name string) string {
	file := strings.NewReplacer("@", "", "/", "-").Replace(name) + ".json"

	return runner.opts.ArtifactPath(auditArtifactsDir, file)
}
