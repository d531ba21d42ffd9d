package run

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/monorel/monorel/cli/commands/common"
	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/orchestrator"
	"github.com/monorel/monorel/internal/output"
	"github.com/monorel/monorel/internal/pipeline"
	"github.com/monorel/monorel/internal/report"
	"github.com/monorel/monorel/internal/shell"
	"github.com/monorel/monorel/internal/workspace"
	"github.com/monorel/monorel/pkg/log"
)

// Artifacts written to the artifacts directory.
const (
	// BuildResultsFilename holds the `build-results` document.
	BuildResultsFilename = "build-results.json"
	// ReportFilename holds every run of the report, excluded packages included.
	ReportFilename = "report.json"
)

// UnknownPackageManagerError is returned for a package manager override that is not supported.
type UnknownPackageManagerError struct {
	Name string
}

func (err UnknownPackageManagerError) Error() string {
	return "unknown package manager " + err.Name + ", supported: npm, pnpm, yarn, bun"
}

// Run discovers, selects and orders the packages, then builds them one after another.
// Build results are emitted even when packages failed; the returned error then carries exit code 1.
func Run(ctx context.Context, opts *Options) error {
	l := log.LoggerFromContext(ctx)
	sink := output.NewSink(opts.OutputFile, opts.Writer)

	event, err := common.Event(opts.Options, &opts.Event)
	if err != nil {
		return err
	}

	l.WithFields(common.EventFields(event)).Debugf("Event context loaded")

	pkgs, err := common.Discover(ctx, l, opts.Options, sink)
	if err != nil {
		return err
	}

	changed, err := common.DetectChanges(ctx, l, opts.Options, event, pkgs, sink)
	if err != nil {
		return err
	}

	ordered, err := common.Order(ctx, l, opts.Options, changed)
	if err != nil {
		return err
	}

	pm, err := opts.packageManager()
	if err != nil {
		return err
	}

	l.Debugf("Using package manager %s", pm.Name)

	runOpts := &shell.RunOptions{
		Writer:     opts.Writer,
		ErrWriter:  opts.ErrWriter,
		WorkingDir: opts.WorkingDir,
	}

	publisher := pipeline.NewCommandPublisher(opts.WorkingDir, pm, runOpts)
	publisher.SkipInstall = opts.SkipInstall
	publisher.SkipTests = opts.SkipTests
	publisher.BuildCommand = opts.BuildCommand

	r := report.NewReport(
		report.WithShouldColor(shouldColor(opts.ErrWriter)),
		report.WithShowPackageLevelSummary(opts.ShowPackageSummary),
	)

	runner := orchestrator.NewRunner(
		opts.Options,
		pipeline.NewNPMRCConfigurer(opts.WorkingDir),
		publisher,
		pipeline.NewCommandAuditor(opts.WorkingDir, pm, runOpts),
		orchestrator.WithReport(r),
		orchestrator.WithWorkspace(pkgs),
	)

	if err := runner.Exclude(unchanged(pkgs, changed)); err != nil {
		return err
	}

	results, runErr := runner.Run(ctx, l, event, ordered)

	if err := common.SetJSON(sink, output.KeyBuildResults, results, orchestrator.BuildResultsSchema()); err != nil {
		return errors.Join(runErr, err)
	}

	if err := results.WriteToFile(opts.ArtifactPath(BuildResultsFilename)); err != nil {
		l.Warnf("Cannot write build results artifact: %v", err)
	}

	if err := r.WriteToFile(opts.ArtifactPath(ReportFilename)); err != nil {
		l.Warnf("Cannot write report artifact: %v", err)
	}

	if err := r.WriteSummary(opts.ErrWriter); err != nil {
		l.Warnf("Cannot write run summary: %v", err)
	}

	if runErr != nil {
		return errors.New(errors.ErrorWithExitCode{Err: runErr, ExitCode: 1})
	}

	return nil
}

func (opts *Options) packageManager() (pipeline.PackageManager, error) {
	if opts.PackageManager != "" {
		pm, ok := pipeline.PackageManagerByName(opts.PackageManager)
		if !ok {
			return pm, errors.New(UnknownPackageManagerError{Name: opts.PackageManager})
		}

		return pm, nil
	}

	rootManifest, err := workspace.ReadManifest(filepath.Join(opts.WorkingDir, workspace.ManifestFilename))
	if err != nil {
		return pipeline.PackageManager{}, err
	}

	return pipeline.DetectPackageManager(opts.WorkingDir, rootManifest), nil
}

func unchanged(all, changed workspace.Packages) workspace.Packages {
	var pkgs workspace.Packages

	for _, pkg := range all {
		if changed.Find(pkg.Name) == nil {
			pkgs = append(pkgs, pkg)
		}
	}

	return pkgs
}

func shouldColor(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd())
}
