package common

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/monorel/monorel/internal/changes"
	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/flow"
	"github.com/monorel/monorel/internal/git"
	"github.com/monorel/monorel/internal/graph"
	"github.com/monorel/monorel/internal/output"
	"github.com/monorel/monorel/internal/schema"
	"github.com/monorel/monorel/internal/telemetry"
	"github.com/monorel/monorel/internal/workspace"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
)

// Discover finds the publishable packages of the workspace and emits them as `discovered-packages`.
func Discover(ctx context.Context, l log.Logger, opts *options.Options, sink output.Sink) (workspace.Packages, error) {
	var pkgs workspace.Packages

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "workspace_discovery", map[string]any{
		"working_dir": opts.WorkingDir,
	}, func(ctx context.Context) error {
		discovered, err := workspace.NewDiscovery(opts.WorkingDir).
			WithExcludeNegated(opts.ExcludeNegated).
			Discover(ctx, l)
		if err != nil {
			return err
		}

		pkgs = discovered

		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Infof("Discovered %d packages: %v", len(pkgs), pkgs.Names())

	if err := SetJSON(sink, output.KeyDiscoveredPackages, pkgs, workspace.DiscoveredPackagesSchema()); err != nil {
		return nil, err
	}

	return pkgs, nil
}

// DetectChanges selects the changed packages of pkgs and emits them as `changed-packages`.
func DetectChanges(ctx context.Context, l log.Logger, opts *options.Options, event flow.Context, pkgs workspace.Packages, sink output.Sink) (workspace.Packages, error) {
	var vcs changes.VCS

	if !opts.All {
		if runner, err := git.NewGitRunner(l); err != nil {
			l.Warnf("Version control is unavailable, every package is considered changed: %v", err)
		} else {
			vcs = runner.WithWorkDir(opts.WorkingDir)
		}
	}

	detector := changes.NewDetector(vcs, changes.WithForceAll(opts.All))

	var set changes.ChangeSet

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "change_detection", EventFields(event), func(ctx context.Context) error {
		set = detector.Detect(ctx, l, event, pkgs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	changed := set.Select(pkgs)

	switch set.Kind() {
	case changes.KindAll:
		l.Infof("All packages are considered changed: %s", set.Reason())
	case changes.KindNone:
		l.Infof("No package changed")
	case changes.KindSubset:
		l.Infof("Changed packages: %v", changed.Names())
	}

	data, err := changes.MarshalChangedPackages(changed)
	if err != nil {
		return nil, errors.New(err)
	}

	if err := setValidated(sink, output.KeyChangedPackages, data, changes.ChangedPackagesSchema()); err != nil {
		return nil, err
	}

	return changed, nil
}

// Order sorts pkgs so that every package comes after the packages it depends on.
func Order(ctx context.Context, l log.Logger, opts *options.Options, pkgs workspace.Packages) (workspace.Packages, error) {
	var ordered workspace.Packages

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "dependency_order", map[string]any{
		"packages": len(pkgs),
	}, func(_ context.Context) error {
		sorted, err := graph.Order(opts.WorkingDir, pkgs)
		if err != nil {
			return err
		}

		ordered = sorted

		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Debugf("Build order: %v", ordered.Names())

	return ordered, nil
}

// SetJSON emits val encoded as JSON under key. The document must match s.
func SetJSON(sink output.Sink, key string, val any, s *jsonschema.Schema) error {
	data, err := json.Marshal(val)
	if err != nil {
		return errors.New(err)
	}

	return setValidated(sink, key, data, s)
}

func setValidated(sink output.Sink, key string, data []byte, s *jsonschema.Schema) error {
	if err := schema.Validate(s, data); err != nil {
		return errors.Errorf("%s: %w", key, err)
	}

	return sink.Set(key, string(data))
}
