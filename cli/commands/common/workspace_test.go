package common_test

import (
	"context"
	"io"
	"testing"

	"github.com/monorel/monorel/cli/commands/common"
	"github.com/monorel/monorel/internal/flow"
	"github.com/monorel/monorel/internal/output"
	"github.com/monorel/monorel/internal/workspace"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectChangesWithoutGit(t *testing.T) {
	// Empty PATH hides the git binary. Not parallel because of t.Setenv.
	t.Setenv("PATH", t.TempDir())

	opts := options.NewOptionsWithWriters(io.Discard, io.Discard)
	opts.WorkingDir = t.TempDir()

	pkgs := workspace.Packages{
		{Name: "core", Version: "1.0.0", Dir: "core", ManifestPath: "core/package.json"},
	}
	event := flow.Context{EventType: flow.EventPush, RefName: "dev", MainBranch: "main", DevBranch: "dev"}
	sink := output.NewMemorySink()

	changed, err := common.DetectChanges(context.Background(), log.New(log.WithOutput(io.Discard)), opts, event, pkgs, sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"core"}, changed.Names())

	value, ok := sink.Get(output.KeyChangedPackages)
	require.True(t, ok)
	assert.JSONEq(t, `[{"name": "core", "path": "core"}]`, value)
}
