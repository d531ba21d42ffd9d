package flow_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/monorel/monorel/internal/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, flow.EventPullRequest, flow.ParseEventType("pull_request_target"))
	assert.Equal(t, flow.EventPush, flow.ParseEventType("PUSH"))
	assert.Equal(t, flow.EventRelease, flow.ParseEventType("release"))
	assert.Equal(t, flow.EventOther, flow.ParseEventType("workflow_dispatch"))
}

func TestContextFromEnvPullRequest(t *testing.T) {
	t.Parallel()

	eventPath := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(eventPath, []byte(`{
		"pull_request": {
			"base": {"ref": "dev", "sha": "base000"},
			"head": {"ref": "feature/x", "sha": "head111"}
		}
	}`), 0o644))

	ctx, err := flow.ContextFromEnv(map[string]string{
		flow.EnvEventName: "pull_request",
		flow.EnvEventPath: eventPath,
		flow.EnvRefName:   "12/merge",
		flow.EnvSHA:       "merge999",
		flow.EnvRunNumber: "7",
	})
	require.NoError(t, err)

	assert.Equal(t, flow.EventPullRequest, ctx.EventType)
	assert.Equal(t, "dev", ctx.BaseRef)
	assert.Equal(t, "feature/x", ctx.HeadRef)
	assert.Equal(t, "base000", ctx.BaseSHA)
	assert.Equal(t, "head111", ctx.CommitSHA)
	assert.Equal(t, 7, ctx.RunNumber)
	assert.Equal(t, flow.DefaultMainBranch, ctx.MainBranch)
}

func TestContextFromEnvRelease(t *testing.T) {
	t.Parallel()

	eventPath := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(eventPath, []byte(`{"release":{"tag_name":"v2.0.0-beta.1","prerelease":true}}`), 0o644))

	ctx, err := flow.ContextFromEnv(map[string]string{
		flow.EnvEventName: "release",
		flow.EnvEventPath: eventPath,
	})
	require.NoError(t, err)

	assert.Equal(t, "v2.0.0-beta.1", ctx.ReleaseTag)
	assert.True(t, ctx.ReleasePrerelease)
}

func TestContextFromEnvBadPayload(t *testing.T) {
	t.Parallel()

	eventPath := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(eventPath, []byte(`{`), 0o644))

	_, err := flow.ContextFromEnv(map[string]string{flow.EnvEventPath: eventPath})
	require.Error(t, err)
}
