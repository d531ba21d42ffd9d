package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/monorel/monorel/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestoresContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "package.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"core","version":"1.0.0"}`), 0o600))

	snap, err := manifest.Take(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"name":"@acme/core","version":"1.0.0-pr.abc1234"}`), 0o644))
	require.NoError(t, snap.Restore())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"core","version":"1.0.0"}`, string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSnapshotRemovesCreatedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".npmrc")

	snap, err := manifest.Take(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("//registry.npmjs.org/:_authToken=${NODE_AUTH_TOKEN}\n"), 0o600))
	require.NoError(t, snap.Restore())
	assert.NoFileExists(t, path)

	// Restoring twice is harmless.
	require.NoError(t, snap.Restore())
}

func TestSnapshotsRestoreAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "package.json")
	created := filepath.Join(dir, ".npmrc")

	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o644))

	snaps, err := manifest.TakeAll(existing, created)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(existing, []byte(`{"version":"2.0.0"}`), 0o644))
	require.NoError(t, os.WriteFile(created, []byte("registry=https://npm.pkg.github.com\n"), 0o644))

	require.NoError(t, snaps.Restore())

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))
	assert.NoFileExists(t, created)
}
