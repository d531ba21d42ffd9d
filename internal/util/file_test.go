package util_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/monorel/monorel/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPathPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		prefix   string
		expected bool
	}{
		{"core/src/x.ts", "core", true},
		{"core", "core", true},
		{"core-utils/index.ts", "core", false},
		{"packages/a/b.ts", "packages/a/", true},
		{"anything", ".", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, util.HasPathPrefix(tt.path, tt.prefix), "%s in %s", tt.path, tt.prefix)
	}
}

func TestCanonicalPath(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	path, err := util.CanonicalPath("packages/../core", base)
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(filepath.Join(base, "core")), path)
}

func TestWriteFileWithSamePermissions(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "package.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o600))
	require.NoError(t, util.WriteFileWithSamePermissions(file, []byte(`{"a":1}`)))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPrefixedWriter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	w := util.PrefixedWriter(&out, "[core] ")
	_, err := w.Write([]byte("one\ntw"))
	require.NoError(t, err)
	_, err = w.Write([]byte("o\n"))
	require.NoError(t, err)

	assert.Equal(t, "[core] one\n[core] two\n", out.String())
}

func TestRemoveDuplicatesKeepFirst(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"b", "a", "c"}, util.RemoveDuplicatesKeepFirst([]string{"b", "a", "b", "c", "a"}))
}
