package changes_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/monorel/monorel/internal/changes"
	"github.com/monorel/monorel/internal/flow"
	"github.com/monorel/monorel/internal/schema"
	"github.com/monorel/monorel/internal/workspace"
	"github.com/monorel/monorel/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFake = errors.New("fake failure")

// fakeVCS resolves the refs in `refs`. Fetching moves `afterFetch` into `refs`.
type fakeVCS struct {
	refs       map[string]string
	afterFetch map[string]string
	diffErr    error
	diffs      map[string][]string
	fetches    []string
	tags       []string
}

func (f *fakeVCS) RevParse(_ context.Context, ref string) (string, error) {
	if sha, ok := f.refs[ref]; ok {
		return sha, nil
	}

	return "", errFake
}

func (f *fakeVCS) Diff(_ context.Context, fromRef, _ string) ([]string, error) {
	if f.diffErr != nil {
		return nil, f.diffErr
	}

	return f.diffs[fromRef], nil
}

func (f *fakeVCS) TagsByVersion(context.Context) ([]string, error) {
	return f.tags, nil
}

func (f *fakeVCS) FetchRef(_ context.Context, ref string, _ int) error {
	return f.fetch("ref " + ref)
}

func (f *fakeVCS) Deepen(context.Context, int) error {
	return f.fetch("deepen")
}

func (f *fakeVCS) FetchTags(context.Context) error {
	return f.fetch("tags")
}

func (f *fakeVCS) fetch(name string) error {
	f.fetches = append(f.fetches, name)

	if f.refs == nil {
		f.refs = map[string]string{}
	}

	for ref, sha := range f.afterFetch {
		f.refs[ref] = sha
	}

	return nil
}

func testPackages() workspace.Packages {
	return workspace.Packages{
		{Name: "core", Version: "1.0.0", Dir: "core", ManifestPath: "core/package.json"},
		{Name: "ui", Version: "1.0.0", Dir: "packages/ui", ManifestPath: "packages/ui/package.json"},
		{Name: "ui-kit", Version: "1.0.0", Dir: "packages/ui-kit", ManifestPath: "packages/ui-kit/package.json"},
	}
}

func pushEvent() flow.Context {
	return flow.Context{EventType: flow.EventPush, RefName: "dev", MainBranch: "main", DevBranch: "dev"}
}

func detect(vcs changes.VCS, event flow.Context, opts ...changes.Option) changes.ChangeSet {
	return changes.NewDetector(vcs, opts...).Detect(context.Background(), log.New(log.WithOutput(io.Discard)), event, testPackages())
}

func TestDetectMapsFilesToPackages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		files    []string
		expected []string
		kind     changes.Kind
	}{
		{
			name:     "file below package dir",
			files:    []string{"core/src/x.ts"},
			expected: []string{"core"},
			kind:     changes.KindSubset,
		},
		{
			name:     "manifest of a package",
			files:    []string{"packages/ui/package.json", "README.md"},
			expected: []string{"ui"},
			kind:     changes.KindSubset,
		},
		{
			name:     "dir prefix does not match sibling with longer name",
			files:    []string{"packages/ui-kit/index.ts"},
			expected: []string{"ui-kit"},
			kind:     changes.KindSubset,
		},
		{
			name:     "several packages keep discovery order",
			files:    []string{"packages/ui/a.ts", "core/b.ts"},
			expected: []string{"core", "ui"},
			kind:     changes.KindSubset,
		},
		{
			name:     "no package touched",
			files:    []string{"docs/guide.md"},
			expected: []string{},
			kind:     changes.KindNone,
		},
		{
			name:     "empty diff",
			expected: []string{},
			kind:     changes.KindNone,
		},
		{
			name:     "root manifest",
			files:    []string{"core/src/x.ts", "package.json"},
			expected: []string{"core", "ui", "ui-kit"},
			kind:     changes.KindAll,
		},
		{
			name:     "lockfile",
			files:    []string{"pnpm-lock.yaml"},
			expected: []string{"core", "ui", "ui-kit"},
			kind:     changes.KindAll,
		},
		{
			name:     "nested file named like a root config file",
			files:    []string{"docs/tsconfig.json"},
			expected: []string{},
			kind:     changes.KindNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			vcs := &fakeVCS{
				refs:  map[string]string{"HEAD^": "parent0"},
				diffs: map[string][]string{"parent0": tt.files},
			}

			set := detect(vcs, pushEvent())
			assert.Equal(t, tt.kind, set.Kind())
			assert.Equal(t, tt.expected, set.Select(testPackages()).Names())
		})
	}
}

func TestDetectPullRequestBase(t *testing.T) {
	t.Parallel()

	event := flow.Context{EventType: flow.EventPullRequest, BaseRef: "dev", BaseSHA: "base000", MainBranch: "main", DevBranch: "dev"}

	vcs := &fakeVCS{
		refs:  map[string]string{"base000": "base000", "origin/dev": "tip111"},
		diffs: map[string][]string{"base000": {"core/index.ts"}, "tip111": {"packages/ui/index.ts"}},
	}
	assert.Equal(t, []string{"core"}, detect(vcs, event).Select(testPackages()).Names())

	vcs = &fakeVCS{
		refs:  map[string]string{"origin/dev": "tip111"},
		diffs: map[string][]string{"tip111": {"packages/ui/index.ts"}},
	}
	assert.Equal(t, []string{"ui"}, detect(vcs, event).Select(testPackages()).Names())
	assert.Empty(t, vcs.fetches)
}

func TestDetectFetchesOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		event    flow.Context
		vcs      *fakeVCS
		name     string
		fetches  []string
		expected changes.Kind
	}{
		{
			name:  "pull request fetches base branch",
			event: flow.Context{EventType: flow.EventPullRequest, BaseRef: "main"},
			vcs: &fakeVCS{
				afterFetch: map[string]string{"origin/main": "main000"},
				diffs:      map[string][]string{"main000": {"core/a.ts"}},
			},
			fetches:  []string{"ref main"},
			expected: changes.KindSubset,
		},
		{
			name:  "push deepens history",
			event: pushEvent(),
			vcs: &fakeVCS{
				afterFetch: map[string]string{"HEAD^": "parent0"},
				diffs:      map[string][]string{"parent0": {"docs/a.md"}},
			},
			fetches:  []string{"deepen"},
			expected: changes.KindNone,
		},
		{
			name:     "push still unresolved falls back to all",
			event:    pushEvent(),
			vcs:      &fakeVCS{},
			fetches:  []string{"deepen"},
			expected: changes.KindAll,
		},
		{
			name:     "other event never fetches",
			event:    flow.Context{EventType: flow.EventOther},
			vcs:      &fakeVCS{},
			expected: changes.KindAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set := detect(tt.vcs, tt.event)
			assert.Equal(t, tt.expected, set.Kind())
			assert.Equal(t, tt.fetches, tt.vcs.fetches)
		})
	}
}

func TestDetectReleaseUsesPreviousTag(t *testing.T) {
	t.Parallel()

	vcs := &fakeVCS{
		tags:  []string{"v1.0.0", "v1.1.0", "v2.0.0", "v3.0.0"},
		refs:  map[string]string{"v1.0.0": "one", "v1.1.0": "onedotone", "v2.0.0": "two", "v3.0.0": "three"},
		diffs: map[string][]string{"onedotone": {"core/a.ts"}, "three": {"packages/ui/a.ts"}},
	}

	set := detect(vcs, flow.Context{EventType: flow.EventRelease, ReleaseTag: "v2.0.0"})
	assert.Equal(t, []string{"core"}, set.Select(testPackages()).Names())
}

func TestDetectFallsBackToAll(t *testing.T) {
	t.Parallel()

	vcs := &fakeVCS{
		refs:    map[string]string{"HEAD^": "parent0"},
		diffErr: errFake,
	}
	assert.Equal(t, changes.KindAll, detect(vcs, pushEvent()).Kind())

	forced := &fakeVCS{}
	set := detect(forced, pushEvent(), changes.WithForceAll(true))
	assert.Equal(t, changes.KindAll, set.Kind())
	assert.Empty(t, forced.fetches)

	unavailable := detect(nil, pushEvent())
	assert.Equal(t, changes.KindAll, unavailable.Kind())
	assert.Equal(t, "version control unavailable", unavailable.Reason())
}

func TestMarshalChangedPackages(t *testing.T) {
	t.Parallel()

	data, err := changes.MarshalChangedPackages(testPackages()[:2])
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"core","path":"core"},{"name":"ui","path":"packages/ui"}]`, string(data))
	require.NoError(t, schema.Validate(changes.ChangedPackagesSchema(), data))

	data, err = changes.MarshalChangedPackages(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	require.NoError(t, schema.Validate(changes.ChangedPackagesSchema(), data))

	require.Error(t, schema.Validate(changes.ChangedPackagesSchema(), []byte(`[{"name":"core","path":"core","version":"1.0.0"}]`)))
}
