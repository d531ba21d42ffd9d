package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/monorel/monorel/internal/flow"
	"github.com/monorel/monorel/internal/orchestrator"
	"github.com/monorel/monorel/internal/pipeline"
	"github.com/monorel/monorel/internal/pipeline/mocks"
	"github.com/monorel/monorel/internal/report"
	"github.com/monorel/monorel/internal/schema"
	"github.com/monorel/monorel/internal/workspace"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	errPublish = errors.New("publish exited with status 1")
	errAudit   = errors.New("3 vulnerabilities at or above high")
)

// recorder captures the calls made by the runner, in order.
type recorder struct {
	calls        []string
	failPublish  map[string]bool
	failAudit    map[string]bool
	failRegistry map[string]bool
	requests     []pipeline.PublishRequest
	configured   int
}

func (r *recorder) Configure(_ context.Context, _ log.Logger, pkg *workspace.Package, _ options.RegistryOptions) (pipeline.RestoreFunc, error) {
	r.calls = append(r.calls, "configure "+pkg.Name)

	if r.failRegistry[pkg.Name] {
		return nil, errors.New("bad registry")
	}

	r.configured++

	return func() error {
		r.configured--
		r.calls = append(r.calls, "restore "+pkg.Name)

		return nil
	}, nil
}

func (r *recorder) Publish(_ context.Context, _ log.Logger, req *pipeline.PublishRequest) error {
	r.calls = append(r.calls, "publish "+req.Package.Name)

	cloned := *req
	cloned.Versions = make(map[string]string, len(req.Versions))

	for name, version := range req.Versions {
		cloned.Versions[name] = version
	}

	r.requests = append(r.requests, cloned)

	if r.failPublish[req.Package.Name] {
		return errPublish
	}

	return nil
}

func (r *recorder) Audit(_ context.Context, _ log.Logger, req *pipeline.AuditRequest) error {
	r.calls = append(r.calls, "audit "+req.Package.Name)

	if r.failAudit[req.Package.Name] {
		return errAudit
	}

	return nil
}

func packages(names ...string) workspace.Packages {
	pkgs := make(workspace.Packages, 0, len(names))

	for _, name := range names {
		pkgs = append(pkgs, &workspace.Package{
			Name:         name,
			Version:      "1.0.0",
			Dir:          "packages/" + name,
			ManifestPath: "packages/" + name + "/package.json",
		})
	}

	return pkgs
}

func pushToDev() flow.Context {
	return flow.Context{
		EventType:  flow.EventPush,
		RefName:    "dev",
		CommitSHA:  "abcdef1234567890",
		MainBranch: "main",
		DevBranch:  "dev",
	}
}

func newRunner(t *testing.T, rec *recorder, mutate func(*options.Options)) *orchestrator.Runner {
	t.Helper()

	opts := options.NewOptionsForTest(t.TempDir())
	if mutate != nil {
		mutate(opts)
	}

	return orchestrator.NewRunner(opts, rec, rec, rec)
}

func TestRunIsolatesFailures(t *testing.T) {
	t.Parallel()

	rec := &recorder{failPublish: map[string]bool{"b": true}}
	runner := newRunner(t, rec, nil)

	results, err := runner.Run(context.Background(), discardLogger(), pushToDev(), packages("a", "b", "c"))

	var failedErr orchestrator.BuildFailedError
	require.ErrorAs(t, err, &failedErr)
	assert.Equal(t, []string{"b"}, failedErr.Packages)

	assert.Equal(t, orchestrator.BuildResults{
		{Name: "a", Version: "1.0.0-dev.abcdef1", Result: orchestrator.ResultSuccess},
		{Name: "b", Version: "1.0.0", Result: orchestrator.ResultFailed, Error: errPublish.Error()},
		{Name: "c", Version: "1.0.0-dev.abcdef1", Result: orchestrator.ResultSuccess},
	}, results)

	assert.Equal(t, []string{
		"configure a", "publish a", "restore a",
		"configure b", "publish b", "restore b",
		"configure c", "publish c", "restore c",
	}, rec.calls)
	assert.Zero(t, rec.configured)

	summary := runner.Report().Summarize()
	assert.Equal(t, 2, summary.PackagesSucceeded)
	assert.Equal(t, 1, summary.PackagesFailed)
}

func TestRunPassesPublishedVersionsToLaterPackages(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	runner := orchestrator.NewRunner(options.NewOptionsForTest(t.TempDir()), rec, rec, rec,
		orchestrator.WithWorkspace(packages("a", "b", "untouched")),
	)

	_, err := runner.Run(context.Background(), discardLogger(), pushToDev(), packages("a", "b"))
	require.NoError(t, err)
	require.Len(t, rec.requests, 2)

	first, second := rec.requests[0], rec.requests[1]
	assert.Equal(t, "1.0.0", first.Versions["a"])
	assert.Equal(t, "1.0.0-dev.abcdef1", second.Versions["a"])
	assert.Equal(t, "1.0.0", second.Versions["untouched"])
	assert.Equal(t, "dev", second.Tag)
	assert.True(t, second.Publish)
}

func TestRunNoPackages(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	runner := newRunner(t, rec, nil)

	results, err := runner.Run(context.Background(), discardLogger(), pushToDev(), nil)
	require.NoError(t, err)
	assert.Empty(t, rec.calls)

	data, err := json.Marshal(results)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestRunFlowErrorSkipsRegistry(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	runner := newRunner(t, rec, nil)

	event := pushToDev()
	event.CommitSHA = ""

	results, err := runner.Run(context.Background(), discardLogger(), event, packages("a"))
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, orchestrator.ResultFailed, results[0].Result)
	assert.Empty(t, rec.calls)

	run := runner.Report().GetRun("a")
	require.NotNil(t, run.Reason)
	assert.Equal(t, report.ReasonFlowError, *run.Reason)
}

func TestRunRegistryErrorSkipsPublish(t *testing.T) {
	t.Parallel()

	rec := &recorder{failRegistry: map[string]bool{"a": true}}
	runner := newRunner(t, rec, nil)

	results, err := runner.Run(context.Background(), discardLogger(), pushToDev(), packages("a", "b"))
	require.Error(t, err)
	assert.Equal(t, orchestrator.ResultFailed, results[0].Result)
	assert.Equal(t, orchestrator.ResultSuccess, results[1].Result)
	assert.Equal(t, []string{"configure a", "configure b", "publish b", "restore b"}, rec.calls)
}

func TestRunAudit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		failOnAudit   bool
		wantResult    orchestrator.Result
		wantReason    report.Reason
		wantSucceeded int
		wantFailed    int
	}{
		{
			name:          "escalated",
			failOnAudit:   true,
			wantResult:    orchestrator.ResultFailed,
			wantReason:    report.ReasonAuditFailed,
			wantSucceeded: 1,
			wantFailed:    1,
		},
		{
			name:          "ignored",
			failOnAudit:   false,
			wantResult:    orchestrator.ResultSuccess,
			wantReason:    report.ReasonAuditIgnored,
			wantSucceeded: 2,
			wantFailed:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &recorder{failAudit: map[string]bool{"b": true}}
			runner := newRunner(t, rec, func(opts *options.Options) {
				opts.Audit.Enabled = true
				opts.Audit.FailOnAudit = tt.failOnAudit
			})

			results, _ := runner.Run(context.Background(), discardLogger(), pushToDev(), packages("a", "b"))
			require.Len(t, results, 2)

			assert.Equal(t, tt.wantResult, results[1].Result)
			assert.Equal(t, "1.0.0-dev.abcdef1", results[1].Version)
			assert.Equal(t, []string{
				"configure a", "publish a", "audit a", "restore a",
				"configure b", "publish b", "audit b", "restore b",
			}, rec.calls)

			run := runner.Report().GetRun("b")
			require.NotNil(t, run.Reason)
			assert.Equal(t, tt.wantReason, *run.Reason)

			summary := runner.Report().Summarize()
			assert.Equal(t, tt.wantSucceeded, summary.PackagesSucceeded)
			assert.Equal(t, tt.wantFailed, summary.PackagesFailed)
		})
	}
}

func TestExclude(t *testing.T) {
	t.Parallel()

	runner := newRunner(t, &recorder{}, nil)
	require.NoError(t, runner.Exclude(packages("a", "b")))

	summary := runner.Report().Summarize()
	assert.Equal(t, 2, summary.Excluded)
}

func discardLogger() log.Logger {
	return log.New(log.WithOutput(io.Discard))
}

func TestBuildResultsWriteToFile(t *testing.T) {
	t.Parallel()

	results := orchestrator.BuildResults{
		{Name: "a", Version: "1.0.0-dev.abcdef1", Result: orchestrator.ResultSuccess},
		{Name: "b", Version: "1.0.0", Result: orchestrator.ResultFailed, Error: "publish exited with status 1"},
	}

	path := filepath.Join(t.TempDir(), "nested", "build-results.json")
	require.NoError(t, results.WriteToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"name": "a", "version": "1.0.0-dev.abcdef1", "result": "success"},
		{"name": "b", "version": "1.0.0", "result": "failed", "error": "publish exited with status 1"}
	]`, string(data))

	var empty orchestrator.BuildResults
	require.NoError(t, empty.WriteToFile(path))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestBuildResultsSchemaRejectsUnknownResult(t *testing.T) {
	t.Parallel()

	invalid := orchestrator.BuildResults{{Name: "a", Version: "1.0.0", Result: "succeeded"}}

	path := filepath.Join(t.TempDir(), "build-results.json")
	err := invalid.WriteToFile(path)

	var validationErr *schema.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NoFileExists(t, path)
}

func TestRunRestoreFailureFailsPackage(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	configurer := mocks.NewMockRegistryConfigurer(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	auditor := mocks.NewMockAuditor(ctrl)

	pkgs := packages("a")
	errRestore := errors.New("cannot remove .npmrc")

	gomock.InOrder(
		configurer.EXPECT().
			Configure(gomock.Any(), gomock.Any(), pkgs[0], gomock.Any()).
			Return(func() error { return errRestore }, nil),
		publisher.EXPECT().
			Publish(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ log.Logger, req *pipeline.PublishRequest) error {
				assert.Equal(t, "1.0.0-dev.abcdef1", req.Version)
				assert.Equal(t, "dev", req.Tag)

				return nil
			}),
		auditor.EXPECT().
			Audit(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil),
	)

	opts := options.NewOptionsForTest(t.TempDir())
	opts.Audit.Enabled = true

	runner := orchestrator.NewRunner(opts, configurer, publisher, auditor)

	results, err := runner.Run(context.Background(), discardLogger(), pushToDev(), pkgs)

	var failedErr orchestrator.BuildFailedError
	require.ErrorAs(t, err, &failedErr)
	assert.Equal(t, []string{"a"}, failedErr.Packages)

	require.Len(t, results, 1)
	assert.Equal(t, orchestrator.ResultFailed, results[0].Result)
	assert.Equal(t, errRestore.Error(), results[0].Error)

	run := runner.Report().GetRun("a")
	require.NotNil(t, run.Reason)
	assert.Equal(t, report.ReasonRegistryError, *run.Reason)
}
