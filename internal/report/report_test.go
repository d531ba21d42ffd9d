package report_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/monorel/monorel/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRun(t *testing.T) {
	t.Parallel()

	r := report.NewReport()

	require.NoError(t, r.AddRun(report.NewRun("a")))

	err := r.AddRun(report.NewRun("a"))
	require.ErrorIs(t, err, report.ErrRunAlreadyExists)
	assert.Len(t, r.Runs(), 1)
}

func TestGetRun(t *testing.T) {
	t.Parallel()

	r := report.NewReport()
	require.NoError(t, r.AddRun(report.NewRun("a")))

	assert.NotNil(t, r.GetRun("a"))
	assert.Nil(t, r.GetRun("missing"))
}

func TestEndRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		options    []report.EndOption
		wantResult report.Result
		wantReason *report.Reason
		wantError  string
	}{
		{
			name:       "defaults to succeeded",
			wantResult: report.ResultSucceeded,
		},
		{
			name: "failed with reason",
			options: []report.EndOption{
				report.WithResult(report.ResultFailed),
				report.WithReason(report.ReasonPublishError),
				report.WithError(errors.New("exit status 1")),
			},
			wantResult: report.ResultFailed,
			wantReason: reasonPtr(report.ReasonPublishError),
			wantError:  "exit status 1",
		},
		{
			name: "excluded",
			options: []report.EndOption{
				report.WithResult(report.ResultExcluded),
				report.WithReason(report.ReasonUnchanged),
			},
			wantResult: report.ResultExcluded,
			wantReason: reasonPtr(report.ReasonUnchanged),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := report.NewReport()
			require.NoError(t, r.AddRun(report.NewRun("pkg")))
			require.NoError(t, r.EndRun("pkg", tt.options...))

			run := r.GetRun("pkg")
			assert.Equal(t, tt.wantResult, run.Result)
			assert.Equal(t, tt.wantReason, run.Reason)
			assert.Equal(t, tt.wantError, run.Error)
			assert.False(t, run.Ended.IsZero())
		})
	}
}

func TestEndRunNotFound(t *testing.T) {
	t.Parallel()

	err := report.NewReport().EndRun("missing")
	require.ErrorIs(t, err, report.ErrRunNotFound)
}

func TestEndRunEscalation(t *testing.T) {
	t.Parallel()

	r := report.NewReport()
	require.NoError(t, r.AddRun(report.NewRun("a")))
	require.NoError(t, r.AddRun(report.NewRun("b")))

	require.NoError(t, r.EndRun("a", report.WithVersion("1.0.0", "latest")))
	require.NoError(t, r.EndRun("b", report.WithVersion("2.0.0", "latest")))

	summary := r.Summarize()
	assert.Equal(t, 2, summary.PackagesSucceeded)
	assert.Equal(t, 0, summary.PackagesFailed)

	require.NoError(t, r.EndRun("b",
		report.WithResult(report.ResultFailed),
		report.WithReason(report.ReasonAuditFailed),
	))

	summary = r.Summarize()
	assert.Equal(t, 1, summary.PackagesSucceeded)
	assert.Equal(t, 1, summary.PackagesFailed)
	assert.Equal(t, "2.0.0", r.GetRun("b").Version)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	r := report.NewReport()

	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, r.AddRun(report.NewRun(name)))
	}

	require.NoError(t, r.EndRun("a"))
	require.NoError(t, r.EndRun("b"))
	require.NoError(t, r.EndRun("c", report.WithResult(report.ResultFailed)))
	require.NoError(t, r.EndRun("d", report.WithResult(report.ResultExcluded)))

	summary := r.Summarize()
	assert.Equal(t, 4, summary.TotalPackages())
	assert.Equal(t, 2, summary.PackagesSucceeded)
	assert.Equal(t, 1, summary.PackagesFailed)
	assert.Equal(t, 1, summary.Excluded)
	assert.GreaterOrEqual(t, summary.TotalDuration().Nanoseconds(), int64(0))
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	r := report.NewReport(report.WithShowPackageLevelSummary(true))
	require.NoError(t, r.AddRun(report.NewRun("a")))
	require.NoError(t, r.AddRun(report.NewRun("b")))
	require.NoError(t, r.EndRun("a", report.WithVersion("1.2.3", "latest")))
	require.NoError(t, r.EndRun("b",
		report.WithResult(report.ResultFailed),
		report.WithReason(report.ReasonPublishError),
	))

	var buf bytes.Buffer
	require.NoError(t, r.WriteSummary(&buf))

	out := buf.String()
	assert.Contains(t, out, "❯❯ Release Summary  2 packages")
	assert.Contains(t, out, "Succeeded")
	assert.Contains(t, out, "Failed")
	assert.NotContains(t, out, "Unchanged")
	assert.Contains(t, out, "a@1.2.3")
	assert.Contains(t, out, "(publish error)")
	assert.NotContains(t, out, "\x1b[")
}

func TestWriteSummaryEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.NewReport().WriteSummary(&buf))
	assert.Empty(t, buf.String())
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	r := report.NewReport()
	require.NoError(t, r.AddRun(report.NewRun("a")))
	require.NoError(t, r.AddRun(report.NewRun("b")))
	require.NoError(t, r.EndRun("a", report.WithVersion("1.0.1-dev.abc1234", "dev")))
	require.NoError(t, r.EndRun("b",
		report.WithResult(report.ResultFailed),
		report.WithReason(report.ReasonRegistryError),
		report.WithError(errors.New("bad registry")),
	))

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	runs, err := report.ParseJSONRuns(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, runs, 2)

	a := runs.FindByName("a")
	require.NotNil(t, a)
	assert.Equal(t, "succeeded", a.Result)
	assert.Equal(t, "1.0.1-dev.abc1234", a.Version)
	assert.Equal(t, "dev", a.Tag)
	assert.Nil(t, a.Reason)

	b := runs.FindByName("b")
	require.NotNil(t, b)
	assert.Equal(t, "failed", b.Result)
	require.NotNil(t, b.Reason)
	assert.Equal(t, "registry error", *b.Reason)
	assert.Equal(t, "bad registry", b.Error)
	assert.Nil(t, runs.FindByName("c"))
}

func TestWriteToFile(t *testing.T) {
	t.Parallel()

	r := report.NewReport()
	require.NoError(t, r.AddRun(report.NewRun("a")))
	require.NoError(t, r.EndRun("a"))

	path := filepath.Join(t.TempDir(), "nested", "report.json")
	require.NoError(t, r.WriteToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, report.ValidateJSON(data))

	runs, err := report.ParseJSONRuns(data)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestValidateJSON(t *testing.T) {
	t.Parallel()

	r := report.NewReport()
	require.NoError(t, r.AddRun(report.NewRun("a")))
	require.NoError(t, r.AddRun(report.NewRun("b")))
	require.NoError(t, r.AddRun(report.NewRun("c")))
	require.NoError(t, r.EndRun("a", report.WithVersion("1.0.0", "latest")))
	require.NoError(t, r.EndRun("b", report.WithResult(report.ResultFailed), report.WithReason(report.ReasonAuditFailed), report.WithError(errors.New("audit failed"))))
	require.NoError(t, r.EndRun("c", report.WithResult(report.ResultExcluded), report.WithReason(report.ReasonUnchanged)))

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))
	require.NoError(t, report.ValidateJSON(buf.Bytes()))

	invalid := []string{
		`[{"Started":"2026-01-01T00:00:00Z","Ended":"2026-01-01T00:00:01Z","Name":"a","Result":"success"}]`,
		`[{"Started":"2026-01-01T00:00:00Z","Ended":"2026-01-01T00:00:01Z","Name":"a","Result":"failed","Reason":"timeout"}]`,
		`[{"Ended":"2026-01-01T00:00:01Z","Name":"a","Result":"failed"}]`,
	}

	for _, doc := range invalid {
		require.Error(t, report.ValidateJSON([]byte(doc)), doc)
	}
}

func TestWriteSchema(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.WriteSchema(&buf))
	assert.Contains(t, buf.String(), `"audit failure ignored"`)
	assert.Contains(t, buf.String(), `"excluded"`)
}

func reasonPtr(reason report.Reason) *report.Reason {
	return &reason
}
