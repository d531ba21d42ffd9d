package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/shell"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
)

// AuditSummary is the artifact written for every audited package.
type AuditSummary struct {
	Vulnerabilities map[string]int `json:"vulnerabilities"`
	Package         string         `json:"package"`
	Level           string         `json:"level"`
	// Failing counts the vulnerabilities at or above Level.
	Failing int  `json:"failing"`
	Passed  bool `json:"passed"`
}

// AuditFailedError is returned when a package has vulnerabilities at or above the audit level.
type AuditFailedError struct {
	Package string
	Level   string
	Count   int
}

func (err AuditFailedError) Error() string {
	return fmt.Sprintf("audit of %s found %d vulnerabilities of severity %s or higher", err.Package, err.Count, err.Level)
}

// CommandAuditor audits workspace packages with the package manager's audit command.
type CommandAuditor struct {
	RunOptions     *shell.RunOptions
	PackageManager PackageManager
	RootDir        string
}

func NewCommandAuditor(rootDir string, pm PackageManager, runOpts *shell.RunOptions) *CommandAuditor {
	return &CommandAuditor{
		RootDir:        rootDir,
		PackageManager: pm,
		RunOptions:     runOpts,
	}
}

// Audit runs the audit, writes the summary artifact and fails when the threshold is reached.
func (a *CommandAuditor) Audit(ctx context.Context, l log.Logger, req *AuditRequest) error {
	command, args := a.PackageManager.AuditCommand(req.Package.Name, req.Level)

	runOpts := &shell.RunOptions{WorkingDir: a.RootDir}
	if a.RunOptions != nil {
		runOpts.Env = a.RunOptions.Env
		runOpts.ErrWriter = a.RunOptions.ErrWriter
	}

	// The audit command exits non-zero when it finds vulnerabilities, so the report decides.
	out, runErr := shell.RunCommandWithOutput(ctx, l, runOpts, "", true, command, args...)

	summary, err := ParseAuditReport(out.Stdout.Bytes(), req.Level)
	if err != nil {
		if runErr != nil {
			return runErr
		}

		return err
	}

	summary.Package = req.Package.Name

	if req.ArtifactPath != "" {
		if err := WriteAuditSummary(req.ArtifactPath, summary); err != nil {
			return err
		}
	}

	if !summary.Passed {
		return errors.New(AuditFailedError{Package: req.Package.Name, Level: req.Level, Count: summary.Failing})
	}

	l.Debugf("Audit of %s passed at level %s", req.Package.Name, req.Level)

	return nil
}

// ParseAuditReport reads the vulnerability counts of an npm or pnpm JSON audit report.
func ParseAuditReport(data []byte, level string) (*AuditSummary, error) {
	var report struct {
		Metadata struct {
			Vulnerabilities map[string]int `json:"vulnerabilities"`
		} `json:"metadata"`
	}

	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errors.Errorf("parsing audit report: %w", err)
	}

	threshold := slices.Index(options.AuditLevels, level)
	if threshold < 0 {
		return nil, errors.New(options.InvalidAuditLevelError{Level: level})
	}

	summary := &AuditSummary{
		Vulnerabilities: report.Metadata.Vulnerabilities,
		Level:           level,
	}

	if summary.Vulnerabilities == nil {
		summary.Vulnerabilities = map[string]int{}
	}

	for _, severity := range options.AuditLevels[threshold:] {
		summary.Failing += summary.Vulnerabilities[severity]
	}

	summary.Passed = summary.Failing == 0

	return summary, nil
}

// WriteAuditSummary writes summary as JSON to path, creating parent directories.
func WriteAuditSummary(path string, summary *AuditSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return errors.New(err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.New(err)
	}

	return nil
}
