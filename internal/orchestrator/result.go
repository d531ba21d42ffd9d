package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/report"
	"github.com/monorel/monorel/internal/schema"
)

// Result is the final state of a package build as emitted to CI.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailed  Result = "failed"
)

// BuildResult records the outcome of building one package.
type BuildResult struct {
	Name    string `json:"name" jsonschema:"minLength=1"`
	Version string `json:"version"`
	Result  Result `json:"result" jsonschema:"enum=success,enum=failed"`
	Error   string `json:"error,omitempty"`
}

// BuildResults are emitted in processing order.
type BuildResults []BuildResult

// MarshalJSON encodes an empty list as `[]`.
func (results BuildResults) MarshalJSON() ([]byte, error) {
	if results == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]BuildResult(results))
}

// WriteToFile writes the results as an indented `build-results` document to path, creating parent
// directories as needed. The document is validated first.
func (results BuildResults) WriteToFile(path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.New(err)
	}

	if err := schema.Validate(BuildResultsSchema(), data); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.New(err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.New(err)
	}

	return nil
}

// BuildResultsSchema returns the schema of the `build-results` document.
func BuildResultsSchema() *jsonschema.Schema {
	return schema.Array("build-results", "Build results", "Outcome of every processed package in build order", &BuildResult{})
}

// Failed returns the names of the packages that failed.
func (results BuildResults) Failed() []string {
	var names []string

	for _, result := range results {
		if result.Result == ResultFailed {
			names = append(names, result.Name)
		}
	}

	return names
}

// outcome is what each step of a package build hands back: Success or Failure.
type outcome interface {
	isOutcome()
}

// Success carries the version and tag a package was published with.
type Success struct {
	Version      string
	Tag          string
	AuditIgnored bool
}

// Failure carries the step that failed and its error.
type Failure struct {
	Err    error
	Reason report.Reason
}

func (Success) isOutcome() {}
func (Failure) isOutcome() {}

// BuildFailedError is returned when at least one package failed.
type BuildFailedError struct {
	Packages []string
}

func (err BuildFailedError) Error() string {
	return fmt.Sprintf("%d package(s) failed: %s", len(err.Packages), strings.Join(err.Packages, ", "))
}
