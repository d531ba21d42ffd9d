package report

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/schema"
)

// JSONRun represents a run in JSON format.
type JSONRun struct {
	Started time.Time `json:"Started"`
	Ended   time.Time `json:"Ended"`
	// Reason is the reason for the run result, if any.
	Reason  *string `json:"Reason,omitempty" jsonschema:"enum=flow error,enum=registry error,enum=publish error,enum=audit failed,enum=audit failure ignored,enum=unchanged"`
	Name    string  `json:"Name" jsonschema:"minLength=1"`
	Version string  `json:"Version,omitempty"`
	Tag     string  `json:"Tag,omitempty"`
	Result  string  `json:"Result" jsonschema:"enum=succeeded,enum=failed,enum=excluded"`
	Error   string  `json:"Error,omitempty"`
}

// JSONRuns is a slice of JSONRun entries with helper methods.
type JSONRuns []JSONRun

// ParseJSONRuns parses a JSON report from a byte slice.
func ParseJSONRuns(data []byte) (JSONRuns, error) {
	var runs JSONRuns
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, errors.Errorf("failed to parse JSON report: %w", err)
	}

	return runs, nil
}

// FindByName searches for a run by name.
func (runs JSONRuns) FindByName(name string) *JSONRun {
	for i := range runs {
		if runs[i].Name == name {
			return &runs[i]
		}
	}

	return nil
}

// ValidateJSON checks a JSON report against the report schema.
func ValidateJSON(data []byte) error {
	return schema.Validate(Schema(), data)
}

// WriteToFile validates the JSON report and writes it to path, creating parent directories as needed.
func (r *Report) WriteToFile(path string) error {
	var buf bytes.Buffer

	if err := r.WriteJSON(&buf); err != nil {
		return errors.Errorf("failed to write report: %w", err)
	}

	if err := ValidateJSON(buf.Bytes()); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.New(err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Errorf("failed to write report file: %w", err)
	}

	return nil
}

// WriteJSON writes the report to a writer in JSON format.
func (r *Report) WriteJSON(w io.Writer) error {
	runs := r.Runs()
	jsonRuns := make(JSONRuns, 0, len(runs))

	for _, run := range runs {
		jsonRuns = append(jsonRuns, run.toJSON())
	}

	jsonBytes, err := json.MarshalIndent(jsonRuns, "", "  ")
	if err != nil {
		return errors.New(err)
	}

	jsonBytes = append(jsonBytes, '\n')

	_, err = w.Write(jsonBytes)

	return err
}

func (run *Run) toJSON() JSONRun {
	run.mu.RLock()
	defer run.mu.RUnlock()

	jsonRun := JSONRun{
		Name:    run.Name,
		Version: run.Version,
		Tag:     run.Tag,
		Started: run.Started,
		Ended:   run.Ended,
		Result:  string(run.Result),
		Error:   run.Error,
	}

	if run.Reason != nil {
		reason := string(*run.Reason)
		jsonRun.Reason = &reason
	}

	return jsonRun
}

// WriteSchema writes the JSON schema of the report to w.
func WriteSchema(w io.Writer) error {
	return schema.Write(w, Schema())
}

// Schema returns the JSON schema of the report.
func Schema() *jsonschema.Schema {
	return schema.Array("report", "Run report", "Every run of a monorel invocation, excluded packages included", &JSONRun{})
}
