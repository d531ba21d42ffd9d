// Package report collects the outcome of every package processed in a run and renders it as a
// human summary or a JSON artifact.
package report

import (
	"slices"
	"sync"
	"time"

	"github.com/monorel/monorel/internal/errors"
)

// Report captures data for a report/summary.
type Report struct {
	runs                    []*Run
	mu                      sync.RWMutex
	shouldColor             bool
	showPackageLevelSummary bool
}

// Run captures data for the processing of one package.
type Run struct {
	Started time.Time
	Ended   time.Time
	Reason  *Reason
	Name    string
	Version string
	Tag     string
	Result  Result
	Error   string

	mu sync.RWMutex
}

// Result captures the result of a run.
type Result string

// Reason captures the reason for a run result.
type Reason string

const (
	ResultSucceeded Result = "succeeded"
	ResultFailed    Result = "failed"
	ResultExcluded  Result = "excluded"
)

const (
	ReasonFlowError     Reason = "flow error"
	ReasonRegistryError Reason = "registry error"
	ReasonPublishError  Reason = "publish error"
	ReasonAuditFailed   Reason = "audit failed"
	ReasonAuditIgnored  Reason = "audit failure ignored"
	ReasonUnchanged     Reason = "unchanged"
)

var (
	// ErrRunAlreadyExists is returned when a run already exists in the report.
	ErrRunAlreadyExists = errors.New("run already exists")
	// ErrRunNotFound is returned when a run is not found in the report.
	ErrRunNotFound = errors.New("run not found")
)

// Option configures a Report.
type Option func(*Report)

// WithShouldColor colors the summary.
func WithShouldColor(shouldColor bool) Option {
	return func(r *Report) {
		r.shouldColor = shouldColor
	}
}

// WithShowPackageLevelSummary lists every package below its result category in the summary.
func WithShowPackageLevelSummary(show bool) Option {
	return func(r *Report) {
		r.showPackageLevelSummary = show
	}
}

// NewReport creates a new report.
func NewReport(opts ...Option) *Report {
	r := &Report{runs: make([]*Run, 0)}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NewRun creates a new run.
func NewRun(name string) *Run {
	return &Run{
		Name:    name,
		Started: time.Now(),
	}
}

// Runs returns the runs in the order they were added.
func (r *Report) Runs() []*Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.runs)
}

// AddRun adds a run to the report.
// If the run already exists, it returns the ErrRunAlreadyExists error.
func (r *Report) AddRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existingRun := range r.runs {
		if existingRun.Name == run.Name {
			return errors.Errorf("%w: %s", ErrRunAlreadyExists, run.Name)
		}
	}

	r.runs = append(r.runs, run)

	return nil
}

// GetRun returns a run from the report.
func (r *Report) GetRun(name string) *Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, run := range r.runs {
		if run.Name == name {
			return run
		}
	}

	return nil
}

// EndRun ends a run.
// If the run does not exist, it returns the ErrRunNotFound error.
// By default, the run is assumed to have succeeded. To change this, pass WithResult to the function.
// Ending a run again replaces its result, so the summary moves it to its new category.
func (r *Report) EndRun(name string, endOptions ...EndOption) error {
	run := r.GetRun(name)
	if run == nil {
		return errors.Errorf("%w: %s", ErrRunNotFound, name)
	}

	run.mu.Lock()
	defer run.mu.Unlock()

	run.Ended = time.Now()
	run.Result = ResultSucceeded
	run.Reason = nil
	run.Error = ""

	for _, endOption := range endOptions {
		endOption(run)
	}

	return nil
}

// EndOption are optional configurations for ending a run.
type EndOption func(*Run)

// WithResult sets the result of a run.
func WithResult(result Result) EndOption {
	return func(run *Run) {
		run.Result = result
	}
}

// WithReason sets the reason of a run.
func WithReason(reason Reason) EndOption {
	return func(run *Run) {
		run.Reason = &reason
	}
}

// WithError records the error message of a failed run.
func WithError(err error) EndOption {
	return func(run *Run) {
		if err != nil {
			run.Error = err.Error()
		}
	}
}

// WithVersion records the version and distribution tag the package was published with.
func WithVersion(version, tag string) EndOption {
	return func(run *Run) {
		run.Version = version
		run.Tag = tag
	}
}
