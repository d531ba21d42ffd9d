package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/monorel/monorel/pkg/log"
)

const (
	prefix              = "   "
	runSummaryHeader    = "❯❯ Release Summary"
	successLabel        = "Succeeded"
	failureLabel        = "Failed"
	excludeLabel        = "Unchanged"
	separatorLineLength = 28
	labelColumnWidth    = 20
	padder              = "."
)

// Summary formats data from a report for output as a summary.
type Summary struct {
	firstRunStart           *time.Time
	lastRunEnd              *time.Time
	runs                    []*Run
	PackagesSucceeded       int
	PackagesFailed          int
	Excluded                int
	shouldColor             bool
	showPackageLevelSummary bool
}

// Summarize returns a summary of the report.
func (r *Report) Summarize() *Summary {
	summary := &Summary{
		shouldColor:             r.shouldColor,
		showPackageLevelSummary: r.showPackageLevelSummary,
		runs:                    r.Runs(),
	}

	for _, run := range summary.runs {
		summary.Update(run)
	}

	return summary
}

func (s *Summary) TotalPackages() int {
	return len(s.runs)
}

// Update counts run under its current result.
func (s *Summary) Update(run *Run) {
	run.mu.RLock()
	defer run.mu.RUnlock()

	switch run.Result {
	case ResultSucceeded:
		s.PackagesSucceeded++
	case ResultFailed:
		s.PackagesFailed++
	case ResultExcluded:
		s.Excluded++
	}

	if s.firstRunStart == nil || run.Started.Before(*s.firstRunStart) {
		s.firstRunStart = &run.Started
	}

	if !run.Ended.IsZero() && (s.lastRunEnd == nil || run.Ended.After(*s.lastRunEnd)) {
		s.lastRunEnd = &run.Ended
	}
}

// TotalDuration returns the time between the first run start and the last run end.
func (s *Summary) TotalDuration() time.Duration {
	if s.firstRunStart == nil || s.lastRunEnd == nil {
		return 0
	}

	return s.lastRunEnd.Sub(*s.firstRunStart)
}

// WriteSummary writes the summary to a writer. Nothing is written for an empty report.
func (r *Report) WriteSummary(w io.Writer) error {
	summary := r.Summarize()

	if summary.TotalPackages() == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	if err := summary.Write(w); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w)

	return err
}

// Write writes the summary to a writer.
func (s *Summary) Write(w io.Writer) error {
	colorizer := NewColorizer(s.shouldColor)

	header := fmt.Sprintf("%s  %s  %s",
		colorizer.headingTitleColorizer(runSummaryHeader),
		colorizer.headingPackageColorizer(fmt.Sprintf("%d packages", s.TotalPackages())),
		colorizer.colorDuration(s.TotalDuration()),
	)

	if _, err := fmt.Fprintf(w, "%s\n%s%s\n", header, prefix, strings.Repeat("─", separatorLineLength)); err != nil {
		return err
	}

	categories := []struct {
		colorizer func(string) string
		result    Result
		label     string
		count     int
	}{
		{colorizer: colorizer.successColorizer, result: ResultSucceeded, label: successLabel, count: s.PackagesSucceeded},
		{colorizer: colorizer.failureColorizer, result: ResultFailed, label: failureLabel, count: s.PackagesFailed},
		{colorizer: colorizer.excludeColorizer, result: ResultExcluded, label: excludeLabel, count: s.Excluded},
	}

	for _, category := range categories {
		if category.count == 0 {
			continue
		}

		line := prefix + category.colorizer(category.label) + colorizer.paddingColorizer(padding(category.label)) + strconv.Itoa(category.count)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}

		if !s.showPackageLevelSummary {
			continue
		}

		for _, run := range s.runs {
			if run.Result != category.result {
				continue
			}

			if err := s.writePackageLine(w, run, colorizer); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Summary) writePackageLine(w io.Writer, run *Run, colorizer *Colorizer) error {
	name := run.Name
	if run.Version != "" {
		name += "@" + run.Version
	}

	line := prefix + prefix + name + colorizer.paddingColorizer(padding(name)) + colorizer.colorDuration(run.Ended.Sub(run.Started))

	if run.Reason != nil {
		line += " (" + string(*run.Reason) + ")"
	}

	_, err := fmt.Fprintln(w, line)

	return err
}

// padding returns the dots aligning values after label. Label is measured without color sequences.
func padding(label string) string {
	width := labelColumnWidth - len(log.RemoveAllANSISeq(label))
	if width < 1 {
		width = 1
	}

	return " " + strings.Repeat(padder, width) + " "
}
