// Package output publishes the values a run hands to later CI steps.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/monorel/monorel/internal/errors"
)

// Keys of the values a run emits.
const (
	KeyDiscoveredPackages = "discovered-packages"
	KeyChangedPackages    = "changed-packages"
	KeyBuildResults       = "build-results"
)

// GitHubOutputEnv names the file GitHub Actions reads step outputs from.
const GitHubOutputEnv = "GITHUB_OUTPUT"

const delimiterPrefix = "ghadelimiter_"

// Sink receives key/value outputs. A key written twice keeps the last value.
type Sink interface {
	Set(key, value string) error
}

// GitHubOutputSink appends multiline records to a GitHub Actions output file.
type GitHubOutputSink struct {
	path string
	mu   sync.Mutex

	// newDelimiter is replaceable so records are predictable in tests.
	newDelimiter func() string
}

// NewGitHubOutputSink creates a sink appending to the file at path.
func NewGitHubOutputSink(path string) *GitHubOutputSink {
	return &GitHubOutputSink{
		path: path,
		newDelimiter: func() string {
			return delimiterPrefix + uuid.NewString()
		},
	}
}

// Set appends a `key<<DELIMITER` record holding value.
func (sink *GitHubOutputSink) Set(key, value string) error {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	record, err := heredoc(key, value, sink.newDelimiter())
	if err != nil {
		return err
	}

	file, err := os.OpenFile(sink.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Errorf("opening output file %s: %w", sink.path, err)
	}

	if _, err := file.WriteString(record); err != nil {
		file.Close() //nolint:errcheck
		return errors.Errorf("writing output %s: %w", key, err)
	}

	return errors.New(file.Close())
}

func heredoc(key, value, delimiter string) (string, error) {
	if strings.Contains(key, delimiter) || strings.Contains(value, delimiter) {
		return "", errors.Errorf("output %s contains its delimiter %s", key, delimiter)
	}

	return fmt.Sprintf("%s<<%s\n%s\n%s\n", key, delimiter, value, delimiter), nil
}

// MemorySink keeps outputs in memory.
type MemorySink struct {
	values map[string]string
	mu     sync.RWMutex
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{values: make(map[string]string)}
}

func (sink *MemorySink) Set(key, value string) error {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	sink.values[key] = value

	return nil
}

// Get returns the last value written for key.
func (sink *MemorySink) Get(key string) (string, bool) {
	sink.mu.RLock()
	defer sink.mu.RUnlock()

	val, ok := sink.values[key]

	return val, ok
}

// WriterSink prints every output as a `key=value` line.
type WriterSink struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriterSink creates a sink printing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (sink *WriterSink) Set(key, value string) error {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	_, err := fmt.Fprintf(sink.w, "%s=%s\n", key, value)

	return errors.New(err)
}

// NewSink returns the GitHub Actions sink when an output file is configured, otherwise a sink
// printing to w.
func NewSink(outputFile string, w io.Writer) Sink {
	if outputFile != "" {
		return NewGitHubOutputSink(outputFile)
	}

	return NewWriterSink(w)
}
