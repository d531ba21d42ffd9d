// Package log provides a leveled logger with structured logging support.
package log

import (
	"github.com/sirupsen/logrus"
)

// Logger wraps logrus so the rest of the codebase never imports it directly. Cloning a Logger
// copies its fields and output settings, which is how per-package loggers are derived.
type Logger interface {
	// SetOptions sets the given options to the instance.
	SetOptions(opts ...Option)

	// WithOptions clones and sets the given options for the new instance.
	WithOptions(opts ...Option) Logger

	// WithField adds a single field to the returned instance only.
	WithField(key string, value any) Logger

	// WithFields adds a set of fields to the returned instance only.
	WithFields(fields Fields) Logger

	Tracef(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	Trace(args ...any)
	Debug(args ...any)
	Info(args ...any)
	Error(args ...any)
}

type logger struct {
	*logrus.Entry
}

// New returns a new Logger instance.
func New(opts ...Option) Logger {
	logger := &logger{
		Entry: logrus.NewEntry(logrus.New()),
	}
	logger.Logger.SetLevel(InfoLevel.ToLogrusLevel())
	logger.SetOptions(opts...)

	return logger
}

// SetOptions implements the Logger interface method.
func (logger *logger) SetOptions(opts ...Option) {
	for _, opt := range opts {
		opt(logger)
	}
}

// WithOptions implements the Logger interface method.
func (logger *logger) WithOptions(opts ...Option) Logger {
	if len(opts) == 0 {
		return logger
	}

	logger = logger.clone()
	logger.SetOptions(opts...)

	return logger
}

// WithField implements the Logger interface method.
func (logger *logger) WithField(key string, value any) Logger {
	return logger.WithFields(Fields{key: value})
}

// WithFields implements the Logger interface method.
func (logger *logger) WithFields(fields Fields) Logger {
	return logger.setEntry(logger.Entry.WithFields(logrus.Fields(fields)))
}

// Trace implements the Logger interface method.
func (logger *logger) Trace(args ...any) {
	logger.log(TraceLevel, args...)
}

// Debug implements the Logger interface method.
func (logger *logger) Debug(args ...any) {
	logger.log(DebugLevel, args...)
}

// Info implements the Logger interface method.
func (logger *logger) Info(args ...any) {
	logger.log(InfoLevel, args...)
}

// Error implements the Logger interface method.
func (logger *logger) Error(args ...any) {
	logger.log(ErrorLevel, args...)
}

// Tracef implements the Logger interface method.
func (logger *logger) Tracef(format string, args ...any) {
	logger.logf(TraceLevel, format, args...)
}

// Debugf implements the Logger interface method.
func (logger *logger) Debugf(format string, args ...any) {
	logger.logf(DebugLevel, format, args...)
}

// Infof implements the Logger interface method.
func (logger *logger) Infof(format string, args ...any) {
	logger.logf(InfoLevel, format, args...)
}

// Warnf implements the Logger interface method.
func (logger *logger) Warnf(format string, args ...any) {
	logger.logf(WarnLevel, format, args...)
}

// Errorf implements the Logger interface method.
func (logger *logger) Errorf(format string, args ...any) {
	logger.logf(ErrorLevel, format, args...)
}

func (logger *logger) log(level Level, args ...any) {
	logger.Entry.Log(level.ToLogrusLevel(), args...)
}

func (logger *logger) logf(level Level, format string, args ...any) {
	logger.Entry.Logf(level.ToLogrusLevel(), format, args...)
}

func (logger *logger) setEntry(entry *logrus.Entry) *logger {
	newLogger := *logger
	newLogger.Entry = entry

	return &newLogger
}

func (logger *logger) clone() *logger {
	parent := logger.Logger

	child := logrus.New()
	child.SetOutput(parent.Out)
	child.SetLevel(parent.Level)
	child.SetFormatter(parent.Formatter)
	child.ReplaceHooks(parent.Hooks)

	entry := logger.Dup()
	entry.Logger = child

	newLogger := *logger
	newLogger.Entry = entry

	return &newLogger
}
