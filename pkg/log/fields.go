package log

const (
	FieldKeyPrefix  = "prefix"
	FieldKeyRunID   = "run"
	FieldKeyVersion = "version"
)

// Fields type, used to pass to `WithFields`.
type Fields map[string]any
