package options

import (
	"fmt"
	"strings"
)

// InvalidRegistryError is returned when the registry target configuration is unusable.
type InvalidRegistryError struct {
	Err error
}

func (err InvalidRegistryError) Error() string {
	return fmt.Sprintf("invalid registry configuration: %v", err.Err)
}

func (err InvalidRegistryError) Unwrap() error {
	return err.Err
}

// InvalidAuditLevelError is returned for an audit level the audit command does not understand.
type InvalidAuditLevelError struct {
	Level string
}

func (err InvalidAuditLevelError) Error() string {
	return fmt.Sprintf("invalid audit level %q, supported levels: %s", err.Level, strings.Join(AuditLevels, ", "))
}
