package errors

import (
	"fmt"
)

// SchemaError occurs when schema derivation encounters an invalid
// field reference or a misplaced expression
type SchemaError struct{ Msg string }

// Error returns a textual representation of this SchemaError
func (e *SchemaError) Error() string {
	return fmt.Sprintf("Schema error: %s", e.Msg)
}

// NotImplementedError occurs when an operation is not supported for
// any backend
type NotImplementedError struct {
	Op    string
	State string
}

// Error returns a textual representation of this NotImplementedError
func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s is not implemented for %s yet", e.Op, e.State)
}

// ConfigurationError occurs when a required setting is missing or
// cannot be parsed
type ConfigurationError struct {
	Key    string
	Reason string
}

// Error returns a textual representation of this ConfigurationError
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("Invalid configuration for %s: %s", e.Key, e.Reason)
}

// EngineError wraps a failure from the local execution engine verbatim
type EngineError struct{ Cause error }

// Error returns a textual representation of this EngineError
func (e *EngineError) Error() string {
	return fmt.Sprintf("Execution engine error: %s", e.Cause)
}

// Unwrap returns the wrapped engine failure
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// TransportError wraps a failure from the network execution client verbatim
type TransportError struct {
	Host  string
	Port  int
	Cause error
}

// Error returns a textual representation of this TransportError
func (e *TransportError) Error() string {
	return fmt.Sprintf("Transport error reaching %s:%d: %s", e.Host, e.Port, e.Cause)
}

// Unwrap returns the wrapped transport failure
func (e *TransportError) Unwrap() error {
	return e.Cause
}
