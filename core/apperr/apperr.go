// Package apperr defines the error values that cross the dispatcher
// boundary with meaning. Everything else collapses to a generic response
// before it reaches a client.
package apperr

import "fmt"

// ConfigurationError reports a capability the application developer never
// wired up. It surfaces on first access, names the missing capability and
// the remedy, and is never shipped to end users.
type ConfigurationError struct {
	Capability string
	Remedy     string
}

func (e *ConfigurationError) Error() string {
	if e.Remedy == "" {
		return fmt.Sprintf("capability %q is not configured", e.Capability)
	}
	return fmt.Sprintf("capability %q is not configured: %s", e.Capability, e.Remedy)
}

// Error is a typed application error a handler may return. The dispatcher
// hands it to the registered error mapper; it is the only handler failure
// that keeps its identity past the dispatch boundary.
type Error struct {
	// Status is the HTTP status the default mapper responds with.
	Status int

	// Code is a stable machine-readable identifier.
	Code string

	// Message is safe to show to API clients.
	Message string

	// Err is the underlying cause, kept for logs only.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a typed application error.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Wrap builds a typed application error around a cause.
func Wrap(status int, code, message string, err error) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}
