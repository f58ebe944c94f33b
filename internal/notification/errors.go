package notification

import (
	"errors"
	"fmt"
)

// Kind classifies why a notification attempt failed.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindValidation    Kind = "validation"
	KindProvider      Kind = "provider"
	KindTransport     Kind = "transport"
)

// Error describes a failed notification step. Every kind is terminal for the attempt.
type Error struct {
	Kind    Kind
	Message string
	// StatusCode and Payload are set for provider errors.
	StatusCode int
	Payload    string
	// Timeout marks a transport error caused by the dispatch deadline.
	Timeout bool
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindTransport {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from err, or "" when err is not a notification error.
func KindOf(err error) Kind {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind
	}
	return ""
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}
