package service

import "fmt"

// ValidationError indicates that caller supplied input breaks a domain rule.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

func invalidf(format string, args ...any) error {
	return ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}
