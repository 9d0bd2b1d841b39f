package selector

import (
	"errors"
	"fmt"
)

// Error variables define construction-time selector failures. They surface
// before any request is accepted, so misconfigured forms fail loudly at
// startup instead of silently mishandling uploads.
var (
	// ErrEmptyFieldName indicates a rule with an empty field name.
	ErrEmptyFieldName = errors.New("selector rule requires a field name")

	// ErrInvalidMaxCount indicates a rule whose maximum occurrence count is
	// zero or negative.
	ErrInvalidMaxCount = errors.New("selector rule max count must be positive")

	// ErrInvalidMinCount indicates a rule whose minimum occurrence count is
	// negative or exceeds its maximum.
	ErrInvalidMinCount = errors.New("selector rule min count is invalid")

	// ErrDuplicateField indicates two rules naming the same field.
	ErrDuplicateField = errors.New("selector contains duplicate field rule")
)

// UnexpectedFieldError reports a file part whose field name matches no rule
// while the engine policy is PolicyReject.
type UnexpectedFieldError struct {
	Field string
}

// Error implements the error interface.
func (e UnexpectedFieldError) Error() string {
	return fmt.Sprintf("unexpected file field %q", e.Field)
}

// FieldCountError reports a field that occurred more times than its rule
// allows.
type FieldCountError struct {
	Field string
	Limit int
}

// Error implements the error interface.
func (e FieldCountError) Error() string {
	return fmt.Sprintf("field %q exceeds maximum of %d occurrences", e.Field, e.Limit)
}
