package multiform

import (
	"errors"
	"fmt"
)

// Category sentinels. Every error returned by this package wraps exactly one
// of them, so errors.Is classifies a failure and errors.As extracts detail.
var (
	// ErrInvalidConfig indicates the parser was constructed with conflicting
	// rules, negative limits, or no storage engine. Construction-time only.
	ErrInvalidConfig = errors.New("invalid multiform configuration")

	// ErrParseFailed indicates a malformed payload: bad boundary, oversized
	// or invalid header block, or a truncated stream.
	ErrParseFailed = errors.New("failed to parse multipart body")

	// ErrLimitExceeded indicates a configured limit was violated. The
	// concrete typed error identifies which one.
	ErrLimitExceeded = errors.New("multipart limit exceeded")

	// ErrStorageFailed indicates the storage backend failed while committing
	// a file. It wraps the underlying cause.
	ErrStorageFailed = errors.New("storage operation failed")
)

// FileSizeError reports a file part exceeding its effective size limit.
type FileSizeError struct {
	Field string
	Limit int64
}

func (e FileSizeError) Error() string {
	return fmt.Sprintf("file in field %q exceeds %d bytes", e.Field, e.Limit)
}

func (e FileSizeError) Unwrap() error { return ErrLimitExceeded }

// FieldSizeError reports a plain field value exceeding its size limit.
type FieldSizeError struct {
	Field string
	Limit int64
}

func (e FieldSizeError) Error() string {
	return fmt.Sprintf("value of field %q exceeds %d bytes", e.Field, e.Limit)
}

func (e FieldSizeError) Unwrap() error { return ErrLimitExceeded }

// BodySizeError reports the aggregate request body exceeding its limit.
type BodySizeError struct {
	Limit int64
}

func (e BodySizeError) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

func (e BodySizeError) Unwrap() error { return ErrLimitExceeded }

// FilesCountError reports more file parts than the session allows.
type FilesCountError struct {
	Limit int
}

func (e FilesCountError) Error() string {
	return fmt.Sprintf("too many files: limit is %d", e.Limit)
}

func (e FilesCountError) Unwrap() error { return ErrLimitExceeded }

// FieldsCountError reports more plain fields than the session allows.
type FieldsCountError struct {
	Limit int
}

func (e FieldsCountError) Error() string {
	return fmt.Sprintf("too many fields: limit is %d", e.Limit)
}

func (e FieldsCountError) Unwrap() error { return ErrLimitExceeded }

// FieldCountError reports a single field occurring more often than its rule
// allows.
type FieldCountError struct {
	Field string
	Limit int
}

func (e FieldCountError) Error() string {
	return fmt.Sprintf("field %q exceeds maximum of %d occurrences", e.Field, e.Limit)
}

func (e FieldCountError) Unwrap() error { return ErrLimitExceeded }

// UnexpectedFieldError reports a file part under a field name no rule
// matches while the unknown-field policy is reject.
type UnexpectedFieldError struct {
	Field string
}

func (e UnexpectedFieldError) Error() string {
	return fmt.Sprintf("unexpected file field %q", e.Field)
}

func (e UnexpectedFieldError) Unwrap() error { return ErrLimitExceeded }

// MIMETypeError reports a file part whose declared content type is not on
// the applicable allowlist.
type MIMETypeError struct {
	Field       string
	ContentType string
}

func (e MIMETypeError) Error() string {
	return fmt.Sprintf("content type %q is not allowed for field %q", e.ContentType, e.Field)
}

func (e MIMETypeError) Unwrap() error { return ErrLimitExceeded }

// MissingFieldError reports a rule with a nonzero minimum cardinality that
// the stream did not satisfy.
type MissingFieldError struct {
	Field string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("required field %q is missing", e.Field)
}

func (e MissingFieldError) Unwrap() error { return ErrLimitExceeded }

func errInvalidConfig(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
