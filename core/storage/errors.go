package storage

import "errors"

// Error variables define storage failure scenarios shared by all engine
// implementations.
var (
	// ErrInvalidConfig indicates an engine was constructed with an unusable
	// configuration, such as an empty or unwritable destination.
	ErrInvalidConfig = errors.New("invalid storage configuration")

	// ErrStoreFailed indicates the engine could not persist the file.
	// It wraps the underlying I/O cause.
	ErrStoreFailed = errors.New("failed to store file")

	// ErrFileNotFound indicates the requested key does not exist in the
	// backend.
	ErrFileNotFound = errors.New("file not found in storage")

	// ErrFileTooLarge indicates the engine's own size guard was hit while
	// accumulating the body. Primary size enforcement happens upstream; this
	// guard protects engines used standalone.
	ErrFileTooLarge = errors.New("file exceeds storage size limit")

	// ErrOperationTimeout indicates the backend did not respond within the
	// configured deadline.
	ErrOperationTimeout = errors.New("storage operation timed out")

	// ErrOperationCanceled indicates the caller canceled the operation.
	ErrOperationCanceled = errors.New("storage operation canceled")

	// ErrAccessDenied indicates the backend rejected the credentials or the
	// destination permissions forbid the operation.
	ErrAccessDenied = errors.New("storage access denied")

	// ErrServiceUnavailable indicates a transient backend fault worth
	// retrying.
	ErrServiceUnavailable = errors.New("storage service unavailable")

	// ErrBucketNotFound indicates the configured bucket or destination does
	// not exist.
	ErrBucketNotFound = errors.New("storage bucket not found")
)
