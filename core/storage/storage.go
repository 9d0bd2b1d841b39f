package storage

import (
	"context"
	"io"
)

// FileMeta describes a file part before persistence. All values originate in
// the part's header block; FileName is untrusted client input.
type FileMeta struct {
	// FieldName is the multipart field the file arrived under.
	FieldName string
	// FileName is the original client-supplied filename, possibly empty.
	FileName string
	// ContentType is the declared media type essence of the part.
	ContentType string
	// Index is the 1-based ordinal of the part within its stream.
	Index int
}

// StoredFile describes a successfully committed file. It is immutable after
// commit.
type StoredFile struct {
	// Key is the backend-specific handle: a filesystem path for disk storage,
	// an opaque identifier for memory, an object key for remote backends.
	Key string
	// FieldName is the multipart field the file arrived under.
	FieldName string
	// OriginalName is the raw client-supplied filename, kept for display.
	OriginalName string
	// FileName is the sanitized name the file was stored under.
	FileName string
	// ContentType is the declared media type essence.
	ContentType string
	// Size is the committed byte count.
	Size int64
	// Path is the absolute filesystem location for disk-backed engines,
	// empty otherwise.
	Path string
}

// Engine is the capability contract for upload backends. Store must be
// all-or-nothing: on any error it removes whatever partial artifact it
// created before returning. Implementations must be safe for concurrent use
// by independent sessions.
type Engine interface {
	// Store persists the body and returns the committed file description.
	// Errors read from body propagate unwrapped; write-side failures wrap
	// ErrStoreFailed.
	Store(ctx context.Context, meta FileMeta, body io.Reader) (*StoredFile, error)

	// Open returns a reader over a previously stored file.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Remove deletes a previously stored file. Removing an already absent
	// key reports ErrFileNotFound.
	Remove(ctx context.Context, key string) error
}
