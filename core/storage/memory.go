package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Compile-time check that Memory implements the Engine interface.
var _ Engine = (*Memory)(nil)

// Memory keeps committed files in process memory, keyed by generated
// identifiers. Intended for tests and small forms; the map is mutex-guarded
// so independent sessions can share one instance.
type Memory struct {
	mu      sync.RWMutex
	files   map[string][]byte
	maxSize int64
}

// MemoryOption configures a Memory engine.
type MemoryOption func(*Memory)

// WithMaxSize guards against a single file accumulating more than limit
// bytes. Primary enforcement belongs upstream; this protects engines used
// standalone.
func WithMaxSize(limit int64) MemoryOption {
	return func(m *Memory) {
		m.maxSize = limit
	}
}

// NewMemory creates an in-memory engine.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{files: make(map[string][]byte)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store accumulates the body into a growable buffer. Nothing is published
// until the full body arrived, so failure cleanup is simply not committing.
func (m *Memory) Store(ctx context.Context, meta FileMeta, body io.Reader) (*StoredFile, error) {
	var buf bytes.Buffer
	var sink io.Writer = &buf
	if m.maxSize > 0 {
		sink = &cappedWriter{w: &buf, remaining: m.maxSize}
	}

	size, err := copyBody(ctx, sink, body)
	if err != nil {
		return nil, err
	}

	key := uuid.NewString()
	name := storedName(KeepFilename, meta)

	m.mu.Lock()
	m.files[key] = buf.Bytes()
	m.mu.Unlock()

	return &StoredFile{
		Key:          key,
		FieldName:    meta.FieldName,
		OriginalName: meta.FileName,
		FileName:     name,
		ContentType:  meta.ContentType,
		Size:         size,
	}, nil
}

// Open returns a reader over the stored buffer.
func (m *Memory) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.files[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Bytes exposes the stored buffer by reference, avoiding a copy for callers
// that consume the upload in place.
func (m *Memory) Bytes(key string) ([]byte, bool) {
	m.mu.RLock()
	data, ok := m.files[key]
	m.mu.RUnlock()
	return data, ok
}

// Remove discards the stored buffer.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[key]; !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, key)
	}
	delete(m.files, key)
	return nil
}

// Len reports the number of committed files, for tests and introspection.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// cappedWriter rejects writes past a fixed byte budget.
type cappedWriter struct {
	w         io.Writer
	remaining int64
}

func (c *cappedWriter) Write(p []byte) (int, error) {
	if int64(len(p)) > c.remaining {
		return 0, ErrFileTooLarge
	}
	n, err := c.w.Write(p)
	c.remaining -= int64(n)
	return n, err
}
