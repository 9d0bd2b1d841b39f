package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Compile-time check that Disk implements the Engine interface.
var _ Engine = (*Disk)(nil)

// Disk streams committed files into a destination directory. Partial files
// are removed on any failure, so a crash-free abort never leaves artifacts.
type Disk struct {
	dir      string
	strategy FilenameStrategy
	perm     fs.FileMode
	fsync    bool
	log      *slog.Logger
}

// DiskOption configures a Disk engine.
type DiskOption func(*Disk)

// WithFilenameStrategy sets how stored names are derived from part metadata.
// The default is RandomFilename, which keeps client-controlled names off the
// filesystem entirely.
func WithFilenameStrategy(strategy FilenameStrategy) DiskOption {
	return func(d *Disk) {
		d.strategy = strategy
	}
}

// WithFilePerm sets the mode bits for created files. Defaults to 0o600.
func WithFilePerm(perm fs.FileMode) DiskOption {
	return func(d *Disk) {
		d.perm = perm
	}
}

// WithFsync forces an fsync before close, trading throughput for durability
// of just-committed uploads.
func WithFsync() DiskOption {
	return func(d *Disk) {
		d.fsync = true
	}
}

// WithLogger sets the logger used to record best-effort cleanup failures.
func WithLogger(log *slog.Logger) DiskOption {
	return func(d *Disk) {
		d.log = log
	}
}

// NewDisk creates a disk engine rooted at dir. The directory is created when
// missing and probed for writability, so a misconfigured destination fails
// here rather than on the first upload.
func NewDisk(dir string, opts ...DiskOption) (*Disk, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: destination directory is required", ErrInvalidConfig)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: cannot create destination: %v", ErrInvalidConfig, err)
	}

	probe, err := os.CreateTemp(abs, ".multiform-probe-*")
	if err != nil {
		return nil, fmt.Errorf("%w: destination is not writable: %v", ErrInvalidConfig, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	d := &Disk{
		dir:      abs,
		strategy: RandomFilename,
		perm:     0o600,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Store streams the body into an exclusively created file under the
// destination. On any failure the partially written file is deleted before
// the error is returned.
func (d *Disk) Store(ctx context.Context, meta FileMeta, body io.Reader) (*StoredFile, error) {
	name := storedName(d.strategy, meta)

	f, name, err := d.create(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	path := filepath.Join(d.dir, name)

	size, err := copyBody(ctx, f, body)
	if err != nil {
		f.Close()
		d.discard(path)
		return nil, err
	}

	if d.fsync {
		if err := f.Sync(); err != nil {
			f.Close()
			d.discard(path)
			return nil, fmt.Errorf("%w: %w", ErrStoreFailed, err)
		}
	}
	if err := f.Close(); err != nil {
		d.discard(path)
		return nil, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}

	return &StoredFile{
		Key:          path,
		FieldName:    meta.FieldName,
		OriginalName: meta.FileName,
		FileName:     name,
		ContentType:  meta.ContentType,
		Size:         size,
		Path:         path,
	}, nil
}

// Open returns a reader over a previously stored file. Keys are confined to
// the destination directory.
func (d *Disk) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := d.confine(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, key)
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return f, nil
}

// Remove deletes a previously stored file.
func (d *Disk) Remove(_ context.Context, key string) error {
	path, err := d.confine(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, key)
		}
		return fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return nil
}

// Dir returns the absolute destination directory.
func (d *Disk) Dir() string {
	return d.dir
}

// create opens the target exclusively, appending a generated suffix when the
// derived name already exists so concurrent sessions never clobber each
// other.
func (d *Disk) create(name string) (*os.File, string, error) {
	for attempt := 0; ; attempt++ {
		f, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, d.perm)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrExist) || attempt >= 3 {
			return nil, "", err
		}
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		name = base + "-" + uuid.NewString()[:8] + ext
	}
}

// discard removes a partial artifact. Cleanup failures are logged and never
// override the original error.
func (d *Disk) discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		d.log.Error("failed to remove partial upload", slog.String("path", path), slog.Any("error", err))
	}
}

// confine resolves a key against the destination and rejects anything that
// would escape it.
func (d *Disk) confine(key string) (string, error) {
	path := filepath.Clean(key)
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.dir, path)
	}
	if path != d.dir && !strings.HasPrefix(path, d.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: key escapes storage root", ErrInvalidConfig)
	}
	return path, nil
}
