// Package storage defines the commit contract for accepted upload bytes and
// provides in-memory and on-disk implementations.
//
// An Engine persists one part body delivered as an io.Reader. Store is
// all-or-nothing: on any failure, including a read error from the byte
// source, the engine discards whatever partial artifact it had begun writing
// before returning the error. Source errors propagate with their identity
// intact so limit violations raised upstream stay classifiable; only
// engine-side write failures are wrapped as storage errors.
//
// # Filename Safety
//
// Client-supplied filenames are untrusted. Every engine derives its stored
// name through a FilenameStrategy and passes the result through
// SanitizeFilename unconditionally, so path separators, NUL bytes, control
// characters, and leading-dot traversal sequences never reach the backend.
// SanitizeFilename is a pure function; when it yields an empty string the
// engine substitutes a generated identifier.
//
// # Basic Usage
//
//	store, err := storage.NewDisk("/var/uploads",
//		storage.WithFilenameStrategy(storage.KeepFilename),
//	)
//	if err != nil {
//		return err
//	}
//
//	stored, err := store.Store(ctx, storage.FileMeta{
//		FieldName:   "avatar",
//		FileName:    header.Filename,
//		ContentType: "image/png",
//	}, body)
//	if err != nil {
//		return err
//	}
//
//	f, err := store.Open(ctx, stored.Key)
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//
// Engines are safe for concurrent use by independent sessions; they hold no
// per-session state.
package storage
