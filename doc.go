// Package multiform parses multipart/form-data bodies as they stream in,
// enforcing size, count, and media-type limits mid-flight and committing
// accepted files to a pluggable storage backend. No part body is ever fully
// buffered by the parser, and a failed session never leaves partial
// artifacts behind.
//
// # Basic Usage
//
//	store, err := storage.NewDisk("/var/uploads")
//	if err != nil {
//		return err
//	}
//
//	parser, err := multiform.New(store,
//		multiform.WithSelector(selector.Single("avatar")),
//		multiform.WithLimits(multiform.Limits{
//			MaxFileSize:      10 << 20,
//			MaxFiles:         1,
//			AllowedMIMETypes: []string{"image/*"},
//		}),
//	)
//	if err != nil {
//		return err
//	}
//
//	result, err := parser.Parse(ctx, contentType, body)
//	if err != nil {
//		return err // the session aborted; nothing was kept
//	}
//
//	for _, f := range result.Files {
//		fmt.Printf("%s -> %s (%d bytes)\n", f.FieldName, f.Key, f.Size)
//	}
//	title, _ := result.FieldValue("title")
//
// # Error Classification
//
// Every failure belongs to one of four categories, each with a sentinel:
// ErrInvalidConfig (construction), ErrParseFailed (malformed payload),
// ErrLimitExceeded (a configured bound was hit), ErrStorageFailed (backend
// I/O). Typed errors carry the offending field and limit:
//
//	var sizeErr multiform.FileSizeError
//	if errors.As(err, &sizeErr) {
//		log.Printf("field %s exceeded %d bytes", sizeErr.Field, sizeErr.Limit)
//	}
//	if errors.Is(err, multiform.ErrLimitExceeded) {
//		w.WriteHeader(http.StatusRequestEntityTooLarge)
//	}
//
// # Concurrency
//
// A Parser is immutable after construction and safe for concurrent use; each
// Parse call owns its session state exclusively. Cancellation of the calling
// context aborts the session through the same cleanup path as an internal
// error.
package multiform
