// Package scanner implements an incremental multipart/form-data scanner that
// splits a byte stream into boundary-delimited parts without buffering part
// bodies.
//
// The scanner pulls bytes from an io.Reader in whatever chunk sizes the
// source delivers and retains at most len("\r\n--boundary")-1 bytes of
// lookahead between reads, so a boundary marker that straddles two chunks is
// always detected. Parsed results are therefore independent of how the input
// is chunked.
//
// # Basic Usage
//
//	boundary, err := scanner.ExtractBoundary(r.Header.Get("Content-Type"))
//	if err != nil {
//		return err
//	}
//
//	sc, err := scanner.New(r.Body, boundary)
//	if err != nil {
//		return err
//	}
//
//	for {
//		part, err := sc.Next()
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		if err != nil {
//			return err
//		}
//
//		// part is an io.Reader over the part body
//		data, err := io.ReadAll(part)
//		if err != nil {
//			return err
//		}
//		fmt.Printf("%s: %d bytes\n", part.FieldName, len(data))
//	}
//
// Calling Next before the current part body has been fully read drains the
// remainder of that body first; part bodies cannot be revisited.
//
// The scanner inspects body bytes only to locate the boundary delimiter. It
// never interprets part content, decodes transfer encodings, or enforces
// size limits beyond the fixed cap on a part's header block; byte budgets
// belong to the caller (typically by wrapping the source reader).
package scanner
