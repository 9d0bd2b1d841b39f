package scanner

import "errors"

// Error variables define the parse failures surfaced by the scanner,
// allowing callers to classify malformed payloads without string matching.
var (
	// ErrNotMultipart indicates the Content-Type header is absent, unparsable,
	// or names a media type other than multipart/form-data.
	ErrNotMultipart = errors.New("content type is not multipart/form-data")

	// ErrMissingBoundary indicates the Content-Type header lacks the required
	// boundary parameter.
	ErrMissingBoundary = errors.New("missing multipart boundary parameter")

	// ErrInvalidBoundary indicates the boundary parameter violates RFC 2046
	// (empty, too long, trailing whitespace, or forbidden characters).
	ErrInvalidBoundary = errors.New("invalid multipart boundary")

	// ErrMalformedBoundary indicates a boundary line at a position where one
	// is required does not match the declared boundary, or a matched boundary
	// is followed by bytes that are neither CRLF nor the terminal "--".
	ErrMalformedBoundary = errors.New("malformed multipart boundary")

	// ErrUnexpectedEOF indicates the input ended before the terminal boundary
	// was observed, leaving a part truncated.
	ErrUnexpectedEOF = errors.New("unexpected end of multipart stream")

	// ErrHeaderTooLarge indicates a part's header block exceeds the fixed
	// size cap that bounds scanner memory use.
	ErrHeaderTooLarge = errors.New("part header block exceeds size limit")

	// ErrMissingFieldName indicates a part's Content-Disposition header lacks
	// the required name attribute.
	ErrMissingFieldName = errors.New("part is missing a field name")

	// ErrMalformedHeader indicates a part header line that cannot be parsed.
	ErrMalformedHeader = errors.New("malformed part header")
)
