package scanner

import (
	"fmt"
	"mime"
	"strings"
)

// RFC 2046 caps boundary tokens at 70 characters, not counting the leading
// dashes.
const maxBoundaryLen = 70

// ExtractBoundary parses a Content-Type header value and returns the
// multipart boundary token. The parameter name is matched case-insensitively
// and quoted values are unquoted by the media type parser.
func ExtractBoundary(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotMultipart, err)
	}
	if mediaType != "multipart/form-data" {
		return "", fmt.Errorf("%w: got %q", ErrNotMultipart, mediaType)
	}

	boundary, ok := params["boundary"]
	if !ok || boundary == "" {
		return "", ErrMissingBoundary
	}
	if err := validateBoundary(boundary); err != nil {
		return "", err
	}
	return boundary, nil
}

// validateBoundary enforces the RFC 2046 bchars grammar. The boundary is used
// verbatim to build delimiter byte patterns, so CR/LF or an over-long token
// would corrupt delimiter matching.
func validateBoundary(boundary string) error {
	if boundary == "" {
		return fmt.Errorf("%w: boundary cannot be empty", ErrInvalidBoundary)
	}
	if len(boundary) > maxBoundaryLen {
		return fmt.Errorf("%w: boundary cannot exceed %d characters", ErrInvalidBoundary, maxBoundaryLen)
	}
	if strings.HasSuffix(boundary, " ") {
		return fmt.Errorf("%w: boundary cannot end with whitespace", ErrInvalidBoundary)
	}
	for _, c := range boundary {
		if !isBoundaryChar(c) {
			return fmt.Errorf("%w: boundary contains invalid character %q", ErrInvalidBoundary, c)
		}
	}
	return nil
}

func isBoundaryChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '\'', '(', ')', '+', '_', ',', '-', '.', '/', ':', '=', '?', ' ':
		return true
	}
	return false
}
