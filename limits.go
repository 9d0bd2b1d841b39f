package multiform

import (
	"io"
	"strings"
)

// Limits bounds a parse session. Zero values mean unlimited; all bounds are
// inclusive, so a size exactly equal to a limit is accepted. The env tags
// allow loading via core/config.
type Limits struct {
	// MaxFileSize caps the body of a single file part, in bytes.
	MaxFileSize int64 `env:"MULTIFORM_MAX_FILE_SIZE"`
	// MaxFieldSize caps the value of a single plain field, in bytes.
	MaxFieldSize int64 `env:"MULTIFORM_MAX_FIELD_SIZE"`
	// MaxBodySize caps the aggregate request body, in bytes. It is the
	// built-in circuit breaker against unbounded slow delivery.
	MaxBodySize int64 `env:"MULTIFORM_MAX_BODY_SIZE"`
	// MaxFiles caps the number of accepted file parts.
	MaxFiles int `env:"MULTIFORM_MAX_FILES"`
	// MaxFields caps the number of plain fields.
	MaxFields int `env:"MULTIFORM_MAX_FIELDS"`
	// AllowedMIMETypes restricts file part content types. Entries are
	// literal media types or wildcard subtypes such as "image/*". Empty
	// means any type is accepted.
	AllowedMIMETypes []string `env:"MULTIFORM_ALLOWED_MIME_TYPES" envSeparator:","`
}

// Validate rejects limits that cannot express a meaningful bound.
func (l Limits) Validate() error {
	switch {
	case l.MaxFileSize < 0, l.MaxFieldSize < 0, l.MaxBodySize < 0:
		return errInvalidConfig("size limits cannot be negative")
	case l.MaxFiles < 0, l.MaxFields < 0:
		return errInvalidConfig("count limits cannot be negative")
	}
	return nil
}

// mimeAllowed matches a media type essence against an allowlist of literal
// types and "type/*" wildcards. An empty allowlist accepts everything.
func mimeAllowed(allow []string, contentType string) bool {
	if len(allow) == 0 {
		return true
	}
	ct := strings.ToLower(contentType)
	for _, entry := range allow {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == ct || entry == "*/*" {
			return true
		}
		if major, ok := strings.CutSuffix(entry, "/*"); ok {
			if prefix, _, found := strings.Cut(ct, "/"); found && prefix == major {
				return true
			}
		}
	}
	return false
}

// bodyLimitReader enforces MaxBodySize on the raw input stream. The check
// runs as bytes arrive, so an oversized body aborts mid-delivery instead of
// after full receipt.
type bodyLimitReader struct {
	src   io.Reader
	limit int64
	read  int64
}

func (r *bodyLimitReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 {
		r.read += int64(n)
		if r.read > r.limit {
			// The overflow chunk is dropped; the session aborts anyway.
			return 0, BodySizeError{Limit: r.limit}
		}
	}
	return n, err
}

// partLimitReader enforces the effective per-part size limit while the body
// streams toward storage. The offending chunk is withheld from the sink, so
// no byte past the limit is ever committed.
type partLimitReader struct {
	src     io.Reader
	limit   int64 // 0 = unlimited
	read    int64
	onLimit func(limit int64) error
}

func (r *partLimitReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 {
		r.read += int64(n)
		if r.limit > 0 && r.read > r.limit {
			return 0, r.onLimit(r.limit)
		}
	}
	return n, err
}
