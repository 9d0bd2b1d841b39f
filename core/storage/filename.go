package storage

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// maxFilenameRunes caps sanitized names well under common filesystem limits,
// leaving room for engine-added suffixes.
const maxFilenameRunes = 128

// FilenameStrategy derives the stored name for a file from its part
// metadata. Whatever the strategy returns is still passed through
// SanitizeFilename before use; a strategy cannot opt out of sanitization.
type FilenameStrategy func(meta FileMeta) string

// KeepFilename stores the file under its sanitized original name.
func KeepFilename(meta FileMeta) string {
	return meta.FileName
}

// RandomFilename stores the file under a collision-resistant identifier that
// is independent of client input, preserving the original extension when one
// survives sanitization.
func RandomFilename(meta FileMeta) string {
	ext := path.Ext(SanitizeFilename(meta.FileName))
	return uuid.NewString() + ext
}

// SanitizeFilename strips everything from a client-supplied filename that
// could escape the destination directory or confuse a filesystem: directory
// components, NUL bytes, control characters, reserved punctuation, and
// leading-dot traversal sequences. The result is capped at 128 runes. It is a
// pure function; degenerate input yields an empty string and callers
// substitute a generated name.
func SanitizeFilename(name string) string {
	// Windows clients send backslash-separated paths.
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	name = strings.Map(func(r rune) rune {
		switch {
		case r == 0, r < 0x20, r == 0x7f:
			return -1
		case strings.ContainsRune(`<>:"|?*`, r):
			return -1
		}
		return r
	}, name)

	// path.Base already collapsed "a/../b"; what remains is names that are
	// nothing but dots or start with them ("..", "...txt", ".hidden").
	name = strings.TrimLeft(name, ".")

	if name == "" || name == "/" {
		return ""
	}

	runes := []rune(name)
	if len(runes) > maxFilenameRunes {
		// Keep the extension visible when truncating.
		ext := path.Ext(name)
		if len(ext) > 0 && len(ext) < maxFilenameRunes {
			keep := maxFilenameRunes - len([]rune(ext))
			return string(runes[:keep]) + ext
		}
		return string(runes[:maxFilenameRunes])
	}
	return name
}

// storedName applies the strategy and the unconditional sanitizer, falling
// back to a generated identifier when nothing safe remains.
func storedName(strategy FilenameStrategy, meta FileMeta) string {
	if strategy == nil {
		strategy = RandomFilename
	}
	name := SanitizeFilename(strategy(meta))
	if name == "" {
		name = uuid.NewString()
	}
	return name
}
