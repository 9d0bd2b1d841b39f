package scanner

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
)

// maxHeaderBlockSize bounds the bytes buffered while waiting for a part's
// blank-line terminator, protecting against payloads that never end their
// header block.
const maxHeaderBlockSize = 8 << 10 // 8 KiB

// defaultFileContentType applies to file parts that omit Content-Type.
const defaultFileContentType = "application/octet-stream"

// partHeader holds the parsed header block of a single part.
type partHeader struct {
	fieldName   string
	fileName    string
	contentType string
	isFile      bool // filename attribute present in Content-Disposition
}

// parsePartHeaders parses the raw header block of one part (without the
// trailing blank line). Quoted-string attribute values, including backslash
// escapes, are handled by the media type parser.
func parsePartHeaders(block []byte) (partHeader, error) {
	var (
		hdr            partHeader
		hasDisposition bool
	)

	for _, line := range bytes.Split(block, []byte("\r\n")) {
		if len(line) == 0 {
			continue
		}

		name, value, ok := bytes.Cut(line, []byte(":"))
		if !ok {
			return partHeader{}, fmt.Errorf("%w: header line without colon", ErrMalformedHeader)
		}

		switch strings.ToLower(strings.TrimSpace(string(name))) {
		case "content-disposition":
			disposition, params, err := mime.ParseMediaType(strings.TrimSpace(string(value)))
			if err != nil {
				return partHeader{}, fmt.Errorf("%w: invalid content disposition: %v", ErrMalformedHeader, err)
			}
			if disposition != "form-data" {
				return partHeader{}, fmt.Errorf("%w: content disposition must be form-data, got %q", ErrMalformedHeader, disposition)
			}
			hasDisposition = true
			hdr.fieldName = params["name"]
			if fileName, ok := params["filename"]; ok {
				hdr.fileName = fileName
				hdr.isFile = true
			}
		case "content-type":
			essence, _, err := mime.ParseMediaType(strings.TrimSpace(string(value)))
			if err != nil {
				return partHeader{}, fmt.Errorf("%w: invalid part content type: %v", ErrMalformedHeader, err)
			}
			hdr.contentType = essence
		}
	}

	if !hasDisposition {
		return partHeader{}, fmt.Errorf("%w: missing Content-Disposition header", ErrMalformedHeader)
	}
	if hdr.fieldName == "" {
		return partHeader{}, ErrMissingFieldName
	}
	if hdr.isFile && hdr.contentType == "" {
		hdr.contentType = defaultFileContentType
	}

	return hdr, nil
}
