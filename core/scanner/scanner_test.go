package scanner_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multiform/core/scanner"
)

const testBoundary = "BOUND"

type bodyPart struct {
	field       string
	filename    string
	contentType string
	content     string
	hasFilename bool
}

func filePart(field, filename, contentType, content string) bodyPart {
	return bodyPart{field: field, filename: filename, contentType: contentType, content: content, hasFilename: true}
}

func fieldPart(field, content string) bodyPart {
	return bodyPart{field: field, content: content}
}

func buildBody(boundary string, parts ...bodyPart) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString(`Content-Disposition: form-data; name="` + p.field + `"`)
		if p.hasFilename {
			b.WriteString(`; filename="` + p.filename + `"`)
		}
		b.WriteString("\r\n")
		if p.contentType != "" {
			b.WriteString("Content-Type: " + p.contentType + "\r\n")
		}
		b.WriteString("\r\n")
		b.WriteString(p.content)
		b.WriteString("\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")
	return b.String()
}

// chunkReader delivers the payload in fixed-size chunks to exercise boundary
// markers straddling read boundaries.
type chunkReader struct {
	data []byte
	size int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.size
	if n > len(c.data) {
		n = len(c.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func collectParts(t *testing.T, sc *scanner.Scanner) []struct {
	part *scanner.Part
	body string
} {
	t.Helper()
	var out []struct {
		part *scanner.Part
		body string
	}
	for {
		part, err := sc.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		out = append(out, struct {
			part *scanner.Part
			body string
		}{part, string(data)})
	}
}

func TestScanner_SingleFilePart(t *testing.T) {
	body := buildBody(testBoundary, filePart("upload", "a.txt", "text/plain", "hello"))
	sc, err := scanner.New(strings.NewReader(body), testBoundary)
	require.NoError(t, err)

	part, err := sc.Next()
	require.NoError(t, err)
	assert.Equal(t, "upload", part.FieldName)
	assert.Equal(t, "a.txt", part.FileName)
	assert.Equal(t, "text/plain", part.ContentType)
	assert.Equal(t, 1, part.Index)
	assert.True(t, part.IsFile)

	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = sc.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestScanner_MixedParts(t *testing.T) {
	body := buildBody(testBoundary,
		fieldPart("title", "vacation photos"),
		filePart("photo", "beach.jpg", "image/jpeg", "JPEGDATA"),
		fieldPart("tags", "summer"),
	)
	sc, err := scanner.New(strings.NewReader(body), testBoundary)
	require.NoError(t, err)

	parts := collectParts(t, sc)
	require.Len(t, parts, 3)

	assert.Equal(t, "title", parts[0].part.FieldName)
	assert.False(t, parts[0].part.IsFile)
	assert.Equal(t, "vacation photos", parts[0].body)

	assert.Equal(t, "photo", parts[1].part.FieldName)
	assert.True(t, parts[1].part.IsFile)
	assert.Equal(t, "JPEGDATA", parts[1].body)
	assert.Equal(t, 2, parts[1].part.Index)

	assert.Equal(t, "tags", parts[2].part.FieldName)
	assert.Equal(t, "summer", parts[2].body)
}

func TestScanner_ChunkSizeIndependence(t *testing.T) {
	body := buildBody(testBoundary,
		filePart("a", "a.bin", "application/octet-stream", strings.Repeat("x", 300)+"\r\n--almost"),
		fieldPart("note", "chunk me"),
	)

	readers := map[string]io.Reader{
		"whole buffer": strings.NewReader(body),
		"one byte":     iotest.OneByteReader(strings.NewReader(body)),
		"three bytes":  &chunkReader{data: []byte(body), size: 3},
		"seven bytes":  &chunkReader{data: []byte(body), size: 7},
	}

	type parsed struct {
		field, body string
	}
	var want []parsed

	for name, r := range readers {
		t.Run(name, func(t *testing.T) {
			sc, err := scanner.New(r, testBoundary)
			require.NoError(t, err)

			var got []parsed
			for _, p := range collectParts(t, sc) {
				got = append(got, parsed{p.part.FieldName, p.body})
			}
			if want == nil {
				want = got
				require.Len(t, got, 2)
				return
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestScanner_BodyContainingDelimiterPrefix(t *testing.T) {
	// Content that almost looks like a boundary must pass through intact.
	content := "line one\r\n--BOU not a boundary\r\nline two"
	body := buildBody(testBoundary, filePart("f", "f.txt", "text/plain", content))

	sc, err := scanner.New(&chunkReader{data: []byte(body), size: 4}, testBoundary)
	require.NoError(t, err)

	part, err := sc.Next()
	require.NoError(t, err)
	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestScanner_EmptyPartBody(t *testing.T) {
	body := buildBody(testBoundary, fieldPart("empty", ""))
	sc, err := scanner.New(strings.NewReader(body), testBoundary)
	require.NoError(t, err)

	part, err := sc.Next()
	require.NoError(t, err)
	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Empty(t, data)

	_, err = sc.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestScanner_EmptyForm(t *testing.T) {
	sc, err := scanner.New(strings.NewReader("--BOUND--\r\n"), testBoundary)
	require.NoError(t, err)

	_, err = sc.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestScanner_TerminalWithoutTrailingCRLF(t *testing.T) {
	body := "--BOUND\r\n" +
		"Content-Disposition: form-data; name=\"f\"\r\n" +
		"\r\n" +
		"data" +
		"\r\n--BOUND--"
	sc, err := scanner.New(strings.NewReader(body), testBoundary)
	require.NoError(t, err)

	part, err := sc.Next()
	require.NoError(t, err)
	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	_, err = sc.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestScanner_NextDrainsUnreadBody(t *testing.T) {
	body := buildBody(testBoundary,
		filePart("big", "big.bin", "application/octet-stream", strings.Repeat("z", 1000)),
		fieldPart("after", "still here"),
	)
	sc, err := scanner.New(strings.NewReader(body), testBoundary)
	require.NoError(t, err)

	_, err = sc.Next()
	require.NoError(t, err)

	// Skip the file body entirely; the next part must still be reachable.
	part, err := sc.Next()
	require.NoError(t, err)
	assert.Equal(t, "after", part.FieldName)
	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "still here", string(data))
}

func TestScanner_MalformedOpeningBoundary(t *testing.T) {
	sc, err := scanner.New(strings.NewReader("not a boundary\r\nrest"), testBoundary)
	require.NoError(t, err)

	_, err = sc.Next()
	assert.ErrorIs(t, err, scanner.ErrMalformedBoundary)
}

func TestScanner_MalformedBoundarySuffix(t *testing.T) {
	body := "--BOUND\r\n" +
		"Content-Disposition: form-data; name=\"f\"\r\n" +
		"\r\n" +
		"data" +
		"\r\n--BOUNDgarbage\r\n"
	sc, err := scanner.New(strings.NewReader(body), testBoundary)
	require.NoError(t, err)

	part, err := sc.Next()
	require.NoError(t, err)
	_, err = io.ReadAll(part)
	assert.ErrorIs(t, err, scanner.ErrMalformedBoundary)
}

func TestScanner_TruncatedStream(t *testing.T) {
	t.Run("mid body", func(t *testing.T) {
		body := "--BOUND\r\n" +
			"Content-Disposition: form-data; name=\"f\"\r\n" +
			"\r\n" +
			"data without terminal"
		sc, err := scanner.New(strings.NewReader(body), testBoundary)
		require.NoError(t, err)

		part, err := sc.Next()
		require.NoError(t, err)
		_, err = io.ReadAll(part)
		assert.ErrorIs(t, err, scanner.ErrUnexpectedEOF)
	})

	t.Run("mid headers", func(t *testing.T) {
		body := "--BOUND\r\nContent-Disposition: form-"
		sc, err := scanner.New(strings.NewReader(body), testBoundary)
		require.NoError(t, err)

		_, err = sc.Next()
		assert.ErrorIs(t, err, scanner.ErrUnexpectedEOF)
	})

	t.Run("empty input", func(t *testing.T) {
		sc, err := scanner.New(strings.NewReader(""), testBoundary)
		require.NoError(t, err)

		_, err = sc.Next()
		assert.ErrorIs(t, err, scanner.ErrUnexpectedEOF)
	})
}

func TestScanner_ErrorIsSticky(t *testing.T) {
	sc, err := scanner.New(strings.NewReader("garbage\r\n"), testBoundary)
	require.NoError(t, err)

	_, err = sc.Next()
	require.ErrorIs(t, err, scanner.ErrMalformedBoundary)

	_, err = sc.Next()
	assert.ErrorIs(t, err, scanner.ErrMalformedBoundary)
}

func TestScanner_SourceErrorPropagates(t *testing.T) {
	srcErr := errors.New("connection reset")
	body := "--BOUND\r\n" +
		"Content-Disposition: form-data; name=\"f\"\r\n" +
		"\r\n" +
		"partial"
	r := io.MultiReader(strings.NewReader(body), iotest.ErrReader(srcErr))

	sc, err := scanner.New(r, testBoundary)
	require.NoError(t, err)

	part, err := sc.Next()
	require.NoError(t, err)
	_, err = io.ReadAll(part)
	assert.ErrorIs(t, err, srcErr)
}

func TestScanner_RejectsInvalidBoundary(t *testing.T) {
	_, err := scanner.New(strings.NewReader(""), "bad\r\nboundary")
	assert.ErrorIs(t, err, scanner.ErrInvalidBoundary)
}

func TestScanner_HeaderBlockTooLarge(t *testing.T) {
	body := "--BOUND\r\n" +
		"Content-Disposition: form-data; name=\"f\"\r\n" +
		"X-Filler: " + strings.Repeat("a", 10<<10) + "\r\n" +
		"\r\n" +
		"data\r\n--BOUND--\r\n"
	sc, err := scanner.New(strings.NewReader(body), testBoundary)
	require.NoError(t, err)

	_, err = sc.Next()
	assert.ErrorIs(t, err, scanner.ErrHeaderTooLarge)
}
