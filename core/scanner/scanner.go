package scanner

import (
	"bytes"
	"io"
)

// readChunkSize is the scratch buffer size used when pulling from the source.
const readChunkSize = 32 << 10 // 32 KiB

type state int

const (
	stateOpening state = iota // waiting for the first boundary line
	stateHeaders              // next bytes are a part header block
	stateBody                 // streaming the current part body
	stateEnd                  // terminal boundary consumed
	stateFailed               // sticky error recorded
)

// Scanner incrementally splits a multipart stream into parts. It is a
// single-use, forward-only cursor: parts are yielded in wire order and a
// consumed body cannot be re-read.
type Scanner struct {
	src io.Reader

	dashBoundary []byte // "--boundary", the opening line
	endBoundary  []byte // "--boundary--", the terminal line
	delimiter    []byte // "\r\n--boundary", separates a body from the next line

	buf     []byte // unconsumed input
	scratch []byte // reusable read buffer
	eof     bool   // source exhausted
	err     error  // sticky failure

	state     state
	cur       *Part
	partIndex int
}

// Part is one boundary-delimited segment. Its exported fields describe the
// parsed header block; the body is consumed through the io.Reader interface
// and is delivered as it arrives from the source.
type Part struct {
	// FieldName is the form field name from Content-Disposition.
	FieldName string
	// FileName is the client-supplied filename, empty for plain fields.
	// It is untrusted input and must be sanitized before any filesystem use.
	FileName string
	// ContentType is the declared media type essence. File parts without a
	// declared type default to application/octet-stream.
	ContentType string
	// Index is the 1-based ordinal of the part within the stream.
	Index int
	// IsFile reports whether the part carried a filename attribute, which is
	// what distinguishes a file upload from a plain field.
	IsFile bool

	sc   *Scanner
	done bool
}

// New creates a scanner reading multipart input delimited by boundary from r.
// The boundary must satisfy RFC 2046; it arrives from the request headers and
// is attacker-controlled, so it is validated before any byte patterns are
// derived from it.
func New(r io.Reader, boundary string) (*Scanner, error) {
	if err := validateBoundary(boundary); err != nil {
		return nil, err
	}
	return &Scanner{
		src:          r,
		dashBoundary: []byte("--" + boundary),
		endBoundary:  []byte("--" + boundary + "--"),
		delimiter:    []byte("\r\n--" + boundary),
	}, nil
}

// Next returns the next part of the stream, draining whatever remains of the
// current part's body first. It returns io.EOF after the terminal boundary.
func (s *Scanner) Next() (*Part, error) {
	if s.err != nil {
		return nil, s.err
	}

	if s.cur != nil && !s.cur.done {
		if _, err := io.Copy(io.Discard, s.cur); err != nil {
			return nil, err
		}
	}
	s.cur = nil

	for {
		switch s.state {
		case stateOpening:
			line, ok, err := s.takeLine()
			if err != nil {
				return nil, err
			}
			if !ok {
				if err := s.fill(); err != nil {
					return nil, err
				}
				continue
			}
			switch {
			case bytes.Equal(line, s.dashBoundary):
				s.state = stateHeaders
			case bytes.Equal(line, s.endBoundary):
				s.state = stateEnd
			default:
				return nil, s.fail(ErrMalformedBoundary)
			}

		case stateHeaders:
			block, ok, err := s.takeHeaderBlock()
			if err != nil {
				return nil, err
			}
			if !ok {
				if err := s.fill(); err != nil {
					return nil, err
				}
				continue
			}
			hdr, err := parsePartHeaders(block)
			if err != nil {
				return nil, s.fail(err)
			}
			s.partIndex++
			s.state = stateBody
			s.cur = &Part{
				FieldName:   hdr.fieldName,
				FileName:    hdr.fileName,
				ContentType: hdr.contentType,
				Index:       s.partIndex,
				IsFile:      hdr.isFile,
				sc:          s,
			}
			return s.cur, nil

		case stateEnd:
			return nil, io.EOF

		default:
			return nil, s.fail(ErrMalformedBoundary)
		}
	}
}

// Read streams the part body, stopping at the delimiter that introduces the
// next boundary line. It returns io.EOF once the body is fully consumed.
func (p *Part) Read(b []byte) (int, error) {
	if p.done {
		return 0, io.EOF
	}
	if len(b) == 0 {
		return 0, nil
	}
	s := p.sc
	if s.err != nil {
		return 0, s.err
	}

	for {
		if i := bytes.Index(s.buf, s.delimiter); i >= 0 {
			if i > 0 {
				n := copy(b, s.buf[:i])
				s.consume(n)
				return n, nil
			}
			// Delimiter at the head of the buffer: the body is complete once
			// the boundary suffix is resolved.
			rest := s.buf[len(s.delimiter):]
			switch {
			case bytes.HasPrefix(rest, []byte("\r\n")):
				s.consume(len(s.delimiter) + 2)
				p.done = true
				s.state = stateHeaders
				return 0, io.EOF
			case bytes.HasPrefix(rest, []byte("--")):
				// Terminal boundary; any epilogue after it is ignored.
				s.consume(len(s.delimiter) + 2)
				p.done = true
				s.state = stateEnd
				return 0, io.EOF
			case len(rest) < 2:
				if s.eof {
					return 0, s.fail(ErrUnexpectedEOF)
				}
			default:
				return 0, s.fail(ErrMalformedBoundary)
			}
		} else {
			// No full delimiter in the buffer. Everything except a possible
			// delimiter prefix at the tail is guaranteed body content.
			safe := len(s.buf) - (len(s.delimiter) - 1)
			if safe > 0 {
				if safe > len(b) {
					safe = len(b)
				}
				n := copy(b, s.buf[:safe])
				s.consume(n)
				return n, nil
			}
			if s.eof {
				return 0, s.fail(ErrUnexpectedEOF)
			}
		}

		if err := s.fill(); err != nil {
			return 0, err
		}
	}
}

// takeLine returns the next CRLF-terminated line when one is buffered. At
// source EOF a terminal boundary without a trailing CRLF is accepted.
func (s *Scanner) takeLine() ([]byte, bool, error) {
	if i := bytes.Index(s.buf, []byte("\r\n")); i >= 0 {
		line := append([]byte(nil), s.buf[:i]...)
		s.consume(i + 2)
		return line, true, nil
	}
	if s.eof {
		if bytes.Equal(s.buf, s.endBoundary) {
			s.consume(len(s.buf))
			return s.endBoundary, true, nil
		}
		return nil, false, s.fail(ErrUnexpectedEOF)
	}
	if len(s.buf) > maxHeaderBlockSize {
		return nil, false, s.fail(ErrMalformedBoundary)
	}
	return nil, false, nil
}

// takeHeaderBlock returns the bytes up to the blank-line terminator when the
// complete block is buffered, enforcing the header size cap.
func (s *Scanner) takeHeaderBlock() ([]byte, bool, error) {
	if i := bytes.Index(s.buf, []byte("\r\n\r\n")); i >= 0 {
		if i > maxHeaderBlockSize {
			return nil, false, s.fail(ErrHeaderTooLarge)
		}
		block := append([]byte(nil), s.buf[:i]...)
		s.consume(i + 4)
		return block, true, nil
	}
	if len(s.buf) > maxHeaderBlockSize {
		return nil, false, s.fail(ErrHeaderTooLarge)
	}
	if s.eof {
		return nil, false, s.fail(ErrUnexpectedEOF)
	}
	return nil, false, nil
}

// fill pulls one chunk from the source into the buffer. Source errors,
// including limit errors injected by a wrapping reader, become sticky.
func (s *Scanner) fill() error {
	if s.err != nil {
		return s.err
	}
	if s.eof {
		return nil
	}
	if s.scratch == nil {
		s.scratch = make([]byte, readChunkSize)
	}
	n, err := s.src.Read(s.scratch)
	if n > 0 {
		s.buf = append(s.buf, s.scratch[:n]...)
	}
	switch {
	case err == io.EOF:
		s.eof = true
	case err != nil:
		s.err = err
		s.state = stateFailed
		return err
	}
	return nil
}

func (s *Scanner) consume(n int) {
	s.buf = s.buf[n:]
}

func (s *Scanner) fail(err error) error {
	s.err = err
	s.state = stateFailed
	return err
}
