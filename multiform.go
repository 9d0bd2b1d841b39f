package multiform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/multiform/core/scanner"
	"github.com/dmitrymomot/multiform/core/selector"
	"github.com/dmitrymomot/multiform/core/storage"
)

// Parser drives the parse-limit-store pipeline. It is immutable after
// construction; each Parse call owns its session state exclusively, so one
// Parser serves concurrent requests.
type Parser struct {
	engine storage.Engine
	limits Limits
	sel    selector.Selector
	policy selector.Policy
	log    *slog.Logger
}

// Field is one plain (non-file) form field in wire order.
type Field struct {
	Name  string
	Value string
}

// Result is the outcome of a completed session: committed files and plain
// field values, both in wire order. A Result is only ever returned whole; an
// aborted session yields an error and nothing else.
type Result struct {
	Files  []*storage.StoredFile
	Fields []Field
}

// FieldValue returns the first value submitted under the named plain field.
func (r *Result) FieldValue(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// File returns the first committed file submitted under the named field.
func (r *Result) File(field string) (*storage.StoredFile, bool) {
	for _, f := range r.Files {
		if f.FieldName == field {
			return f, true
		}
	}
	return nil, false
}

// New creates a Parser committing accepted files through engine. The
// configuration is validated eagerly: a nil engine, negative limits, or
// conflicting selector rules fail here, before any request is accepted.
func New(engine storage.Engine, opts ...Option) (*Parser, error) {
	if engine == nil {
		return nil, errInvalidConfig("storage engine is required")
	}

	p := &Parser{
		engine: engine,
		sel:    selector.Any(),
		policy: selector.PolicyReject,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.limits.Validate(); err != nil {
		return nil, err
	}
	if err := p.sel.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return p, nil
}

// Parse extracts the boundary from a Content-Type header value and processes
// the body. A missing or malformed boundary fails before any body byte is
// read.
func (p *Parser) Parse(ctx context.Context, contentType string, body io.Reader) (*Result, error) {
	boundary, err := scanner.ExtractBoundary(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return p.ParseBoundary(ctx, boundary, body)
}

// ParseBoundary processes a multipart body with an already known boundary.
// The first unrecoverable error aborts the session: files committed earlier
// in the session are removed and the error is the sole result.
func (p *Parser) ParseBoundary(ctx context.Context, boundary string, body io.Reader) (*Result, error) {
	src := body
	if p.limits.MaxBodySize > 0 {
		src = &bodyLimitReader{src: body, limit: p.limits.MaxBodySize}
	}

	sc, err := scanner.New(src, boundary)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	eng := selector.NewEngine(p.sel, p.policy)
	res := &Result{}
	var fileCount, fieldCount int

	fail := func(err error) (*Result, error) {
		p.cleanup(ctx, res.Files)
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		part, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(p.classify(err))
		}

		if part.IsFile {
			action, serr := eng.EvaluateFile(part.FieldName)
			if serr != nil {
				return fail(mapSelectorError(serr))
			}
			if action == selector.ActionSkip {
				if _, err := io.Copy(io.Discard, part); err != nil {
					return fail(p.classify(err))
				}
				continue
			}

			rule, hasRule := eng.Rule(part.FieldName)

			allow := p.limits.AllowedMIMETypes
			if hasRule && len(rule.AllowedMIMETypes) > 0 {
				allow = rule.AllowedMIMETypes
			}
			if !mimeAllowed(allow, part.ContentType) {
				return fail(MIMETypeError{Field: part.FieldName, ContentType: part.ContentType})
			}

			fileCount++
			if p.limits.MaxFiles > 0 && fileCount > p.limits.MaxFiles {
				return fail(FilesCountError{Limit: p.limits.MaxFiles})
			}

			sizeLimit := p.limits.MaxFileSize
			if hasRule && rule.MaxFileSize > 0 {
				sizeLimit = rule.MaxFileSize
			}
			field := part.FieldName
			limited := &partLimitReader{
				src:   part,
				limit: sizeLimit,
				onLimit: func(limit int64) error {
					return FileSizeError{Field: field, Limit: limit}
				},
			}

			stored, err := p.engine.Store(ctx, storage.FileMeta{
				FieldName:   part.FieldName,
				FileName:    part.FileName,
				ContentType: part.ContentType,
				Index:       part.Index,
			}, limited)
			if err != nil {
				return fail(p.classify(err))
			}
			res.Files = append(res.Files, stored)
			continue
		}

		fieldCount++
		if p.limits.MaxFields > 0 && fieldCount > p.limits.MaxFields {
			return fail(FieldsCountError{Limit: p.limits.MaxFields})
		}

		field := part.FieldName
		limited := &partLimitReader{
			src:   part,
			limit: p.limits.MaxFieldSize,
			onLimit: func(limit int64) error {
				return FieldSizeError{Field: field, Limit: limit}
			},
		}
		value, err := io.ReadAll(limited)
		if err != nil {
			return fail(p.classify(err))
		}
		res.Fields = append(res.Fields, Field{Name: part.FieldName, Value: string(value)})
	}

	if missing := eng.Unsatisfied(); len(missing) > 0 {
		return fail(MissingFieldError{Field: missing[0]})
	}
	return res, nil
}

// cleanup removes every file committed during an aborting session. It is
// best-effort: failures are logged and never override the abort cause. The
// parent context may already be canceled, so cleanup runs detached from it.
func (p *Parser) cleanup(ctx context.Context, files []*storage.StoredFile) {
	ctx = context.WithoutCancel(ctx)
	for _, f := range files {
		if err := p.engine.Remove(ctx, f.Key); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
			p.log.Error("failed to clean up stored file after abort",
				slog.String("key", f.Key),
				slog.String("field", f.FieldName),
				slog.Any("error", err))
		}
	}
}

// classify maps a mid-session failure onto the error taxonomy. Limit and
// context errors keep their identity; scanner failures become parse errors;
// backend failures become storage errors.
func (p *Parser) classify(err error) error {
	switch {
	case errors.Is(err, ErrLimitExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, scanner.ErrMalformedBoundary),
		errors.Is(err, scanner.ErrUnexpectedEOF),
		errors.Is(err, scanner.ErrHeaderTooLarge),
		errors.Is(err, scanner.ErrMissingFieldName),
		errors.Is(err, scanner.ErrMalformedHeader),
		errors.Is(err, scanner.ErrInvalidBoundary):
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	case errors.Is(err, storage.ErrStoreFailed),
		errors.Is(err, storage.ErrFileTooLarge),
		errors.Is(err, storage.ErrOperationTimeout),
		errors.Is(err, storage.ErrOperationCanceled),
		errors.Is(err, storage.ErrAccessDenied),
		errors.Is(err, storage.ErrServiceUnavailable),
		errors.Is(err, storage.ErrBucketNotFound),
		errors.Is(err, storage.ErrInvalidConfig):
		return fmt.Errorf("%w: %w", ErrStorageFailed, err)
	default:
		// Anything else came from the byte source: a truncated or failing
		// transport is a parse-level failure of this session.
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
}

// mapSelectorError rebrands selector violations as this package's typed
// limit errors so callers only ever match against one taxonomy.
func mapSelectorError(err error) error {
	var unexpected selector.UnexpectedFieldError
	if errors.As(err, &unexpected) {
		return UnexpectedFieldError{Field: unexpected.Field}
	}
	var count selector.FieldCountError
	if errors.As(err, &count) {
		return FieldCountError{Field: count.Field, Limit: count.Limit}
	}
	return fmt.Errorf("%w: %w", ErrLimitExceeded, err)
}
