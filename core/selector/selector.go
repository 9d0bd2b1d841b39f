package selector

import (
	"fmt"
	"sort"
)

type kind int

const (
	kindAny kind = iota
	kindNone
	kindSingle
	kindArray
	kindFields
)

// Policy controls how the engine treats a file field that matches no rule.
type Policy int

const (
	// PolicyReject fails the session on an unmatched file field. This is the
	// default: silently dropping a part the caller never asked for hides
	// client bugs and returns a result set the caller did not request.
	PolicyReject Policy = iota
	// PolicyIgnore drains and skips unmatched file fields.
	PolicyIgnore
)

// Action is the engine's verdict for an incoming file part.
type Action int

const (
	// ActionAccept admits the part into the pipeline.
	ActionAccept Action = iota
	// ActionSkip drains the part without storing it.
	ActionSkip
)

// Field is one named rule. The zero MaxCount means unlimited occurrences.
// AllowedMIMETypes and MaxFileSize, when set, override the session-wide
// limits for parts matched by this rule.
type Field struct {
	Name             string
	MaxCount         int
	MinCount         int
	AllowedMIMETypes []string
	MaxFileSize      int64
}

// Selector describes the accepted shape of a form. Immutable after
// construction; validate once, share across sessions.
type Selector struct {
	kind   kind
	fields []Field
}

// Single accepts at most one file under the named field.
func Single(name string) Selector {
	return Selector{kind: kindSingle, fields: []Field{{Name: name, MaxCount: 1}}}
}

// Array accepts up to maxCount files under the named field.
func Array(name string, maxCount int) Selector {
	return Selector{kind: kindArray, fields: []Field{{Name: name, MaxCount: maxCount}}}
}

// Fields accepts a fixed set of named rules.
func Fields(fields ...Field) Selector {
	return Selector{kind: kindFields, fields: fields}
}

// None rejects every file-bearing part.
func None() Selector {
	return Selector{kind: kindNone}
}

// Any accepts files under any field name. This is the permissive default.
func Any() Selector {
	return Selector{kind: kindAny}
}

// Validate checks the selector for conflicting or nonsensical rules.
func (s Selector) Validate() error {
	seen := make(map[string]struct{}, len(s.fields))
	for _, f := range s.fields {
		if f.Name == "" {
			return ErrEmptyFieldName
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		seen[f.Name] = struct{}{}

		if (s.kind == kindSingle || s.kind == kindArray) && f.MaxCount <= 0 {
			return fmt.Errorf("%w: field %q", ErrInvalidMaxCount, f.Name)
		}
		if f.MaxCount < 0 {
			return fmt.Errorf("%w: field %q", ErrInvalidMaxCount, f.Name)
		}
		if f.MinCount < 0 || (f.MaxCount > 0 && f.MinCount > f.MaxCount) {
			return fmt.Errorf("%w: field %q", ErrInvalidMinCount, f.Name)
		}
		if f.MaxFileSize < 0 {
			return fmt.Errorf("%w: field %q has negative max file size", ErrInvalidMaxCount, f.Name)
		}
	}
	return nil
}

// Engine applies a selector to one parse session. It is not safe for
// concurrent use; a session owns its engine exclusively.
type Engine struct {
	sel    Selector
	policy Policy
	rules  map[string]Field
	counts map[string]int
}

// NewEngine creates a per-session engine with fresh occurrence counters.
func NewEngine(sel Selector, policy Policy) *Engine {
	rules := make(map[string]Field, len(sel.fields))
	for _, f := range sel.fields {
		rules[f.Name] = f
	}
	return &Engine{
		sel:    sel,
		policy: policy,
		rules:  rules,
		counts: make(map[string]int),
	}
}

// EvaluateFile applies the rules to an incoming file part and records the
// occurrence when the part is accepted. Exact-name rules take priority; an
// unmatched field falls through to the unknown-field policy.
func (e *Engine) EvaluateFile(field string) (Action, error) {
	if e.sel.kind == kindAny {
		return ActionAccept, nil
	}

	rule, ok := e.rules[field]
	if !ok {
		if e.policy == PolicyIgnore {
			return ActionSkip, nil
		}
		return ActionSkip, UnexpectedFieldError{Field: field}
	}

	next := e.counts[field] + 1
	if rule.MaxCount > 0 && next > rule.MaxCount {
		return ActionSkip, FieldCountError{Field: field, Limit: rule.MaxCount}
	}
	e.counts[field] = next
	return ActionAccept, nil
}

// Rule returns the exact-name rule for a field, for per-rule limit overrides.
func (e *Engine) Rule(field string) (Field, bool) {
	rule, ok := e.rules[field]
	return rule, ok
}

// Unsatisfied returns the names of rules whose minimum occurrence count was
// not reached, in deterministic order.
func (e *Engine) Unsatisfied() []string {
	var missing []string
	for name, rule := range e.rules {
		if rule.MinCount > 0 && e.counts[name] < rule.MinCount {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
