package multiform

import (
	"log/slog"

	"github.com/dmitrymomot/multiform/core/selector"
)

// Option configures a Parser.
type Option func(*Parser)

// WithLimits sets the session limits. Zero-valued fields remain unlimited.
func WithLimits(limits Limits) Option {
	return func(p *Parser) {
		p.limits = limits
	}
}

// WithSelector sets the accepted form shape. The default accepts any field.
func WithSelector(sel selector.Selector) Option {
	return func(p *Parser) {
		p.sel = sel
	}
}

// WithUnknownFieldPolicy controls whether a file field matching no rule
// aborts the session (default) or is drained and skipped.
func WithUnknownFieldPolicy(policy selector.Policy) Option {
	return func(p *Parser) {
		p.policy = policy
	}
}

// WithLogger sets the logger used to record best-effort cleanup failures
// during session aborts. The default discards.
func WithLogger(log *slog.Logger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}
