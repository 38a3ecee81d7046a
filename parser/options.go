package parser

import "github.com/tliron/commonlog"

// DefaultMaxDepth bounds the number of nested strategy invocations.
const DefaultMaxDepth = 512

type Option func(*Parser)

func WithLogger(log commonlog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// WithTrace logs every strategy entry and exit at debug level.
func WithTrace() Option {
	return func(p *Parser) {
		p.trace = true
	}
}

// WithLanguageVersion disables grammar children introduced after version.
// Zero enables everything.
func WithLanguageVersion(version int) Option {
	return func(p *Parser) {
		p.version = version
	}
}

func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// WithStats collects counters about every parse into s.
func WithStats(s *Stats) Option {
	return func(p *Parser) {
		p.stats = s
	}
}
