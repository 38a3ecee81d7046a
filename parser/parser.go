// Package parser executes a grammar against a token stream.
//
// Each element kind has a strategy. Strategies call each other
// recursively through a session that owns the frame stack and the token
// cursor, open a marker on entry and resolve it on exit: a failed match is
// rolled back so the cursor never moves, a successful one leaves a node
// (for named elements, blocks and leaves) or transparent content (for
// anonymous composites) behind.
//
// Syntax errors are not Go errors. A strategy that starts matching and
// then gets stuck reports a PartialMatch and records the tokens it
// expected; sequences and iterations skip ahead to landmark tokens and
// keep going.
package parser

import (
	"context"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/sqlgram/grammar"
	"github.com/dhamidi/sqlgram/token"
	"github.com/dhamidi/sqlgram/tree"
)

// Builder is the token cursor and tree builder the strategies drive. It
// is implemented by *tree.Builder.
type Builder interface {
	Vocabulary() *token.Vocabulary

	Token() *token.Type
	TokenText() string
	LookAhead(n int) *token.Type
	PreviousToken() *token.Type
	EOF() bool
	Offset() int
	IsDummyToken() bool

	Advance()
	Mark() tree.Marker
	MarkAndAdvance() tree.Marker
	Done(m tree.Marker, e grammar.Element)
	Error(m tree.Marker, message string)
	Drop(m tree.Marker)
	RollbackTo(m tree.Marker)

	Expect(set token.Set)
	IsExplicitRange(t *token.Type) bool
	SetExplicitRange(t *token.Type, open bool)
}

var _ Builder = (*tree.Builder)(nil)

// Parser runs a root element. It holds no per-parse state, so a Parser
// may be used from several goroutines, each with its own Builder. A Stats
// passed through WithStats is shared by all of them.
type Parser struct {
	root     grammar.Element
	log      commonlog.Logger
	trace    bool
	version  int
	maxDepth int
	stats    *Stats
}

func New(root grammar.Element, opts ...Option) *Parser {
	p := &Parser{
		root:     root,
		log:      commonlog.GetLogger("sqlgram.parser"),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse runs root once from the current position of b.
func Parse(root grammar.Element, b Builder, opts ...Option) Result {
	return New(root, opts...).Parse(b)
}

// ParseAll runs root repeatedly until the input is consumed.
func ParseAll(ctx context.Context, root grammar.Element, b Builder, opts ...Option) (Result, error) {
	return New(root, opts...).ParseAll(ctx, b)
}

func (p *Parser) Parse(b Builder) Result {
	s := p.newSession(b)
	start := b.Offset()
	r := s.parse(p.root)
	p.log.Debugf("parsed %s from %d: %s", p.root, start, r)
	return r
}

// ParseAll runs the root element until the input is exhausted. Tokens the
// root cannot consume are turned into error nodes one at a time, chameleon
// tokens between root invocations are passed through. The
// context is only checked between root invocations, never in the middle
// of one. The returned result covers the whole input: FullMatch only when
// every root invocation matched fully and no token had to be skipped.
func (p *Parser) ParseAll(ctx context.Context, b Builder) (Result, error) {
	total := Result{Type: FullMatch}
	for !b.EOF() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if b.Token().IsChameleon() {
			// embedded blocks belong to another language and are kept as is
			b.Drop(b.MarkAndAdvance())
			total = total.Add(Result{Type: FullMatch, Tokens: 1})
			continue
		}
		s := p.newSession(b)
		r := s.parse(p.root)
		if r.IsMatch() && r.Tokens > 0 {
			total = total.Add(r)
			continue
		}
		p.log.Debugf("skipping unparsable token %q at %d", b.TokenText(), b.Offset())
		m := b.MarkAndAdvance()
		b.Error(m, tree.RecoveredMessage)
		total = total.Add(Result{Type: PartialMatch, Tokens: 1})
	}
	return total, nil
}

// session is the state of one root invocation.
type session struct {
	p      *Parser
	b      Builder
	vocab  *token.Vocabulary
	frames []*frame

	lastLeaf grammar.Leaf
	waved    *token.Type
	wavedAt  int
}

func (p *Parser) newSession(b Builder) *session {
	return &session{p: p, b: b, vocab: b.Vocabulary(), wavedAt: -1}
}

// parse dispatches e to the strategy of its kind.
func (s *session) parse(e grammar.Element) Result {
	if len(s.frames) >= s.p.maxDepth {
		s.p.log.Warningf("depth limit %d reached at %s, offset %d", s.p.maxDepth, e, s.b.Offset())
		return noMatch
	}
	s.p.stats.invoked(e.Kind(), len(s.frames)+1)

	switch e := e.(type) {
	case *grammar.Token:
		return s.parseToken(e)
	case *grammar.Identifier:
		return s.parseIdentifier(e)
	case *grammar.QualifiedIdentifier:
		return s.parseQualified(e)
	case *grammar.Named:
		return s.parseSequence(e, &e.Sequence)
	case *grammar.Block:
		return s.parseSequence(e, &e.Sequence)
	case *grammar.Sequence:
		return s.parseSequence(e, e)
	case *grammar.Iteration:
		return s.parseIteration(e)
	case *grammar.OneOf:
		return s.parseOneOf(e)
	case *grammar.Wrapper:
		return s.parseWrapper(e)
	}
	panic("parser: unknown element kind " + e.Kind().String())
}

// available reports whether a child exists in the configured language
// version.
func (s *session) available(c grammar.Child) bool {
	return s.p.version == 0 || c.Version <= s.p.version
}

func (s *session) wave(t *token.Type) {
	s.waved = t
	s.wavedAt = s.b.Offset()
}

// isWaved reports whether t was disqualified as a keyword at the current
// position.
func (s *session) isWaved(t *token.Type) bool {
	return t != nil && s.waved == t && s.wavedAt == s.b.Offset()
}
