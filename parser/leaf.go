package parser

import (
	"strings"

	"github.com/dhamidi/sqlgram/grammar"
	"github.com/dhamidi/sqlgram/token"
)

func (s *session) parseToken(e *grammar.Token) Result {
	f := s.stepIn(e)
	b := s.b
	t := b.Token()
	if t == nil || (!e.Type.Matches(t) && !b.IsDummyToken()) {
		return s.stepOut(f, NoMatch)
	}
	if e.Text != "" && !strings.EqualFold(e.Text, b.TokenText()) {
		return s.stepOut(f, NoMatch)
	}

	if t.IsSuppressibleReservedWord() {
		next := b.LookAhead(1)
		dot := s.vocab.Dot()
		if next == dot && !s.isNextToken(e, dot, false) {
			s.wave(t)
			return s.stepOut(f, NoMatch)
		}
		lp := s.vocab.LeftParen()
		if t.IsFunction() && e.Flavor == token.CategoryUnknown && next != lp && s.isNextToken(e, lp, true) {
			s.wave(t)
			return s.stepOut(f, NoMatch)
		}
	}

	b.Advance()
	return s.stepOut(f, FullMatch)
}

func (s *session) parseIdentifier(e *grammar.Identifier) Result {
	f := s.stepIn(e)
	b := s.b
	t := b.Token()
	if t == nil || t.IsChameleon() {
		return s.stepOut(f, NoMatch)
	}

	ok := t.IsIdentifier() || b.IsDummyToken()
	if !ok && t.IsSuppressibleReservedWord() {
		ok = s.isWaved(t) ||
			(e.Definition && !e.Alias) ||
			s.isSuppressible(t, e)
	}
	if !ok {
		return s.stepOut(f, NoMatch)
	}
	b.Advance()
	return s.stepOut(f, FullMatch)
}
