package parser

import (
	"github.com/dhamidi/sqlgram/grammar"
	"github.com/dhamidi/sqlgram/token"
)

// shouldParse is the lookahead check run before invoking e: the current
// token must be able to start e, be the dummy token, or be a reserved word
// that may act as an identifier here.
func (s *session) shouldParse(e grammar.Element) bool {
	t := s.b.Token()
	if t == nil || t.IsChameleon() {
		return false
	}
	if s.b.IsDummyToken() || e.First().Has(t) {
		return true
	}
	// a word waved off as a keyword at this offset is an identifier now
	if s.isWaved(t) && e.First().Has(s.vocab.Identifier()) {
		return true
	}
	return s.isSuppressible(t, e)
}

// isSuppressible reports whether the reserved word t may stand in for an
// identifier when e is parsed at the current position.
func (s *session) isSuppressible(t *token.Type, e grammar.Element) bool {
	if !t.IsSuppressibleReservedWord() {
		return false
	}
	b := s.b
	dot := s.vocab.Dot()
	if b.PreviousToken() == dot || b.LookAhead(1) == dot {
		return true
	}

	if t.IsFunction() && b.LookAhead(1) != s.vocab.LeftParen() {
		if _, ok := e.(grammar.Leaf); ok {
			return !s.isNextToken(e, s.vocab.LeftParen(), true)
		}
	}

	if named := s.enclosingNamed(); named != nil && named.Contains().Has(t) {
		return s.lastLeaf != nil && !s.lastLeaf.Follow().Has(t)
	}
	if s.lastLeaf != nil && s.lastLeaf.Follow().Has(t) {
		return false
	}
	return true
}

// isNextToken reports whether t may come right after e in the current
// path. With required set, t must be the mandatory start of what comes
// next. e is either the innermost frame's element or a child about to be
// invoked from it.
func (s *session) isNextToken(e grammar.Element, t *token.Type, required bool) bool {
	i := len(s.frames) - 1
	if i >= 0 && s.frames[i].element == e {
		i--
	}
	inner := e
	for ; i >= 0; i-- {
		f := s.frames[i]
		switch el := f.element.(type) {
		case *grammar.Iteration:
			if len(el.Separators) == 0 && el.Body.First().Has(t) && !required {
				return true
			}
			if el.IsSeparator(t) && !required {
				return true
			}
		case *grammar.QualifiedIdentifier:
			if inner == el.Separator {
				return false
			}
			if t == el.Separator.Type {
				return true
			}
		case *grammar.Wrapper:
			if inner == el.Begin {
				next := el.Inner.First()
				if required {
					next = el.Inner.FirstRequired()
				}
				return next.Has(t) || (el.InnerOptional && el.End.Type == t)
			}
			return el.End.Type == t
		default:
			seq, ok := grammar.AsSequence(f.element)
			if !ok {
				break
			}
			for j := f.cursor + 1; j < len(seq.Children); j++ {
				ch := seq.Children[j]
				if !s.available(ch) {
					continue
				}
				if required {
					if !ch.Optional && ch.Element.FirstRequired().Has(t) {
						return true
					}
				} else if ch.Element.First().Has(t) {
					return true
				}
				if !ch.Optional {
					return false
				}
			}
		}
		inner = f.element
	}
	return false
}
