package parser

import (
	"github.com/dhamidi/sqlgram/grammar"
	"github.com/dhamidi/sqlgram/token"
)

func (s *session) parseQualified(e *grammar.QualifiedIdentifier) Result {
	f := s.stepIn(e)
	b := s.b

	v, score, ok := s.pickVariant(e)
	if !ok {
		return s.stepOut(f, NoMatch)
	}

	last := len(v.Leaves) - 1
	for i, leaf := range v.Leaves {
		if r := s.parse(leaf); !r.IsMatch() {
			if b.Offset() == f.start {
				return s.stepOut(f, NoMatch)
			}
			b.Expect(leaf.First())
			return s.stepOut(f, PartialMatch)
		}
		if i < last {
			if r := s.parse(e.Separator); !r.IsMatch() {
				break
			}
		}
		f.cursor++
		f.current = b.Offset()
	}

	if score < len(v.Leaves) {
		b.Expect(e.Separator.First())
		return s.stepOut(f, PartialMatch)
	}
	return s.stepOut(f, FullMatch)
}

// channel scans the upcoming tokens without consuming them and returns
// the shape of the dotted path they form: one entry per path segment. A
// missing segment, before a leading separator, between two separators or
// after a trailing one, shows up as an identifier.
func (s *session) channel(e *grammar.QualifiedIdentifier) []*token.Type {
	b := s.b
	sep := e.Separator.Type
	ident := s.vocab.Identifier()

	var ch []*token.Type
	wasSeparator := true
	for i := 0; len(ch) <= e.MaxLength; i++ {
		t := b.LookAhead(i)
		if t == nil || t.IsChameleon() {
			break
		}
		if t == sep {
			if wasSeparator {
				ch = append(ch, ident)
			}
			wasSeparator = true
		} else {
			if !wasSeparator {
				break
			}
			if t.IsIdentifier() || e.Contains().Has(t) {
				ch = append(ch, t)
			} else {
				ch = append(ch, ident)
			}
			wasSeparator = false
		}
		if next := b.LookAhead(i + 1); (next == nil || next.IsChameleon()) && wasSeparator {
			ch = append(ch, ident)
		}
	}
	return ch
}

// pickVariant scores every variant that fits in the channel by the number
// of segments whose kind it expects. The first variant wins ties.
func (s *session) pickVariant(e *grammar.QualifiedIdentifier) (grammar.Variant, int, bool) {
	ch := s.channel(e)
	best, bestScore, found := grammar.Variant{}, -1, false
	for _, v := range e.Variants {
		if len(v.Leaves) > len(ch) {
			continue
		}
		score := 0
		for i, leaf := range v.Leaves {
			if leaf.TokenType().Matches(ch[i]) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore, found = v, score, true
		}
	}
	return best, bestScore, found
}
