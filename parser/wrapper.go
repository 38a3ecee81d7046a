package parser

import "github.com/dhamidi/sqlgram/grammar"

func (s *session) parseWrapper(e *grammar.Wrapper) Result {
	f := s.stepIn(e)
	b := s.b
	begin := e.Begin.Type

	// a begin token consumed by a plain token element right before us,
	// outside of any open range, is shared
	shared := b.PreviousToken() == begin && !b.IsExplicitRange(begin)
	if r := s.parse(e.Begin); !r.IsMatch() && !shared {
		return s.stepOut(f, NoMatch)
	}

	wasOpen := b.IsExplicitRange(begin)
	b.SetExplicitRange(begin, true)
	defer b.SetExplicitRange(begin, wasOpen)

	inner := s.parse(e.Inner)
	degraded := inner.IsPartial()
	if !inner.IsMatch() && !e.InnerOptional {
		if !e.Strong && b.Token() != e.End.Type {
			return s.stepOut(f, NoMatch)
		}
		b.Expect(e.Inner.First())
		degraded = true
	}

	if r := s.parse(e.End); r.IsMatch() {
		if degraded {
			return s.finish(f, PartialMatch, false)
		}
		return s.stepOut(f, FullMatch)
	}
	b.Expect(e.End.First())
	return s.stepOut(f, PartialMatch)
}
