package parser

import (
	"github.com/dhamidi/sqlgram/grammar"
)

// parseSequence runs the children of seq in order. e is the element that
// owns seq: the sequence itself, a named element or a block.
func (s *session) parseSequence(e grammar.Element, seq *grammar.Sequence) Result {
	b := s.b
	switch e.(type) {
	case *grammar.Named, *grammar.Block:
		// a production may re-enter itself at the same offset once
		if s.reentries(e, b.Offset()) >= 2 {
			return noMatch
		}
	}

	f := s.stepIn(e)
	t := b.Token()
	if t == nil || t.IsChameleon() || !s.shouldParse(e) {
		return s.stepOut(f, NoMatch)
	}

	matches := 0
	degraded := false
	for f.cursor < len(seq.Children) {
		i := f.cursor
		ch := seq.Children[i]

		if t == nil || t.IsChameleon() {
			switch {
			case i == 0 || seq.IsExitIndex(i):
				return s.stepOut(f, NoMatch)
			case ch.Optional && seq.OptionalFrom(i):
				return s.complete(f, degraded)
			}
			return s.stepOut(f, PartialMatch)
		}

		if s.available(ch) {
			r := noMatch
			if s.shouldParse(ch.Element) {
				r = s.parse(ch.Element)
				if r.IsMatch() {
					matches++
					degraded = degraded || r.IsPartial()
					t = b.Token()
				}
			}

			if !r.IsMatch() && !ch.Optional {
				matched := b.Offset() - f.start
				weak := matches < 2 && matched < 3 && i > 1 && startsWithReference(seq)
				if i == 0 || seq.IsExitIndex(i) || weak || matches == 0 {
					return s.stepOut(f, NoMatch)
				}

				next := s.recoverSequence(f, seq)
				if next <= 0 {
					return s.stepOut(f, PartialMatch)
				}
				t = b.Token()
				f.cursor = next
				degraded = true
				continue
			}
		}

		if i == len(seq.Children)-1 {
			if matches == 0 {
				return s.stepOut(f, NoMatch)
			}
			return s.complete(f, degraded)
		}
		f.cursor++
		f.current = b.Offset()
	}
	return s.stepOut(f, NoMatch)
}

// complete ends a sequence that reached its end. A sequence that skipped
// tokens or contains a partial child is partial too, but its errors have
// already been reported.
func (s *session) complete(f *frame, degraded bool) Result {
	if degraded {
		return s.finish(f, PartialMatch, false)
	}
	return s.stepOut(f, FullMatch)
}

// startsWithReference reports whether the first child of seq is an
// identifier reference. A short match of such a sequence is too weak to
// justify error recovery.
func startsWithReference(seq *grammar.Sequence) bool {
	id, ok := seq.Children[0].Element.(*grammar.Identifier)
	return ok && !id.Definition
}
