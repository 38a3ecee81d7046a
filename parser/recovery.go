package parser

import (
	"github.com/dhamidi/sqlgram/grammar"
	"github.com/dhamidi/sqlgram/token"
	"github.com/dhamidi/sqlgram/tree"
)

// recoverSequence skips tokens after child f.cursor of seq failed, up to a
// landmark token. It returns the index of a later child that starts with
// the landmark, -1 when the landmark belongs to an enclosing element, or 0
// when the input ran out. Skipped tokens become an error node; when the
// input runs out they are given back instead.
func (s *session) recoverSequence(f *frame, seq *grammar.Sequence) int {
	b := s.b
	b.Expect(seq.FirstFrom(f.cursor))
	m := b.Mark()
	start := b.Offset()
	for t := b.Token(); t != nil && !t.IsChameleon(); t = b.Token() {
		if i := s.landmarkIndex(t, f, seq); i != 0 {
			b.Error(m, tree.RecoveredMessage)
			s.p.stats.recovered(b.Offset() - start)
			return i
		}
		b.Advance()
	}
	b.RollbackTo(m)
	return 0
}

// landmarkIndex decides where parsing can resume at the landmark t.
func (s *session) landmarkIndex(t *token.Type, f *frame, seq *grammar.Sequence) int {
	if !t.IsParserLandmark() {
		return 0
	}
	if st := s.statement(); st != nil && st.element.First().Has(t) {
		return -1
	}
	for i := f.cursor + 1; i < len(seq.Children); i++ {
		if seq.Children[i].Element.First().Has(t) {
			return i
		}
	}
	for i := len(s.frames) - 1; i >= 0; i-- {
		a := s.frames[i]
		if it, ok := a.element.(*grammar.Iteration); ok {
			if it.IsSeparator(t) {
				return -1
			}
			continue
		}
		if as, ok := grammar.AsSequence(a.element); ok && as.StartsFrom(t, a.cursor+1) {
			return -1
		}
	}
	return 0
}

// recoverIteration skips tokens after the body of it failed following a
// separator. It reports whether the iteration has to end: false means a
// separator was reached and the iteration can go on.
func (s *session) recoverIteration(it *grammar.Iteration) bool {
	b := s.b
	b.Expect(it.Body.First())
	m := b.Mark()
	start := b.Offset()
	for t := b.Token(); t != nil && !t.IsChameleon(); t = b.Token() {
		if t.IsParserLandmark() {
			if it.IsSeparator(t) {
				b.Error(m, tree.RecoveredMessage)
				s.p.stats.recovered(b.Offset() - start)
				return false
			}
			if !it.Body.Contains().Has(t) && s.expectedByAncestor(t) {
				b.Error(m, tree.RecoveredMessage)
				s.p.stats.recovered(b.Offset() - start)
				return true
			}
		}
		b.Advance()
	}
	b.RollbackTo(m)
	return true
}

// expectedByAncestor reports whether a sequence on the stack can continue
// with t after its current child.
func (s *session) expectedByAncestor(t *token.Type) bool {
	for i := len(s.frames) - 1; i >= 0; i-- {
		a := s.frames[i]
		if seq, ok := grammar.AsSequence(a.element); ok && seq.StartsFrom(t, a.cursor+1) {
			return true
		}
	}
	return false
}
