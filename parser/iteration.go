package parser

import (
	"github.com/dhamidi/sqlgram/grammar"
	"github.com/dhamidi/sqlgram/tree"
)

func (s *session) parseIteration(e *grammar.Iteration) Result {
	f := s.stepIn(e)
	b := s.b

	r := s.parse(e.Body)
	if !r.IsMatch() {
		return s.stepOut(f, NoMatch)
	}
	if s.isRecursive(f) {
		if e.MatchesMin(1) {
			return s.finish(f, r.Type, false)
		}
		return s.stepOut(f, NoMatch)
	}

	// worst is the weakest repetition so far
	worst := r.Type
	iterations := 0
	separated := len(e.Separators) > 0
	for {
		iterations++

		var trailing tree.Marker
		if separated {
			if e.FollowedBySeparator {
				trailing = b.Mark()
			}
			sep := noMatch
			for _, t := range e.Separators {
				if sep = s.parse(t); sep.IsMatch() {
					break
				}
			}
			if !sep.IsMatch() {
				if e.FollowedBySeparator {
					b.Drop(trailing)
				}
				return s.closing(f, e, iterations, worst)
			}
			f.current = b.Offset()
		}

		before := b.Offset()
		r = s.parse(e.Body)
		if r.IsMatch() {
			if e.FollowedBySeparator {
				b.Drop(trailing)
			}
			if r.IsPartial() {
				worst = PartialMatch
			}
			if !separated && b.Offset() == before {
				return s.closing(f, e, iterations, worst)
			}
			f.current = b.Offset()
			continue
		}

		if !separated {
			return s.closing(f, e, iterations, worst)
		}
		if !e.MatchesMin(iterations) {
			if e.FollowedBySeparator {
				b.Drop(trailing)
			}
			return s.stepOut(f, NoMatch)
		}
		if e.FollowedBySeparator {
			// the separator belongs to whatever follows the iteration
			b.RollbackTo(trailing)
			return s.finish(f, worst, false)
		}
		if s.recoverIteration(e) {
			return s.finish(f, PartialMatch, false)
		}
		worst = PartialMatch
	}
}

// closing ends an iteration after n repetitions. Too few repetitions fail
// the iteration, a count outside the allowed ones makes it partial.
func (s *session) closing(f *frame, e *grammar.Iteration, n int, worst MatchType) Result {
	switch {
	case !e.MatchesMin(n):
		return s.stepOut(f, NoMatch)
	case !e.MatchesCount(n):
		return s.stepOut(f, PartialMatch)
	}
	return s.finish(f, worst, false)
}
