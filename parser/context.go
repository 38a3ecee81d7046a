package parser

import (
	"strings"

	"github.com/dhamidi/sqlgram/grammar"
	"github.com/dhamidi/sqlgram/internal/invariant"
	"github.com/dhamidi/sqlgram/tree"
)

// frame is one active strategy invocation.
type frame struct {
	element grammar.Element
	marker  tree.Marker
	// start is the offset the invocation began at.
	start int
	// cursor is the index of the child being parsed, for sequences and
	// qualified identifiers.
	cursor int
	// current is the offset after the last completed child or separator.
	current int
}

func (s *session) stepIn(e grammar.Element) *frame {
	f := &frame{
		element: e,
		marker:  s.b.Mark(),
		start:   s.b.Offset(),
		current: s.b.Offset(),
	}
	s.frames = append(s.frames, f)
	if s.p.trace {
		s.p.log.Debugf("%s> %s @%d", s.indent(), e, f.start)
	}
	return f
}

// stepOut pops f and resolves its marker according to t. A partial match
// records what could have followed the last matched leaf.
func (s *session) stepOut(f *frame, t MatchType) Result {
	return s.finish(f, t, t == PartialMatch)
}

func (s *session) finish(f *frame, t MatchType, expect bool) Result {
	n := len(s.frames)
	invariant.Precondition(n > 0 && s.frames[n-1] == f, "step out of %s which is not the innermost frame", f.element)

	b := s.b
	if expect {
		var at grammar.Element = f.element
		if s.lastLeaf != nil {
			at = s.lastLeaf
		}
		b.Expect(at.Follow())
	}

	switch {
	case t == NoMatch:
		b.RollbackTo(f.marker)
		s.p.stats.rolledBack()
	case producesNode(f.element):
		b.Done(f.marker, f.element)
	default:
		b.Drop(f.marker)
	}

	r := Result{Type: t}
	if t != NoMatch {
		r.Tokens = b.Offset() - f.start
		if leaf, ok := f.element.(grammar.Leaf); ok {
			s.lastLeaf = leaf
		}
	}
	invariant.Postcondition(t != NoMatch || b.Offset() == f.start,
		"%s: no match left the cursor at %d, started at %d", f.element, b.Offset(), f.start)
	invariant.Postcondition(r.Tokens >= 0, "%s: cursor moved backwards", f.element)

	s.frames = s.frames[:n-1]
	if s.p.trace {
		s.p.log.Debugf("%s< %s: %s", s.indent(), f.element, r)
	}
	return r
}

// producesNode reports whether a match of e is recorded as a tree node.
// Anonymous composites only contribute their children.
func producesNode(e grammar.Element) bool {
	switch e.(type) {
	case *grammar.Named, *grammar.Block, *grammar.Token, *grammar.Identifier, *grammar.QualifiedIdentifier:
		return true
	}
	return false
}

func (s *session) indent() string {
	return strings.Repeat("  ", len(s.frames))
}

// top returns the innermost frame.
func (s *session) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// statement returns the innermost frame of a statement element.
func (s *session) statement() *frame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].element.Is(grammar.Statement) {
			return s.frames[i]
		}
	}
	return nil
}

// enclosingNamed returns the innermost named element on the stack.
func (s *session) enclosingNamed() grammar.Element {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if n, ok := s.frames[i].element.(*grammar.Named); ok {
			return n
		}
	}
	return nil
}

// reentries counts the active invocations of e that started at offset.
func (s *session) reentries(e grammar.Element, offset int) int {
	n := 0
	for _, f := range s.frames {
		if f.element == e && f.start == offset {
			n++
		}
	}
	return n
}

// isRecursive reports whether an ancestor of f is the same element
// started at the same offset.
func (s *session) isRecursive(f *frame) bool {
	for _, a := range s.frames {
		if a == f {
			return false
		}
		if a.element == f.element && a.start == f.start {
			return true
		}
	}
	return false
}
