package parser

import "github.com/dhamidi/sqlgram/grammar"

// parseOneOf returns the first alternative that matches. Sortable one-ofs
// were put in priority order when the grammar was built.
func (s *session) parseOneOf(e *grammar.OneOf) Result {
	f := s.stepIn(e)
	t := s.b.Token()
	if t == nil || t.IsChameleon() {
		return s.stepOut(f, NoMatch)
	}
	for _, ch := range e.Children {
		if !s.available(ch) || !s.shouldParse(ch.Element) {
			continue
		}
		if r := s.parse(ch.Element); r.IsMatch() {
			return s.finish(f, r.Type, false)
		}
	}
	return s.stepOut(f, NoMatch)
}
