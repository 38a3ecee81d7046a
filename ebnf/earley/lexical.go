package earley

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

func isLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

// isPattern reports whether a lexical production spells out its words.
// Token types without a pattern are exported as a single "<name>" token.
func isPattern(expr ebnf.Expression) bool {
	if t, ok := expr.(*ebnf.Token); ok {
		return !strings.HasPrefix(t.String, "<")
	}
	return true
}

type memoKey struct {
	name   string
	offset int
}

// Lexical matches words against a lexical production. Alternatives and
// repetitions are greedy: the longest alternative wins and a repetition
// consumes as much as it can.
type Lexical struct {
	grammar ebnf.Grammar
	name    string
}

func NewLexical(g ebnf.Grammar, name string) *Lexical {
	return &Lexical{grammar: g, name: name}
}

// Match reports whether the whole of s is a word of the production.
func (l *Lexical) Match(s string) bool {
	m := &matcher{
		grammar:  l.grammar,
		input:    s,
		memo:     make(map[memoKey]int),
		visiting: make(map[memoKey]bool),
	}
	return m.name(l.name, 0) == len(s)
}

type matcher struct {
	grammar  ebnf.Grammar
	input    string
	memo     map[memoKey]int // -1 is no match
	visiting map[memoKey]bool
}

// match returns the length matched by expr at offset, or -1.
func (m *matcher) match(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case *ebnf.Token:
		if strings.HasPrefix(m.input[offset:], e.String) {
			return len(e.String)
		}
		return -1

	case *ebnf.Range:
		return m.matchRange(e.Begin.String, e.End.String, offset)

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n := m.match(item, offset+total)
			if n < 0 {
				return -1
			}
			total += n
		}
		return total

	case ebnf.Alternative:
		best := -1
		for _, alt := range e {
			best = max(best, m.match(alt, offset))
		}
		return best

	case *ebnf.Repetition:
		total := 0
		for {
			n := m.match(e.Body, offset+total)
			if n <= 0 {
				return total
			}
			total += n
		}

	case *ebnf.Option:
		return max(m.match(e.Body, offset), 0)

	case *ebnf.Group:
		return m.match(e.Body, offset)

	case *ebnf.Name:
		return m.name(e.String, offset)
	}
	return -1
}

// name matches a production, memoized per offset. Left recursion fails.
func (m *matcher) name(name string, offset int) int {
	key := memoKey{name: name, offset: offset}
	if n, ok := m.memo[key]; ok {
		return n
	}
	if m.visiting[key] {
		return -1
	}
	prod, ok := m.grammar[name]
	if !ok || prod.Expr == nil {
		m.memo[key] = -1
		return -1
	}

	m.visiting[key] = true
	n := m.match(prod.Expr, offset)
	delete(m.visiting, key)

	m.memo[key] = n
	return n
}

func (m *matcher) matchRange(begin, end string, offset int) int {
	r, size := utf8.DecodeRuneInString(m.input[offset:])
	if size == 0 {
		return -1
	}
	lo, _ := utf8.DecodeRuneInString(begin)
	hi, _ := utf8.DecodeRuneInString(end)
	if r >= lo && r <= hi {
		return size
	}
	return -1
}
