// Package earley recognizes token streams with an EBNF grammar in the
// dialect of golang.org/x/exp/ebnf. It is used to check that a grammar's
// EBNF export accepts what the parser accepts.
package earley

import (
	"fmt"
	"strings"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/sqlgram/token"
)

// symbol is either a nonterminal (nt >= 0) or a terminal.
type symbol struct {
	nt   int
	term *terminal
}

// terminal matches a single token, by literal for quoted EBNF tokens or
// by type for lexical productions.
type terminal struct {
	literal string
	lexical string
	typ     *token.Type
}

func (t *terminal) String() string {
	if t.typ != nil {
		return t.lexical
	}
	return fmt.Sprintf("%q", t.literal)
}

type rule struct {
	lhs int
	rhs []symbol
}

type item struct {
	rule   int
	dot    int
	origin int
}

// Recognizer is an Earley recognizer compiled from an EBNF grammar. EBNF
// options, repetitions and groups are rewritten into plain rules. It is
// immutable after New and safe for concurrent use.
type Recognizer struct {
	grammar  ebnf.Grammar
	start    int
	names    []string
	rules    []rule
	byLHS    [][]int
	nullable []bool
	lexicals map[string]*Lexical
}

// Error reports the first token the grammar could not accept.
type Error struct {
	Pos      token.Position
	Found    string
	Expected []string
}

func (e *Error) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("%s: unexpected end of input, expected one of: %s", e.Pos, strings.Join(e.Expected, ", "))
	}
	return fmt.Sprintf("%s: unexpected %q, expected one of: %s", e.Pos, e.Found, strings.Join(e.Expected, ", "))
}

// New compiles g from the start production. Names beginning with a lower
// case letter are lexical productions; each must name a token type of
// vocab, compared case-insensitively with the type's ID.
func New(g ebnf.Grammar, start string, vocab *token.Vocabulary) (*Recognizer, error) {
	if _, ok := g[start]; !ok {
		return nil, fmt.Errorf("earley: no start production %q", start)
	}
	c := &compiler{
		r: &Recognizer{
			grammar:  g,
			lexicals: make(map[string]*Lexical),
		},
		ids:   make(map[string]int),
		types: make(map[string]*token.Type),
	}
	for _, t := range vocab.Types() {
		c.types[strings.ToLower(t.ID)] = t
	}
	c.r.start = c.nonterminal(start)
	if err := c.err; err != nil {
		return nil, err
	}
	c.r.computeNullable()
	return c.r, nil
}

type compiler struct {
	r     *Recognizer
	ids   map[string]int
	types map[string]*token.Type
	err   error
}

func (c *compiler) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf("earley: "+format, args...)
	}
}

func (c *compiler) fresh(name string) int {
	id := len(c.r.names)
	c.r.names = append(c.r.names, name)
	c.r.byLHS = append(c.r.byLHS, nil)
	return id
}

func (c *compiler) addRule(lhs int, rhs []symbol) {
	c.r.byLHS[lhs] = append(c.r.byLHS[lhs], len(c.r.rules))
	c.r.rules = append(c.r.rules, rule{lhs: lhs, rhs: rhs})
}

// nonterminal returns the id of a named production, compiling it on first
// use.
func (c *compiler) nonterminal(name string) int {
	if id, ok := c.ids[name]; ok {
		return id
	}
	prod, ok := c.r.grammar[name]
	if !ok || prod.Expr == nil {
		c.fail("undefined production %s", name)
		return c.fresh(name)
	}
	id := c.fresh(name)
	c.ids[name] = id
	c.alternatives(id, prod.Expr)
	return id
}

func (c *compiler) alternatives(lhs int, expr ebnf.Expression) {
	if alt, ok := expr.(ebnf.Alternative); ok {
		for _, e := range alt {
			c.addRule(lhs, c.sequence(e))
		}
		return
	}
	c.addRule(lhs, c.sequence(expr))
}

func (c *compiler) sequence(expr ebnf.Expression) []symbol {
	seq, ok := expr.(ebnf.Sequence)
	if !ok {
		return []symbol{c.symbol(expr)}
	}
	out := make([]symbol, 0, len(seq))
	for _, e := range seq {
		out = append(out, c.symbol(e))
	}
	return out
}

func (c *compiler) symbol(expr ebnf.Expression) symbol {
	switch e := expr.(type) {
	case *ebnf.Name:
		if isLexical(e.String) {
			return symbol{nt: -1, term: c.lexical(e.String)}
		}
		return symbol{nt: c.nonterminal(e.String)}
	case *ebnf.Token:
		return symbol{nt: -1, term: &terminal{literal: e.String}}
	case *ebnf.Group:
		return c.symbol(e.Body)
	case ebnf.Sequence, ebnf.Alternative:
		id := c.fresh("(...)")
		c.alternatives(id, e)
		return symbol{nt: id}
	case *ebnf.Option:
		// N = body | .
		id := c.fresh("[...]")
		c.alternatives(id, e.Body)
		c.addRule(id, nil)
		return symbol{nt: id}
	case *ebnf.Repetition:
		// N = N body | .
		id := c.fresh("{...}")
		c.addRule(id, append([]symbol{{nt: id}}, c.sequence(e.Body)...))
		c.addRule(id, nil)
		return symbol{nt: id}
	case *ebnf.Range:
		c.fail("%s: character range outside of a lexical production", e.Pos())
	default:
		c.fail("%s: unsupported expression %T", expr.Pos(), expr)
	}
	return symbol{nt: -1, term: &terminal{}}
}

func (c *compiler) lexical(name string) *terminal {
	t, ok := c.types[name]
	if !ok {
		c.fail("lexical production %s names no token type", name)
		return &terminal{lexical: name}
	}
	if _, seen := c.r.lexicals[name]; !seen {
		if prod, ok := c.r.grammar[name]; ok && prod.Expr != nil && isPattern(prod.Expr) {
			c.r.lexicals[name] = NewLexical(c.r.grammar, name)
		} else {
			c.r.lexicals[name] = nil
		}
	}
	return &terminal{lexical: name, typ: t}
}

func (r *Recognizer) computeNullable() {
	r.nullable = make([]bool, len(r.names))
	for changed := true; changed; {
		changed = false
		for _, rl := range r.rules {
			if r.nullable[rl.lhs] {
				continue
			}
			all := true
			for _, s := range rl.rhs {
				if s.nt < 0 || !r.nullable[s.nt] {
					all = false
					break
				}
			}
			if all {
				r.nullable[rl.lhs] = true
				changed = true
			}
		}
	}
}

// matches reports whether tok is accepted by t. A token of a lexical
// production's own type must also spell a word of its pattern, when the
// production has one.
func (r *Recognizer) matches(t *terminal, tok token.Token) bool {
	if t.typ == nil {
		return t.literal != "" && tok.Type.Value != "" && strings.EqualFold(tok.Type.Value, t.literal)
	}
	if !tok.Type.Matches(t.typ) {
		return false
	}
	if lx := r.lexicals[t.lexical]; lx != nil && tok.Type == t.typ {
		return lx.Match(strings.ToLower(tok.Literal))
	}
	return true
}

// Recognize reports whether the significant tokens of tokens form a
// sentence of the grammar. Trivia and chameleon tokens are skipped.
func (r *Recognizer) Recognize(tokens []token.Token) error {
	input := make([]token.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type.IsTrivia() || tok.Type.IsChameleon() {
			continue
		}
		input = append(input, tok)
	}

	chart := make([]*itemSet, len(input)+1)
	for i := range chart {
		chart[i] = newItemSet()
	}
	for _, ri := range r.byLHS[r.start] {
		chart[0].add(item{rule: ri, origin: 0})
	}

	for i := 0; i <= len(input); i++ {
		set := chart[i]
		if len(set.items) == 0 {
			return r.errorAt(input, chart, i-1)
		}
		for j := 0; j < len(set.items); j++ {
			it := set.items[j]
			rl := r.rules[it.rule]
			if it.dot == len(rl.rhs) {
				r.complete(chart, i, it)
				continue
			}
			next := rl.rhs[it.dot]
			if next.nt >= 0 {
				for _, ri := range r.byLHS[next.nt] {
					set.add(item{rule: ri, origin: i})
				}
				if r.nullable[next.nt] {
					set.add(item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
				}
				continue
			}
			if i < len(input) && r.matches(next.term, input[i]) {
				chart[i+1].add(item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
			}
		}
	}

	for _, it := range chart[len(input)].items {
		rl := r.rules[it.rule]
		if rl.lhs == r.start && it.origin == 0 && it.dot == len(rl.rhs) {
			return nil
		}
	}
	return r.errorAt(input, chart, len(input))
}

func (r *Recognizer) complete(chart []*itemSet, i int, done item) {
	lhs := r.rules[done.rule].lhs
	origin := chart[done.origin]
	for k := 0; k < len(origin.items); k++ {
		it := origin.items[k]
		rl := r.rules[it.rule]
		if it.dot < len(rl.rhs) && rl.rhs[it.dot].nt == lhs {
			chart[i].add(item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
		}
	}
}

// errorAt builds the error for input position i from the terminals the
// items of chart[i] were waiting for.
func (r *Recognizer) errorAt(input []token.Token, chart []*itemSet, i int) error {
	seen := make(map[string]bool)
	var expected []string
	for _, it := range chart[i].items {
		rl := r.rules[it.rule]
		if it.dot >= len(rl.rhs) || rl.rhs[it.dot].nt >= 0 {
			continue
		}
		name := rl.rhs[it.dot].term.String()
		if !seen[name] {
			seen[name] = true
			expected = append(expected, name)
		}
	}
	e := &Error{Expected: expected}
	switch {
	case i < len(input):
		e.Pos = input[i].Span.Start
		e.Found = input[i].Literal
	case len(input) > 0:
		e.Pos = input[len(input)-1].Span.End
	}
	return e
}

type itemSet struct {
	items []item
	seen  map[item]bool
}

func newItemSet() *itemSet {
	return &itemSet{seen: make(map[item]bool)}
}

func (s *itemSet) add(it item) {
	if s.seen[it] {
		return
	}
	s.seen[it] = true
	s.items = append(s.items, it)
}
