// Package tree turns parser decisions into a concrete syntax tree.
//
// A Builder is the token cursor the parser walks. Parsing strategies open
// markers, advance over tokens and then resolve each marker exactly once:
// Done turns it into a node, Drop discards the marker but keeps its
// content, RollbackTo rewinds the cursor and forgets everything recorded
// since the marker was opened, and Error turns it into an error node.
package tree

import (
	"fmt"
	"sort"

	"github.com/dhamidi/sqlgram/grammar"
	"github.com/dhamidi/sqlgram/internal/invariant"
	"github.com/dhamidi/sqlgram/token"
)

type Option func(*Builder)

// WithDummyText sets the text of the completion placeholder token. A token
// with this text matches any expected token.
func WithDummyText(text string) Option {
	return func(b *Builder) {
		b.dummyText = text
	}
}

// WithFile sets the file name used for positions past the last token.
func WithFile(name string) Option {
	return func(b *Builder) {
		b.file = name
	}
}

// Marker is a handle to an open span. It must be resolved exactly once.
type Marker struct {
	id    int
	pos   int
	event int
}

type eventKind uint8

const (
	evOpen eventKind = iota
	evClose
	evToken
	evExpect
)

type event struct {
	kind      eventKind
	pos       int
	element   grammar.Element
	message   string
	expected  token.Set
	tombstone bool
}

// Builder is a cursor over the significant tokens of a source together
// with the marker and diagnostic state of one parse.
type Builder struct {
	vocab     *token.Vocabulary
	tokens    []token.Token
	pos       int
	file      string
	dummyText string

	events     []event
	open       []Marker
	nextID     int
	lastExpect int

	explicit map[*token.Type]bool
}

// New returns a builder over tokens. Whitespace and comments are skipped.
func New(tokens []token.Token, vocab *token.Vocabulary, opts ...Option) *Builder {
	b := &Builder{
		vocab:      vocab,
		lastExpect: -1,
		explicit:   make(map[*token.Type]bool),
	}
	for _, tok := range tokens {
		if !tok.Type.IsTrivia() {
			b.tokens = append(b.tokens, tok)
		}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) Vocabulary() *token.Vocabulary { return b.vocab }

// Tokens returns the significant tokens.
func (b *Builder) Tokens() []token.Token { return b.tokens }

// Token returns the type of the current token, or nil at end of input.
func (b *Builder) Token() *token.Type {
	return b.LookAhead(0)
}

func (b *Builder) TokenText() string {
	if b.pos >= len(b.tokens) {
		return ""
	}
	return b.tokens[b.pos].Literal
}

// LookAhead returns the type of the token n positions after the current
// one, or nil past the end of input.
func (b *Builder) LookAhead(n int) *token.Type {
	i := b.pos + n
	if i < 0 || i >= len(b.tokens) {
		return nil
	}
	return b.tokens[i].Type
}

// PreviousToken returns the type of the token before the current one.
func (b *Builder) PreviousToken() *token.Type {
	return b.LookAhead(-1)
}

func (b *Builder) EOF() bool {
	return b.pos >= len(b.tokens)
}

// Offset is the index of the current token.
func (b *Builder) Offset() int {
	return b.pos
}

func (b *Builder) IsDummyToken() bool {
	return b.dummyText != "" && b.TokenText() == b.dummyText
}

func (b *Builder) Advance() {
	if b.EOF() {
		return
	}
	b.events = append(b.events, event{kind: evToken, pos: b.pos})
	b.pos++
}

func (b *Builder) Mark() Marker {
	m := Marker{id: b.nextID, pos: b.pos, event: len(b.events)}
	b.nextID++
	b.events = append(b.events, event{kind: evOpen, pos: b.pos, tombstone: true})
	b.open = append(b.open, m)
	return m
}

func (b *Builder) MarkAndAdvance() Marker {
	m := b.Mark()
	b.Advance()
	return m
}

func (b *Builder) resolve(m Marker, action string) {
	n := len(b.open)
	invariant.Precondition(n > 0 && b.open[n-1].id == m.id,
		"%s: marker %d is not the innermost open marker (resolved twice or out of order)", action, m.id)
	b.open = b.open[:n-1]
}

// Done closes the marker as a node of element e.
func (b *Builder) Done(m Marker, e grammar.Element) {
	b.resolve(m, "done")
	invariant.NotNil(e, "element")
	b.events[m.event].tombstone = false
	b.events[m.event].element = e
	b.events = append(b.events, event{kind: evClose, pos: b.pos})
}

// Error closes the marker as an error node carrying message.
func (b *Builder) Error(m Marker, message string) {
	b.resolve(m, "error")
	b.events[m.event].tombstone = false
	b.events[m.event].message = message
	b.events = append(b.events, event{kind: evClose, pos: b.pos})
}

// Drop discards the marker. Tokens and nodes recorded after it stay.
func (b *Builder) Drop(m Marker) {
	b.resolve(m, "drop")
}

// RollbackTo rewinds the cursor to the marker and forgets everything
// recorded after it.
func (b *Builder) RollbackTo(m Marker) {
	b.resolve(m, "rollback")
	invariant.Invariant(m.pos <= b.pos, "rollback moves the cursor forward from %d to %d", b.pos, m.pos)
	b.events = b.events[:m.event]
	b.pos = m.pos
	if b.lastExpect >= len(b.events) {
		b.lastExpect = -1
	}
}

// Expect records that one of the tokens in set was expected at the current
// position. Sets recorded at the same position are merged.
func (b *Builder) Expect(set token.Set) {
	if set.IsEmpty() {
		return
	}
	// merging into an event recorded before the innermost marker would
	// survive a rollback of that marker
	floor := 0
	if n := len(b.open); n > 0 {
		floor = b.open[n-1].event
	}
	if b.lastExpect >= floor {
		last := &b.events[b.lastExpect]
		if last.kind == evExpect && last.pos == b.pos {
			last.expected.Union(set)
			return
		}
	}
	b.lastExpect = len(b.events)
	b.events = append(b.events, event{kind: evExpect, pos: b.pos, expected: set.Clone()})
}

// IsExplicitRange reports whether a range opened by t is currently open.
func (b *Builder) IsExplicitRange(t *token.Type) bool {
	return b.explicit[t]
}

func (b *Builder) SetExplicitRange(t *token.Type, open bool) {
	if open {
		b.explicit[t] = true
	} else {
		delete(b.explicit, t)
	}
}

// OpenMarkers is the number of markers not yet resolved.
func (b *Builder) OpenMarkers() int {
	return len(b.open)
}

func (b *Builder) position(pos int) token.Position {
	if pos < len(b.tokens) {
		return b.tokens[pos].Span.Start
	}
	if len(b.tokens) > 0 {
		return b.tokens[len(b.tokens)-1].Span.End
	}
	return token.Position{File: b.file, Line: 1, Column: 1}
}

func (b *Builder) endPosition(pos int) token.Position {
	if pos > 0 && pos <= len(b.tokens) {
		return b.tokens[pos-1].Span.End
	}
	return b.position(pos)
}

// Tree assembles the recorded events into a syntax tree rooted at a file
// node. It fails when markers are still open.
func (b *Builder) Tree() (*Node, error) {
	if n := len(b.open); n > 0 {
		return nil, fmt.Errorf("tree: %d unresolved markers", n)
	}
	root := &Node{Span: token.Span{Start: b.position(0)}}
	stack := []*Node{root}
	expected := b.expectations()

	for _, ev := range b.events {
		top := stack[len(stack)-1]
		switch ev.kind {
		case evOpen:
			if ev.tombstone {
				continue
			}
			n := &Node{Element: ev.element, Span: token.Span{Start: b.position(ev.pos)}}
			if ev.element == nil {
				n.Error = &Error{Message: ev.message}
				if set, ok := expected[ev.pos]; ok {
					n.Error.Expected = b.describe(set)
				}
			}
			top.Children = append(top.Children, n)
			stack = append(stack, n)
		case evClose:
			top.Span.End = b.endPosition(ev.pos)
			if top.Span.End.Offset < top.Span.Start.Offset {
				top.Span.End = top.Span.Start
			}
			top.collapseLeaf()
			stack = stack[:len(stack)-1]
		case evToken:
			tok := b.tokens[ev.pos]
			top.Children = append(top.Children, &Node{Token: &tok, Span: tok.Span})
		}
	}
	invariant.Postcondition(len(stack) == 1, "tree: %d nodes left open", len(stack)-1)
	root.Span.End = b.endPosition(b.pos)
	return root, nil
}

// expectations merges the recorded expected-token sets by position.
func (b *Builder) expectations() map[int]token.Set {
	out := make(map[int]token.Set)
	for _, ev := range b.events {
		if ev.kind != evExpect {
			continue
		}
		set := out[ev.pos]
		set.Union(ev.expected)
		out[ev.pos] = set
	}
	return out
}

func (b *Builder) describe(set token.Set) []string {
	var out []string
	for _, i := range set.Indexes() {
		out = append(out, b.vocab.Type(i).Display())
	}
	sort.Strings(out)
	return out
}
