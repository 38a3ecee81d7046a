// Package grammar describes a language as a graph of element types.
//
// A grammar is assembled with a Builder and frozen by Builder.Build, which
// validates the graph and computes the lookup tables the parser relies on:
// first tokens, contained tokens, follow tokens, wrapper strength, one-of
// ordering and qualified identifier variants. A built grammar is read-only
// and may be shared between goroutines.
package grammar

import (
	"fmt"

	"github.com/dhamidi/sqlgram/token"
)

type Kind uint8

const (
	KindToken Kind = iota
	KindIdentifier
	KindQualifiedIdentifier
	KindSequence
	KindIteration
	KindOneOf
	KindWrapper
	KindNamed
	KindBlock
)

var kindNames = map[Kind]string{
	KindToken:               "token",
	KindIdentifier:          "identifier",
	KindQualifiedIdentifier: "qualified-identifier",
	KindSequence:            "sequence",
	KindIteration:           "iteration",
	KindOneOf:               "one-of",
	KindWrapper:             "wrapper",
	KindNamed:               "named",
	KindBlock:               "block",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

type Attribute uint8

const (
	// Statement marks the element that spans one complete statement.
	Statement Attribute = 1 << iota
)

// Element is a node of the grammar graph. The set of implementations is
// closed: *Token, *Identifier, *QualifiedIdentifier, *Sequence, *Iteration,
// *OneOf, *Wrapper, *Named and *Block.
type Element interface {
	ID() string
	Kind() Kind
	Is(Attribute) bool

	// First is the set of token types the element can start with.
	First() token.Set
	// FirstRequired is the set of token types every match of the element
	// starts with.
	FirstRequired() token.Set
	// Contains is the set of token types appearing anywhere in the element.
	Contains() token.Set
	// Follow is the set of token types that may come right after the
	// element in any context it is used in.
	Follow() token.Set

	String() string

	base() *Base
}

// Leaf is an element matching exactly one token.
type Leaf interface {
	Element
	TokenType() *token.Type
}

type Base struct {
	id    string
	kind  Kind
	attrs Attribute
	seq   int

	first         token.Set
	firstRequired token.Set
	contains      token.Set
	follow        token.Set
}

func (b *Base) ID() string               { return b.id }
func (b *Base) Kind() Kind               { return b.kind }
func (b *Base) Is(a Attribute) bool      { return b.attrs&a != 0 }
func (b *Base) First() token.Set         { return b.first }
func (b *Base) FirstRequired() token.Set { return b.firstRequired }
func (b *Base) Contains() token.Set      { return b.contains }
func (b *Base) Follow() token.Set        { return b.follow }
func (b *Base) base() *Base              { return b }

func (b *Base) String() string {
	if b.id == "" {
		return fmt.Sprintf("%s#%d", b.kind, b.seq)
	}
	return fmt.Sprintf("%s (%s)", b.kind, b.id)
}

// Child is one occurrence of an element inside a composite element.
type Child struct {
	Element  Element
	Optional bool
	// Version is the minimum language version the child is available in.
	Version int
	Index   int
}

// Token matches a single token of a given type.
type Token struct {
	Base
	Type *token.Type
	// Text optionally constrains the token text, compared ignoring case.
	Text string
	// Flavor overrides the category of the matched token when non-zero.
	Flavor token.Category
}

func (t *Token) TokenType() *token.Type { return t.Type }

// Category is the flavor of the token element or, without one, the
// category of its token type.
func (t *Token) Category() token.Category {
	if t.Flavor != token.CategoryUnknown {
		return t.Flavor
	}
	return t.Type.Category
}

func (t *Token) String() string {
	if t.id == "" {
		return fmt.Sprintf("token (%s)", t.Type)
	}
	return fmt.Sprintf("token (%s - %s)", t.id, t.Type)
}

// Identifier matches an identifier token, or a reserved word allowed to act
// as an identifier in context.
type Identifier struct {
	Base
	Type *token.Type
	// Object names the kind of object the identifier refers to, such as
	// "table" or "column".
	Object     string
	Definition bool
	Alias      bool
}

func (i *Identifier) TokenType() *token.Type { return i.Type }

func (i *Identifier) String() string {
	role := "reference"
	switch {
	case i.Alias:
		role = "alias"
	case i.Definition:
		role = "definition"
	}
	return fmt.Sprintf("identifier (%s %s)", i.Object, role)
}

// Variant is one concrete shape of a qualified identifier.
type Variant struct {
	Leaves []Leaf
}

func (v Variant) String() string {
	s := ""
	for i, l := range v.Leaves {
		if i > 0 {
			s += "."
		}
		switch l := l.(type) {
		case *Identifier:
			s += l.Object
		case *Token:
			s += l.Type.Display()
		}
	}
	return s
}

// QualifiedIdentifier matches dotted paths such as schema.table.column.
type QualifiedIdentifier struct {
	Base
	Separator *Token
	Variants  []Variant
	MaxLength int
}

// Sequence matches its children in order.
type Sequence struct {
	Base
	Children []Child
	// ExitIndex is the highest child index at which a failure still means
	// the sequence did not start.
	ExitIndex int
}

// IsExitIndex reports whether a failure at child index i is a plain
// mismatch rather than a malformed sequence.
func (s *Sequence) IsExitIndex(i int) bool {
	return i <= s.ExitIndex
}

// OptionalFrom reports whether the children from index i on may all be
// absent.
func (s *Sequence) OptionalFrom(i int) bool {
	for _, c := range s.Children[i:] {
		if !c.Optional {
			return false
		}
	}
	return true
}

// StartsFrom reports whether any child from index i on can start with t.
func (s *Sequence) StartsFrom(t *token.Type, i int) bool {
	for ; i < len(s.Children); i++ {
		if s.Children[i].Element.First().Has(t) {
			return true
		}
	}
	return false
}

// FirstFrom collects the first tokens of the child at index i and, while
// children are optional, of the following children.
func (s *Sequence) FirstFrom(i int) token.Set {
	var set token.Set
	for ; i < len(s.Children); i++ {
		set.Union(s.Children[i].Element.First())
		if !s.Children[i].Optional {
			break
		}
	}
	return set
}

func (s *Sequence) sequence() *Sequence { return s }

// Named is a sequence with an identity. It may be referenced before it is
// defined, which is how recursive grammars are written.
type Named struct {
	Sequence
	defined bool
}

// Block is a sequence that always produces a tree node of its own.
type Block struct {
	Sequence
	defined bool
}

// Sequential is implemented by *Sequence, *Named and *Block.
type Sequential interface {
	Element
	sequence() *Sequence
}

// AsSequence returns the sequence behind e, if e is sequence shaped.
func AsSequence(e Element) (*Sequence, bool) {
	if s, ok := e.(Sequential); ok {
		return s.sequence(), true
	}
	return nil, false
}

// Iteration matches its body one or more times, optionally separated.
type Iteration struct {
	Base
	Body          Element
	Separators    []*Token
	MinIterations int
	// Counts lists the accepted iteration counts. Empty means any count.
	Counts []int
	// FollowedBySeparator is set when a separator token may also follow the
	// iteration itself. A trailing separator is then left to the parent.
	FollowedBySeparator bool
}

func (it *Iteration) IsSeparator(t *token.Type) bool {
	for _, s := range it.Separators {
		if s.Type == t {
			return true
		}
	}
	return false
}

func (it *Iteration) MatchesMin(n int) bool {
	return n >= it.MinIterations
}

func (it *Iteration) MatchesCount(n int) bool {
	if len(it.Counts) == 0 {
		return true
	}
	for _, c := range it.Counts {
		if c == n {
			return true
		}
	}
	return false
}

// OneOf matches the first alternative that matches.
type OneOf struct {
	Base
	Children []Child
	// Sortable one-ofs try alternatives that cannot start with an
	// identifier before those that can.
	Sortable bool
}

// Wrapper matches an inner element between a begin and an end token.
type Wrapper struct {
	Base
	Begin         *Token
	End           *Token
	Inner         Element
	InnerOptional bool
	// Strong wrappers keep going after a malformed inner element.
	Strong bool
}
