package token

import (
	"fmt"
	"strings"
)

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// Category classifies a token type. Element types may override the category
// of the token they match with a flavor.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryKeyword
	CategoryFunction
	CategoryDatatype
	CategoryParameter
	CategoryOperator
	CategoryCharacter
	CategoryIdentifier
	CategoryLiteral
	CategoryNumeric
	CategoryWhitespace
	CategoryComment
	CategoryChameleon
)

var categoryNames = map[Category]string{
	CategoryUnknown:    "unknown",
	CategoryKeyword:    "keyword",
	CategoryFunction:   "function",
	CategoryDatatype:   "datatype",
	CategoryParameter:  "parameter",
	CategoryOperator:   "operator",
	CategoryCharacter:  "character",
	CategoryIdentifier: "identifier",
	CategoryLiteral:    "literal",
	CategoryNumeric:    "numeric",
	CategoryWhitespace: "whitespace",
	CategoryComment:    "comment",
	CategoryChameleon:  "chameleon",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCategory resolves a category by its lower-case name.
func ParseCategory(name string) (Category, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range categoryNames {
		if n == name {
			return c, true
		}
	}
	return CategoryUnknown, false
}

type Flag uint8

const (
	// Reserved marks a word that acts as a keyword wherever the grammar
	// expects it.
	Reserved Flag = 1 << iota
	// Suppressible marks a reserved word that may stand in for an
	// identifier when the context allows it.
	Suppressible
	// Landmark marks a statement or clause boundary used to resynchronize
	// after a parse error.
	Landmark
)

// Type is one entry of a dialect's token vocabulary. Types are compared by
// pointer identity.
type Type struct {
	ID       string
	Value    string // canonical text; empty for literal and identifier kinds
	Category Category
	Flags    Flag
	// Pattern is an optional EBNF body describing the lexical shape of
	// tokens without a fixed value. It is only used for grammar export.
	Pattern string

	index int
}

// Index is the dense position of the type inside its vocabulary.
func (t *Type) Index() int {
	return t.index
}

func (t *Type) Has(f Flag) bool {
	return t != nil && t.Flags&f != 0
}

func (t *Type) IsReservedWord() bool {
	return t.Has(Reserved)
}

func (t *Type) IsSuppressibleReservedWord() bool {
	return t.Has(Reserved) && t.Has(Suppressible)
}

func (t *Type) IsParserLandmark() bool {
	return t.Has(Landmark)
}

func (t *Type) IsIdentifier() bool {
	return t != nil && t.Category == CategoryIdentifier
}

func (t *Type) IsFunction() bool {
	return t != nil && t.Category == CategoryFunction
}

func (t *Type) IsChameleon() bool {
	return t != nil && t.Category == CategoryChameleon
}

func (t *Type) IsCharacter() bool {
	return t != nil && t.Category == CategoryCharacter
}

// IsTrivia reports whether the lexer should keep the token out of the
// parser's view.
func (t *Type) IsTrivia() bool {
	return t != nil && (t.Category == CategoryWhitespace || t.Category == CategoryComment)
}

// Matches reports whether t is o, or both are identifier kinds.
func (t *Type) Matches(o *Type) bool {
	if t == o {
		return true
	}
	return t.IsIdentifier() && o.IsIdentifier()
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.ID
}

// Display returns the text used in "expected ..." messages.
func (t *Type) Display() string {
	if t.Value != "" {
		if t.Category == CategoryCharacter || t.Category == CategoryOperator {
			return "'" + t.Value + "'"
		}
		return strings.ToUpper(t.Value)
	}
	return strings.ToLower(t.ID)
}

type Token struct {
	Type    *Type
	Literal string
	Span    Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Span.Start, t.Type, t.Literal)
}
