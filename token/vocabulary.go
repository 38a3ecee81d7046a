package token

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Well-known type IDs every vocabulary must define. The parsing strategies
// rely on them for qualified names, function calls and identifier matching.
const (
	IDIdentifier = "IDENTIFIER"
	IDDot        = "CHR_DOT"
	IDLeftParen  = "CHR_LEFT_PARENTHESIS"
)

// ErrVocabulary is wrapped by every vocabulary definition error.
var ErrVocabulary = errors.New("invalid vocabulary")

// Vocabulary is the closed set of token types of one dialect.
type Vocabulary struct {
	types    []*Type
	byID     map[string]*Type
	keywords map[string]*Type
	symbols  map[string]*Type
	errs     []error
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		byID:     make(map[string]*Type),
		keywords: make(map[string]*Type),
		symbols:  make(map[string]*Type),
	}
}

// Define registers a new token type and returns it. Definition problems are
// collected and reported by Err.
func (v *Vocabulary) Define(id, value string, cat Category, flags Flag) *Type {
	if existing, ok := v.byID[id]; ok {
		v.errs = append(v.errs, fmt.Errorf("%w: duplicate token type %s", ErrVocabulary, id))
		return existing
	}
	t := &Type{ID: id, Value: value, Category: cat, Flags: flags, index: len(v.types)}
	v.types = append(v.types, t)
	v.byID[id] = t
	if value == "" {
		return t
	}
	switch cat {
	case CategoryCharacter, CategoryOperator:
		if _, ok := v.symbols[value]; ok {
			v.errs = append(v.errs, fmt.Errorf("%w: duplicate symbol %q", ErrVocabulary, value))
			break
		}
		v.symbols[value] = t
	default:
		key := strings.ToUpper(value)
		if _, ok := v.keywords[key]; ok {
			v.errs = append(v.errs, fmt.Errorf("%w: duplicate keyword %q", ErrVocabulary, value))
			break
		}
		v.keywords[key] = t
	}
	return t
}

// Err returns the joined definition errors, including missing well-known
// types.
func (v *Vocabulary) Err() error {
	errs := append([]error(nil), v.errs...)
	for _, id := range []string{IDIdentifier, IDDot, IDLeftParen} {
		if _, ok := v.byID[id]; !ok {
			errs = append(errs, fmt.Errorf("%w: missing shared token type %s", ErrVocabulary, id))
		}
	}
	return errors.Join(errs...)
}

func (v *Vocabulary) Lookup(id string) (*Type, bool) {
	t, ok := v.byID[id]
	return t, ok
}

// Keyword finds a word-like type by its text, ignoring case.
func (v *Vocabulary) Keyword(text string) (*Type, bool) {
	t, ok := v.keywords[strings.ToUpper(text)]
	return t, ok
}

// Symbol finds a character or operator type by its exact text.
func (v *Vocabulary) Symbol(text string) (*Type, bool) {
	t, ok := v.symbols[text]
	return t, ok
}

// Symbols returns all symbol texts, longest first, for maximal munch.
func (v *Vocabulary) Symbols() []string {
	out := make([]string, 0, len(v.symbols))
	for s := range v.symbols {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

func (v *Vocabulary) Identifier() *Type { return v.byID[IDIdentifier] }
func (v *Vocabulary) Dot() *Type        { return v.byID[IDDot] }
func (v *Vocabulary) LeftParen() *Type  { return v.byID[IDLeftParen] }

func (v *Vocabulary) Types() []*Type {
	return v.types
}

func (v *Vocabulary) Len() int {
	return len(v.types)
}

// Type returns the type registered at index i.
func (v *Vocabulary) Type(i int) *Type {
	return v.types[i]
}

// SetOf builds a set from type IDs. Unknown IDs are ignored.
func (v *Vocabulary) SetOf(ids ...string) Set {
	var s Set
	for _, id := range ids {
		if t, ok := v.byID[id]; ok {
			s.Add(t)
		}
	}
	return s
}

// Describe renders a set as a sorted, comma separated list of display names.
func (v *Vocabulary) Describe(s Set) string {
	idx := s.Indexes()
	names := make([]string, 0, len(idx))
	for _, i := range idx {
		if i < len(v.types) {
			names = append(names, v.types[i].Display())
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
