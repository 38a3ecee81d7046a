package grammar

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dhamidi/sqlgram/token"
)

// Grammar is a validated, immutable element graph.
type Grammar struct {
	Root     Element
	vocab    *token.Vocabulary
	elements []Element
	named    map[string]Element
	order    []string
}

func (g *Grammar) Vocabulary() *token.Vocabulary { return g.vocab }

// Elements returns every element of the grammar in creation order.
func (g *Grammar) Elements() []Element { return g.elements }

// Named returns the named or block element registered under id.
func (g *Grammar) Named(id string) (Element, bool) {
	e, ok := g.named[id]
	return e, ok
}

// Productions returns the named and block elements in definition order.
func (g *Grammar) Productions() []Element {
	out := make([]Element, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.named[id])
	}
	return out
}

// Build validates the graph rooted at root and computes the derived lookup
// tables. The builder must not be used afterwards.
func (b *Builder) Build(root Element) (*Grammar, error) {
	errs := append([]error(nil), b.errs...)
	if err := b.vocab.Err(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrMalformed, err))
	}
	if root == nil {
		errs = append(errs, fmt.Errorf("%w: no root element", ErrMalformed))
	}
	errs = append(errs, b.validate()...)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	c := &compiler{vocab: b.vocab, elements: b.elements}
	c.run()

	return &Grammar{
		Root:     root,
		vocab:    b.vocab,
		elements: b.elements,
		named:    b.named,
		order:    b.order,
	}, nil
}

func (b *Builder) validate() []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrMalformed}, args...)...))
	}
	for _, e := range b.elements {
		switch e := e.(type) {
		case *Token:
			if e.Type == nil {
				fail("%s has no token type", e)
			}
		case *Named:
			if !e.defined {
				fail("named element %s is never defined", e.ID())
			}
		case *Block:
			if !e.defined {
				fail("block %s is never defined", e.ID())
			}
		case *Sequence:
			if len(e.Children) == 0 {
				fail("%s has no children", e)
			}
		case *OneOf:
			if len(e.Children) == 0 {
				fail("%s has no alternatives", e)
			}
		case *Iteration:
			if e.Body == nil {
				fail("%s has no body", e)
			}
			if e.MinIterations < 0 {
				fail("%s has a negative minimum", e)
			}
		case *Wrapper:
			if e.Begin.Type == nil || e.End.Type == nil {
				fail("%s is missing its begin or end token", e)
			}
			if e.Inner == nil {
				fail("%s has no inner element", e)
			}
		case *QualifiedIdentifier:
			if len(e.Variants) == 0 {
				fail("%s has no variants", e)
			}
		}
	}
	return errs
}

type compiler struct {
	vocab    *token.Vocabulary
	elements []Element
	// identifiers holds every identifier category type.
	identifiers token.Set
}

func (c *compiler) run() {
	for _, t := range c.vocab.Types() {
		if t.IsIdentifier() {
			c.identifiers.Add(t)
		}
	}
	c.computeFirst()
	c.computeFirstRequired()
	c.computeContains()
	c.computeFollow()
	c.computeStrength()
	c.sortAlternatives()
	for _, e := range c.elements {
		if it, ok := e.(*Iteration); ok {
			for _, s := range it.Separators {
				if it.follow.Has(s.Type) {
					it.FollowedBySeparator = true
				}
			}
		}
	}
}

// tokenSet is the set a token type stands for. Identifier kinds match each
// other, so an identifier type stands for all of them.
func (c *compiler) tokenSet(t *token.Type) token.Set {
	if t.IsIdentifier() {
		return c.identifiers.Clone()
	}
	return token.NewSet(t)
}

func skippable(ch Child) bool {
	return ch.Optional || nullable(ch.Element)
}

// nullable reports whether e may be absent from its parent without a
// failure: sequences made only of optional children.
func nullable(e Element) bool {
	if s, ok := AsSequence(e); ok {
		return s.OptionalFrom(0)
	}
	return false
}

func (c *compiler) computeFirst() {
	for changed := true; changed; {
		changed = false
		for _, e := range c.elements {
			b := e.base()
			switch e := e.(type) {
			case *Token:
				changed = b.first.Union(c.tokenSet(e.Type)) || changed
			case *Identifier:
				changed = b.first.Union(c.identifiers) || changed
			case *QualifiedIdentifier:
				for _, v := range e.Variants {
					changed = b.first.Union(v.Leaves[0].First()) || changed
				}
			case Sequential:
				for _, ch := range e.sequence().Children {
					changed = b.first.Union(ch.Element.First()) || changed
					if !skippable(ch) {
						break
					}
				}
			case *Iteration:
				changed = b.first.Union(e.Body.First()) || changed
			case *OneOf:
				for _, ch := range e.Children {
					changed = b.first.Union(ch.Element.First()) || changed
				}
			case *Wrapper:
				changed = b.first.Union(e.Begin.First()) || changed
			}
		}
	}
}

func (c *compiler) computeFirstRequired() {
	universe := token.FullSet(c.vocab.Len())
	for _, e := range c.elements {
		b := e.base()
		switch e := e.(type) {
		case *Token:
			b.firstRequired = c.tokenSet(e.Type)
		case *Identifier:
			b.firstRequired = c.identifiers.Clone()
		default:
			b.firstRequired = universe.Clone()
		}
	}
	for changed := true; changed; {
		changed = false
		for _, e := range c.elements {
			b := e.base()
			switch e := e.(type) {
			case *QualifiedIdentifier:
				for _, v := range e.Variants {
					changed = b.firstRequired.Intersect(v.Leaves[0].FirstRequired()) || changed
				}
			case Sequential:
				s := e.sequence()
				if s.Children[0].Optional {
					changed = b.firstRequired.Intersect(token.Set{}) || changed
				} else {
					changed = b.firstRequired.Intersect(s.Children[0].Element.FirstRequired()) || changed
				}
			case *Iteration:
				changed = b.firstRequired.Intersect(e.Body.FirstRequired()) || changed
			case *OneOf:
				for _, ch := range e.Children {
					changed = b.firstRequired.Intersect(ch.Element.FirstRequired()) || changed
				}
			case *Wrapper:
				changed = b.firstRequired.Intersect(e.Begin.FirstRequired()) || changed
			}
		}
	}
}

func (c *compiler) computeContains() {
	for changed := true; changed; {
		changed = false
		for _, e := range c.elements {
			b := e.base()
			add := func(s token.Set) { changed = b.contains.Union(s) || changed }
			switch e := e.(type) {
			case *Token:
				add(token.NewSet(e.Type))
			case *Identifier:
				add(c.identifiers)
			case *QualifiedIdentifier:
				add(e.Separator.Contains())
				for _, v := range e.Variants {
					for _, l := range v.Leaves {
						add(l.Contains())
					}
				}
			case Sequential:
				for _, ch := range e.sequence().Children {
					add(ch.Element.Contains())
				}
			case *Iteration:
				add(e.Body.Contains())
				for _, s := range e.Separators {
					add(s.Contains())
				}
			case *OneOf:
				for _, ch := range e.Children {
					add(ch.Element.Contains())
				}
			case *Wrapper:
				add(e.Begin.Contains())
				add(e.Inner.Contains())
				add(e.End.Contains())
			}
		}
	}
}

// computeFollow propagates, for every occurrence of an element, the tokens
// that can come after it.
func (c *compiler) computeFollow() {
	for changed := true; changed; {
		changed = false
		into := func(e Element, s token.Set) {
			changed = e.base().follow.Union(s) || changed
		}
		for _, e := range c.elements {
			follow := e.Follow()
			switch e := e.(type) {
			case *QualifiedIdentifier:
				into(e.Separator, e.First())
				for _, v := range e.Variants {
					for i, l := range v.Leaves {
						if i < len(v.Leaves)-1 {
							into(l, e.Separator.First())
						} else {
							into(l, follow)
						}
					}
				}
			case Sequential:
				s := e.sequence()
				for i, ch := range s.Children {
					var next token.Set
					rest := true
					for _, after := range s.Children[i+1:] {
						next.Union(after.Element.First())
						if !skippable(after) {
							rest = false
							break
						}
					}
					if rest {
						next.Union(follow)
					}
					into(ch.Element, next)
				}
			case *Iteration:
				var next token.Set
				if len(e.Separators) == 0 {
					next.Union(e.Body.First())
				}
				for _, sep := range e.Separators {
					next.Union(sep.First())
					into(sep, e.Body.First())
				}
				next.Union(follow)
				into(e.Body, next)
			case *OneOf:
				for _, ch := range e.Children {
					into(ch.Element, follow)
				}
			case *Wrapper:
				afterBegin := e.Inner.First().Clone()
				if e.InnerOptional {
					afterBegin.Union(e.End.First())
				}
				into(e.Begin, afterBegin)
				into(e.Inner, e.End.First())
				into(e.End, follow)
			}
		}
	}
}

// computeStrength marks wrappers whose begin token is reserved, or which
// are required children of a sequence preceded by a required sibling.
func (c *compiler) computeStrength() {
	for _, e := range c.elements {
		if w, ok := e.(*Wrapper); ok && w.Begin.Type.IsReservedWord() {
			w.Strong = true
		}
	}
	for _, e := range c.elements {
		s, ok := AsSequence(e)
		if !ok {
			continue
		}
		for i, ch := range s.Children {
			w, ok := ch.Element.(*Wrapper)
			if !ok || ch.Optional || i == 0 {
				continue
			}
			if !s.optionalTo(i) {
				w.Strong = true
			}
		}
	}
}

// optionalTo reports whether every child before index i is optional.
func (s *Sequence) optionalTo(i int) bool {
	for _, c := range s.Children[:i] {
		if !c.Optional {
			return false
		}
	}
	return true
}

func (c *compiler) sortAlternatives() {
	for _, e := range c.elements {
		o, ok := e.(*OneOf)
		if !ok || !o.Sortable {
			continue
		}
		startsWithIdentifier := func(ch Child) bool {
			first := ch.Element.First()
			for _, i := range c.identifiers.Indexes() {
				if first.Has(c.vocab.Type(i)) {
					return true
				}
			}
			return false
		}
		sort.SliceStable(o.Children, func(i, j int) bool {
			return !startsWithIdentifier(o.Children[i]) && startsWithIdentifier(o.Children[j])
		})
		for i := range o.Children {
			o.Children[i].Index = i
		}
	}
}
