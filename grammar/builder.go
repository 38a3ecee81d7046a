package grammar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/sqlgram/token"
)

// ErrMalformed is wrapped by every grammar definition error.
var ErrMalformed = errors.New("malformed grammar")

// Item is anything that can be placed in a composite element: an Element, or
// an element decorated with Optional, Since or Exit.
type Item interface {
	isItem()
}

type decorated struct {
	c    Child
	exit bool
}

func (decorated) isItem() {}
func (*Base) isItem()     {}

func itemOf(i Item) (Child, bool) {
	switch v := i.(type) {
	case decorated:
		return v.c, v.exit
	case Element:
		return Child{Element: v}, false
	}
	return Child{}, false
}

// Optional marks an item as allowed to be absent.
func Optional(i Item) Item {
	c, exit := itemOf(i)
	c.Optional = true
	return decorated{c: c, exit: exit}
}

// Since makes an item available from the given language version on.
func Since(version int, i Item) Item {
	c, exit := itemOf(i)
	c.Version = version
	return decorated{c: c, exit: exit}
}

// Exit marks the sequence position up to which a failing child means the
// sequence simply does not match.
func Exit(i Item) Item {
	c, _ := itemOf(i)
	return decorated{c: c, exit: true}
}

type TokenOption func(*Token)

// Text restricts a token element to a specific text.
func Text(s string) TokenOption {
	return func(t *Token) { t.Text = s }
}

// Flavor overrides the category reported for the matched token.
func Flavor(c token.Category) TokenOption {
	return func(t *Token) { t.Flavor = c }
}

type IdentifierOption func(*Identifier)

// Definition marks an identifier that introduces a name.
func Definition() IdentifierOption {
	return func(i *Identifier) { i.Definition = true }
}

// Alias marks an identifier that introduces an alias.
func Alias() IdentifierOption {
	return func(i *Identifier) {
		i.Definition = true
		i.Alias = true
	}
}

type IterationOption func(*Builder, *Iteration)

// Separator sets the tokens allowed between iterations.
func Separator(ids ...string) IterationOption {
	return func(b *Builder, it *Iteration) {
		for _, id := range ids {
			if t := b.Token(id); t.Type != nil {
				it.Separators = append(it.Separators, t)
			}
		}
	}
}

// MinIterations sets the minimum number of iterations.
func MinIterations(n int) IterationOption {
	return func(_ *Builder, it *Iteration) { it.MinIterations = n }
}

// Counts restricts the accepted iteration counts, written as a list of
// numbers and ranges such as "1-3,5".
func Counts(spec string) IterationOption {
	return func(b *Builder, it *Iteration) {
		counts, err := ParseCounts(spec)
		if err != nil {
			b.errorf("iteration counts %q: %v", spec, err)
			return
		}
		it.Counts = counts
	}
}

// ParseCounts parses a list of iteration counts such as "1-3,5".
func ParseCounts(spec string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid count %q", part)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || end < start {
				return nil, fmt.Errorf("invalid range %q", part)
			}
		}
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no counts")
	}
	return out, nil
}

// Builder assembles a grammar graph.
type Builder struct {
	vocab    *token.Vocabulary
	elements []Element
	named    map[string]Element
	order    []string
	errs     []error
}

func NewBuilder(vocab *token.Vocabulary) *Builder {
	return &Builder{
		vocab: vocab,
		named: make(map[string]Element),
	}
}

func (b *Builder) Vocabulary() *token.Vocabulary {
	return b.vocab
}

func (b *Builder) errorf(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf("%w: "+format, append([]any{ErrMalformed}, args...)...))
}

func (b *Builder) register(e Element, kind Kind, id string) {
	base := e.base()
	base.kind = kind
	base.id = id
	base.seq = len(b.elements)
	b.elements = append(b.elements, e)
}

func (b *Builder) lookupType(id string) *token.Type {
	t, ok := b.vocab.Lookup(id)
	if !ok {
		b.errorf("unknown token type %s", id)
		return nil
	}
	return t
}

// Token returns a new element matching tokens of the given type.
func (b *Builder) Token(typeID string, opts ...TokenOption) *Token {
	t := &Token{Type: b.lookupType(typeID)}
	for _, opt := range opts {
		opt(t)
	}
	b.register(t, KindToken, "")
	return t
}

// Tokens returns a one-of over single tokens.
func (b *Builder) Tokens(typeIDs ...string) *OneOf {
	items := make([]Item, len(typeIDs))
	for i, id := range typeIDs {
		items[i] = b.Token(id)
	}
	return b.OneOf(items...)
}

// Identifier returns an element matching a name of the given object kind.
func (b *Builder) Identifier(object string, opts ...IdentifierOption) *Identifier {
	i := &Identifier{Type: b.vocab.Identifier(), Object: object}
	if i.Type == nil {
		b.errorf("identifier %s: vocabulary has no %s type", object, token.IDIdentifier)
	}
	for _, opt := range opts {
		opt(i)
	}
	b.register(i, KindIdentifier, "")
	return i
}

// Qualified returns a qualified identifier. Each shape lists leaves, some
// of them Optional; every shape expands into the variants obtained by
// trimming optional leaves from either end.
func (b *Builder) Qualified(separatorID string, shapes ...[]Item) *QualifiedIdentifier {
	q := &QualifiedIdentifier{Separator: b.Token(separatorID)}
	b.register(q, KindQualifiedIdentifier, "")
	for _, shape := range shapes {
		leaves := make([]Leaf, 0, len(shape))
		optional := make([]bool, 0, len(shape))
		for _, item := range shape {
			c, _ := itemOf(item)
			leaf, ok := c.Element.(Leaf)
			if !ok {
				b.errorf("qualified identifier leaf %s is not a token or identifier", c.Element)
				continue
			}
			leaves = append(leaves, leaf)
			optional = append(optional, c.Optional)
		}
		if len(leaves) == 0 {
			b.errorf("qualified identifier has an empty shape")
			continue
		}
		q.Variants = append(q.Variants, expandVariants(leaves, optional)...)
	}
	for _, v := range q.Variants {
		q.MaxLength = max(q.MaxLength, len(v.Leaves))
	}
	return q
}

func expandVariants(leaves []Leaf, optional []bool) []Variant {
	last := len(leaves) - 1
	variants := []Variant{{Leaves: leaves}}
	for right := last; right > 0 && optional[right]; right-- {
		variants = append(variants, Variant{Leaves: leaves[:right]})
	}
	for left := 0; left < last && optional[left]; left++ {
		variants = append(variants, Variant{Leaves: leaves[left+1:]})
		for right := last; right > left+1 && optional[right]; right-- {
			variants = append(variants, Variant{Leaves: leaves[left+1 : right]})
		}
	}
	return variants
}

func (b *Builder) children(owner string, items []Item) ([]Child, int) {
	out := make([]Child, 0, len(items))
	exitIndex := 0
	for i, item := range items {
		if item == nil {
			b.errorf("%s: nil child at %d", owner, i)
			continue
		}
		c, exit := itemOf(item)
		if c.Element == nil {
			b.errorf("%s: missing element at %d", owner, i)
			continue
		}
		c.Index = len(out)
		if exit {
			exitIndex = c.Index
		}
		out = append(out, c)
	}
	return out, exitIndex
}

// Seq returns an anonymous sequence.
func (b *Builder) Seq(items ...Item) *Sequence {
	s := &Sequence{}
	s.Children, s.ExitIndex = b.children("sequence", items)
	b.register(s, KindSequence, "")
	return s
}

// Named declares or defines a named element. Called without items it
// returns the element for id, declaring it if needed, so it can be
// referenced before its definition.
func (b *Builder) Named(id string, items ...Item) *Named {
	return b.declareNamed(id, 0, items)
}

// Statement is Named for an element spanning one complete statement.
func (b *Builder) Statement(id string, items ...Item) *Named {
	return b.declareNamed(id, Statement, items)
}

func (b *Builder) declareNamed(id string, attrs Attribute, items []Item) *Named {
	var n *Named
	if e, ok := b.named[id]; ok {
		n, ok = e.(*Named)
		if !ok {
			b.errorf("%s is already declared as a %s", id, e.Kind())
			n = &Named{}
			b.register(n, KindNamed, id)
		}
	} else {
		n = &Named{}
		b.register(n, KindNamed, id)
		b.named[id] = n
		b.order = append(b.order, id)
	}
	n.attrs |= attrs
	if len(items) == 0 {
		return n
	}
	if n.defined {
		b.errorf("named element %s is defined twice", id)
		return n
	}
	n.defined = true
	n.Children, n.ExitIndex = b.children(id, items)
	return n
}

// Block declares or defines a block element. Blocks follow the same
// declaration rules as Named.
func (b *Builder) Block(id string, items ...Item) *Block {
	var blk *Block
	if e, ok := b.named[id]; ok {
		blk, ok = e.(*Block)
		if !ok {
			b.errorf("%s is already declared as a %s", id, e.Kind())
			blk = &Block{}
			b.register(blk, KindBlock, id)
		}
	} else {
		blk = &Block{}
		b.register(blk, KindBlock, id)
		b.named[id] = blk
		b.order = append(b.order, id)
	}
	if len(items) == 0 {
		return blk
	}
	if blk.defined {
		b.errorf("block %s is defined twice", id)
		return blk
	}
	blk.defined = true
	blk.Children, blk.ExitIndex = b.children(id, items)
	return blk
}

// Iteration returns an element repeating body.
func (b *Builder) Iteration(body Element, opts ...IterationOption) *Iteration {
	it := &Iteration{Body: body}
	b.register(it, KindIteration, "")
	for _, opt := range opts {
		opt(b, it)
	}
	return it
}

// OneOf returns an element matching the first matching alternative.
func (b *Builder) OneOf(items ...Item) *OneOf {
	o := &OneOf{}
	o.Children, _ = b.children("one-of", items)
	for _, c := range o.Children {
		if c.Optional {
			b.errorf("one-of alternative %s cannot be optional", c.Element)
		}
	}
	b.register(o, KindOneOf, "")
	return o
}

// Sortable is OneOf with alternatives that cannot start with an identifier
// tried first.
func (b *Builder) Sortable(items ...Item) *OneOf {
	o := b.OneOf(items...)
	o.Sortable = true
	return o
}

// Wrapper returns an element matching inner between begin and end tokens.
// Inner may be Optional.
func (b *Builder) Wrapper(beginID, endID string, inner Item) *Wrapper {
	w := &Wrapper{Begin: b.Token(beginID), End: b.Token(endID)}
	if inner != nil {
		c, _ := itemOf(inner)
		w.Inner, w.InnerOptional = c.Element, c.Optional
	}
	b.register(w, KindWrapper, "")
	return w
}
