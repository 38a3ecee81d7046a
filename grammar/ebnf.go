package grammar

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/sqlgram/token"
)

// EBNF renders the grammar in the EBNF dialect understood by
// golang.org/x/exp/ebnf. Named and block elements become productions,
// fixed tokens become quoted literals and value-less token types become
// lexical productions.
func (g *Grammar) EBNF() string {
	w := &ebnfWriter{g: g, lexical: make(map[*token.Type]bool)}
	start := g.StartProduction()

	var body bytes.Buffer
	if _, named := g.named[g.Root.ID()]; !named || g.Root.ID() == "" {
		fmt.Fprintf(&body, "%s = %s .\n", start, w.expr(g.Root, false))
	}
	for _, id := range g.order {
		s, _ := AsSequence(g.named[id])
		fmt.Fprintf(&body, "%s = %s .\n", productionName(id), w.sequence(s))
	}
	for _, t := range g.vocab.Types() {
		if !w.lexical[t] {
			continue
		}
		pattern := t.Pattern
		if pattern == "" {
			pattern = strconv.Quote("<" + strings.ToLower(t.ID) + ">")
		}
		fmt.Fprintf(&body, "%s = %s .\n", lexicalName(t), pattern)
	}
	return body.String()
}

// StartProduction is the production name of the root element.
func (g *Grammar) StartProduction() string {
	if _, ok := g.named[g.Root.ID()]; ok && g.Root.ID() != "" {
		return productionName(g.Root.ID())
	}
	return "Start"
}

// Verify exports the grammar as EBNF and checks it with
// golang.org/x/exp/ebnf, starting from the root production.
func (g *Grammar) Verify() error {
	_, err := CheckEBNF("grammar.ebnf", strings.NewReader(g.EBNF()), g.StartProduction())
	return err
}

// CheckEBNF parses an EBNF grammar and, when start is not empty, verifies
// that every production is defined and reachable from start.
func CheckEBNF(filename string, r io.Reader, start string) (ebnf.Grammar, error) {
	grammar, err := ebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if start == "" {
		return grammar, nil
	}
	if err := ebnf.Verify(grammar, start); err != nil {
		return grammar, fmt.Errorf("verify %s: %w", filename, err)
	}
	return grammar, nil
}

type ebnfWriter struct {
	g       *Grammar
	lexical map[*token.Type]bool
}

func (w *ebnfWriter) expr(e Element, group bool) string {
	if _, named := w.g.named[e.ID()]; named && e.ID() != "" {
		return productionName(e.ID())
	}
	var s string
	switch e := e.(type) {
	case *Token:
		return w.token(e.Type)
	case *Identifier:
		return w.token(e.Type)
	case *QualifiedIdentifier:
		alts := make([]string, len(e.Variants))
		sep := w.token(e.Separator.Type)
		for i, v := range e.Variants {
			parts := make([]string, len(v.Leaves))
			for j, l := range v.Leaves {
				parts[j] = w.expr(l, true)
			}
			alts[i] = strings.Join(parts, " "+sep+" ")
		}
		return "( " + strings.Join(alts, " | ") + " )"
	case Sequential:
		s = w.sequence(e.sequence())
		if len(e.sequence().Children) == 1 {
			return s
		}
	case *Iteration:
		body := w.expr(e.Body, true)
		switch len(e.Separators) {
		case 0:
			return body + " { " + body + " }"
		case 1:
			return body + " { " + w.token(e.Separators[0].Type) + " " + body + " }"
		default:
			seps := make([]string, len(e.Separators))
			for i, sep := range e.Separators {
				seps[i] = w.token(sep.Type)
			}
			return body + " { ( " + strings.Join(seps, " | ") + " ) " + body + " }"
		}
	case *OneOf:
		alts := make([]string, len(e.Children))
		for i, ch := range e.Children {
			alts[i] = w.expr(ch.Element, false)
		}
		if len(alts) == 1 {
			return alts[0]
		}
		return "( " + strings.Join(alts, " | ") + " )"
	case *Wrapper:
		inner := w.expr(e.Inner, false)
		if e.InnerOptional {
			inner = "[ " + inner + " ]"
		}
		return w.token(e.Begin.Type) + " " + inner + " " + w.token(e.End.Type)
	}
	if group {
		return "( " + s + " )"
	}
	return s
}

func (w *ebnfWriter) sequence(s *Sequence) string {
	parts := make([]string, len(s.Children))
	for i, ch := range s.Children {
		if ch.Optional {
			parts[i] = "[ " + w.expr(ch.Element, false) + " ]"
		} else {
			parts[i] = w.expr(ch.Element, true)
		}
	}
	return strings.Join(parts, " ")
}

func (w *ebnfWriter) token(t *token.Type) string {
	if t.Value != "" {
		v := t.Value
		if t.Category != token.CategoryCharacter && t.Category != token.CategoryOperator {
			v = strings.ToUpper(v)
		}
		return strconv.Quote(v)
	}
	w.lexical[t] = true
	return lexicalName(t)
}

// productionName turns select_statement into SelectStatement.
func productionName(id string) string {
	var sb strings.Builder
	upper := true
	for _, r := range id {
		if r == '_' || r == '-' || r == ' ' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func lexicalName(t *token.Type) string {
	return strings.ToLower(t.ID)
}
