// Package lexer scans SQL source text into tokens of a dialect vocabulary.
package lexer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/sqlgram/token"
)

// Type IDs the lexer produces on its own. A vocabulary used with the lexer
// must define all of them in addition to the shared token types.
const (
	IDWhitespace       = "WHITESPACE"
	IDComment          = "COMMENT"
	IDNumber           = "NUMBER"
	IDString           = "STRING"
	IDQuotedIdentifier = "QUOTED_IDENTIFIER"
	IDChameleon        = "CHAMELEON"
	IDError            = "ERROR"
)

var requiredTypes = []string{
	IDWhitespace, IDComment, IDNumber, IDString, IDQuotedIdentifier, IDChameleon, IDError,
}

type Option func(*Lexer)

// WithFile sets the file name recorded in token positions.
func WithFile(name string) Option {
	return func(l *Lexer) {
		l.file = name
	}
}

type Lexer struct {
	input  []byte
	file   string
	pos    int
	line   int
	column int

	vocab   *token.Vocabulary
	symbols []string
	types   map[string]*token.Type
}

// New returns a lexer over input. It fails when the vocabulary lacks one of
// the types the lexer emits.
func New(input []byte, vocab *token.Vocabulary, opts ...Option) (*Lexer, error) {
	l := &Lexer{
		input:   input,
		line:    1,
		column:  1,
		vocab:   vocab,
		symbols: vocab.Symbols(),
		types:   make(map[string]*token.Type, len(requiredTypes)+1),
	}
	var errs []error
	for _, id := range append([]string{token.IDIdentifier}, requiredTypes...) {
		t, ok := vocab.Lookup(id)
		if !ok {
			errs = append(errs, fmt.Errorf("lexer: vocabulary has no %s type", id))
			continue
		}
		l.types[id] = t
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Tokenize scans the whole input, trivia included.
func Tokenize(input []byte, vocab *token.Vocabulary, opts ...Option) ([]token.Token, error) {
	l, err := New(input, vocab, opts...)
	if err != nil {
		return nil, err
	}
	var tokens []token.Token
	for {
		tok, ok := l.Next()
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) Position() token.Position {
	return token.Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	r, size := utf8.DecodeRune(l.input[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

// Next returns the next token, or false at the end of input.
func (l *Lexer) Next() (token.Token, bool) {
	if l.pos >= len(l.input) {
		return token.Token{}, false
	}
	start := l.Position()
	ch := l.peek()

	switch {
	case ch == '-' && l.peekN(1) == '-':
		return l.scanLineComment(start), true
	case ch == '/' && l.peekN(1) == '*':
		return l.scanBlockComment(start), true
	case isSpace(ch):
		return l.scanWhitespace(start), true
	case ch == '$' && l.peekN(1) == '$':
		return l.scanChameleon(start), true
	case isDigit(ch) || (ch == '.' && isDigit(l.peekN(1))):
		return l.scanNumber(start), true
	case ch == '\'':
		return l.scanQuoted(start, '\'', IDString), true
	case ch == '"':
		return l.scanQuoted(start, '"', IDQuotedIdentifier), true
	}

	r, _ := utf8.DecodeRune(l.input[l.pos:])
	if isWordStart(r) {
		return l.scanWord(start), true
	}
	return l.scanSymbol(start), true
}

func (l *Lexer) scanWhitespace(start token.Position) token.Token {
	for isSpace(l.peek()) {
		l.advance()
	}
	return l.token(IDWhitespace, start)
}

func (l *Lexer) scanLineComment(start token.Position) token.Token {
	l.advanceN(2)
	for l.peek() != 0 && l.peek() != '\n' {
		l.advance()
	}
	return l.token(IDComment, start)
}

func (l *Lexer) scanBlockComment(start token.Position) token.Token {
	l.advanceN(2)
	for {
		if l.pos >= len(l.input) {
			break
		}
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			break
		}
		l.advance()
	}
	return l.token(IDComment, start)
}

// scanChameleon consumes a $$-delimited embedded block. An unterminated
// block runs to the end of input.
func (l *Lexer) scanChameleon(start token.Position) token.Token {
	l.advanceN(2)
	for l.pos < len(l.input) {
		if l.peek() == '$' && l.peekN(1) == '$' {
			l.advanceN(2)
			break
		}
		l.advance()
	}
	return l.token(IDChameleon, start)
}

func (l *Lexer) scanNumber(start token.Position) token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		n := 1
		if l.peekN(1) == '+' || l.peekN(1) == '-' {
			n = 2
		}
		if isDigit(l.peekN(n)) {
			l.advanceN(n)
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	return l.token(IDNumber, start)
}

// scanQuoted reads a quote-delimited token. A doubled quote is an escaped
// quote. Unterminated literals produce an error token.
func (l *Lexer) scanQuoted(start token.Position, quote byte, id string) token.Token {
	l.advance()
	for {
		if l.pos >= len(l.input) {
			return l.token(IDError, start)
		}
		if l.peek() == quote {
			if l.peekN(1) == quote {
				l.advanceN(2)
				continue
			}
			l.advance()
			return l.token(id, start)
		}
		l.advance()
	}
}

func (l *Lexer) scanWord(start token.Position) token.Token {
	for l.pos < len(l.input) {
		r, _ := utf8.DecodeRune(l.input[l.pos:])
		if !isWordPart(r) {
			break
		}
		l.advance()
	}
	literal := string(l.input[start.Offset:l.pos])
	if t, ok := l.vocab.Keyword(literal); ok {
		return l.tokenOf(t, start)
	}
	return l.token(token.IDIdentifier, start)
}

func (l *Lexer) scanSymbol(start token.Position) token.Token {
	rest := l.input[l.pos:]
	for _, sym := range l.symbols {
		if strings.HasPrefix(string(rest[:min(len(rest), len(sym))]), sym) {
			l.advanceN(utf8.RuneCountInString(sym))
			t, _ := l.vocab.Symbol(sym)
			return l.tokenOf(t, start)
		}
	}
	l.advance()
	return l.token(IDError, start)
}

func (l *Lexer) token(id string, start token.Position) token.Token {
	return l.tokenOf(l.types[id], start)
}

func (l *Lexer) tokenOf(t *token.Type, start token.Position) token.Token {
	end := l.Position()
	return token.Token{
		Type:    t,
		Span:    token.Span{Start: start, End: end},
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWordStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isWordPart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
