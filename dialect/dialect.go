// Package dialect ties a token vocabulary and a grammar into a ready to use
// SQL parser.
package dialect

import (
	"context"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/sqlgram/grammar"
	"github.com/dhamidi/sqlgram/lexer"
	"github.com/dhamidi/sqlgram/parser"
	"github.com/dhamidi/sqlgram/token"
	"github.com/dhamidi/sqlgram/tree"
)

// Dialect is a built grammar together with its vocabulary. It is
// immutable and safe for concurrent use.
type Dialect struct {
	Name    string
	Grammar *grammar.Grammar

	log commonlog.Logger
}

func New(name string, g *grammar.Grammar) *Dialect {
	return &Dialect{
		Name:    name,
		Grammar: g,
		log:     commonlog.GetLogger("sqlgram.dialect"),
	}
}

func (d *Dialect) Vocabulary() *token.Vocabulary {
	return d.Grammar.Vocabulary()
}

// Result is the outcome of parsing one source.
type Result struct {
	Root        *tree.Node
	Diagnostics []tree.Diagnostic
	// Match covers the whole input. It is a full match only for input
	// without syntax errors.
	Match parser.Result
	// Tokens are the significant tokens of the source.
	Tokens []token.Token
}

type config struct {
	file        string
	placeholder string
	parserOpts  []parser.Option
}

type Option func(*config)

// WithFile names the source in token positions and diagnostics.
func WithFile(name string) Option {
	return func(c *config) {
		c.file = name
	}
}

// WithPlaceholder sets the completion placeholder text; a token with this
// text matches whatever the grammar expects.
func WithPlaceholder(text string) Option {
	return func(c *config) {
		c.placeholder = text
	}
}

// WithParserOptions passes options through to the parser.
func WithParserOptions(opts ...parser.Option) Option {
	return func(c *config) {
		c.parserOpts = append(c.parserOpts, opts...)
	}
}

// Tokenize scans src with the dialect's vocabulary, trivia included.
func (d *Dialect) Tokenize(src []byte, opts ...Option) ([]token.Token, error) {
	cfg := newConfig(opts)
	tokens, err := lexer.Tokenize(src, d.Vocabulary(), lexer.WithFile(cfg.file))
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", cfg.name(), err)
	}
	return tokens, nil
}

// Parse parses every statement in src. Syntax errors do not make Parse
// fail; they are reported as diagnostics and error nodes. An error is
// returned when ctx is done before the input is consumed.
func (d *Dialect) Parse(ctx context.Context, src []byte, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	tokens, err := d.Tokenize(src, opts...)
	if err != nil {
		return nil, err
	}

	var treeOpts []tree.Option
	if cfg.file != "" {
		treeOpts = append(treeOpts, tree.WithFile(cfg.file))
	}
	if cfg.placeholder != "" {
		treeOpts = append(treeOpts, tree.WithDummyText(cfg.placeholder))
	}
	b := tree.New(tokens, d.Vocabulary(), treeOpts...)

	match, err := parser.ParseAll(ctx, d.Grammar.Root, b, cfg.parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", cfg.name(), err)
	}
	root, err := b.Tree()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", cfg.name(), err)
	}

	res := &Result{
		Root:        root,
		Diagnostics: b.Diagnostics(),
		Match:       match,
		Tokens:      b.Tokens(),
	}
	d.log.Debugf("parsed %s with %s: %s, %d diagnostics", cfg.name(), d.Name, match, len(res.Diagnostics))
	return res, nil
}

func newConfig(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) name() string {
	if c.file == "" {
		return "<input>"
	}
	return c.file
}
