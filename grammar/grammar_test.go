package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/sqlgram/token"
)

func testVocabulary() *token.Vocabulary {
	v := token.NewVocabulary()
	v.Define(token.IDIdentifier, "", token.CategoryIdentifier, 0)
	v.Define("QUOTED_IDENTIFIER", "", token.CategoryIdentifier, 0)
	v.Define("NUMBER", "", token.CategoryNumeric, 0)
	v.Define(token.IDDot, ".", token.CategoryCharacter, 0)
	v.Define(token.IDLeftParen, "(", token.CategoryCharacter, 0)
	v.Define("CHR_RIGHT_PARENTHESIS", ")", token.CategoryCharacter, 0)
	v.Define("CHR_COMMA", ",", token.CategoryCharacter, 0)
	v.Define("CHR_STAR", "*", token.CategoryCharacter, 0)
	v.Define("KW_SELECT", "select", token.CategoryKeyword, token.Reserved|token.Landmark)
	v.Define("KW_FROM", "from", token.CategoryKeyword, token.Reserved|token.Landmark)
	v.Define("KW_DISTINCT", "distinct", token.CategoryKeyword, token.Reserved)
	v.Define("KW_BEGIN", "begin", token.CategoryKeyword, token.Reserved)
	v.Define("KW_END", "end", token.CategoryKeyword, token.Reserved)
	return v
}

func typeIDs(v *token.Vocabulary, s token.Set) []string {
	var out []string
	for _, i := range s.Indexes() {
		out = append(out, v.Type(i).ID)
	}
	return out
}

func TestBuildReportsMalformedGrammar(t *testing.T) {
	b := NewBuilder(testVocabulary())
	undefined := b.Named("expression")
	root := b.Named("script",
		b.Token("KW_SELECT"),
		b.Token("KW_UNKNOWN"),
		undefined,
		b.OneOf(),
		b.Iteration(nil),
	)

	g, err := b.Build(root)
	if g != nil {
		t.Fatal("Build returned a grammar for a malformed definition")
	}
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("error %v does not wrap ErrMalformed", err)
	}
	for _, want := range []string{
		"unknown token type KW_UNKNOWN",
		"named element expression is never defined",
		"has no alternatives",
		"has no body",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %q:\n%v", want, err)
		}
	}
}

func TestBuildRejectsIncompleteVocabulary(t *testing.T) {
	v := token.NewVocabulary()
	v.Define("KW_SELECT", "select", token.CategoryKeyword, token.Reserved)
	b := NewBuilder(v)
	_, err := b.Build(b.Named("root", b.Token("KW_SELECT")))
	if !errors.Is(err, token.ErrVocabulary) || !errors.Is(err, ErrMalformed) {
		t.Errorf("Build() error = %v, want vocabulary error wrapped as malformed grammar", err)
	}
}

func TestNamedDefinedTwice(t *testing.T) {
	b := NewBuilder(testVocabulary())
	b.Named("a", b.Token("KW_SELECT"))
	b.Named("a", b.Token("KW_FROM"))
	if _, err := b.Build(b.Named("a")); err == nil || !strings.Contains(err.Error(), "defined twice") {
		t.Errorf("Build() error = %v, want a redefinition error", err)
	}
}

func TestFirstAndFollowSets(t *testing.T) {
	v := testVocabulary()
	b := NewBuilder(v)
	distinct := b.Token("KW_DISTINCT")
	columns := b.Iteration(b.Identifier("column"), Separator("CHR_COMMA"))
	from := b.Token("KW_FROM")
	query := b.Named("query",
		b.Token("KW_SELECT"),
		Optional(distinct),
		columns,
		from,
		b.Identifier("table"),
	)
	g, err := b.Build(query)
	if err != nil {
		t.Fatal(err)
	}
	if g.Root != query {
		t.Fatal("root not preserved")
	}

	tests := []struct {
		name string
		got  token.Set
		want []string
	}{
		{"first(query)", query.First(), []string{"KW_SELECT"}},
		{"follow(distinct)", distinct.Follow(), []string{token.IDIdentifier, "QUOTED_IDENTIFIER"}},
		{"follow(columns)", columns.Follow(), []string{"KW_FROM"}},
		{"follow(column)", columns.Body.Follow(), []string{"CHR_COMMA", "KW_FROM"}},
		{"follow(separator)", columns.Separators[0].Follow(), []string{token.IDIdentifier, "QUOTED_IDENTIFIER"}},
		{"contains(columns)", columns.Contains(), []string{token.IDIdentifier, "QUOTED_IDENTIFIER", "CHR_COMMA"}},
		{"first required(query)", query.FirstRequired(), []string{"KW_SELECT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, typeIDs(v, tt.got)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if columns.FollowedBySeparator {
		t.Error("columns should not be followed by a separator")
	}
}

func TestFirstSetsOfRecursiveGrammar(t *testing.T) {
	v := testVocabulary()
	b := NewBuilder(v)
	expr := b.Named("expression")
	b.Named("expression", b.OneOf(
		b.Token("NUMBER"),
		b.Wrapper(token.IDLeftParen, "CHR_RIGHT_PARENTHESIS", expr),
	))
	g, err := b.Build(expr)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"NUMBER", token.IDLeftParen}, typeIDs(v, g.Root.First())); diff != "" {
		t.Errorf("first(expression) mismatch (-want +got):\n%s", diff)
	}
	if !g.Root.FirstRequired().IsEmpty() {
		t.Errorf("first required(expression) = %v, want empty", typeIDs(v, g.Root.FirstRequired()))
	}
	if diff := cmp.Diff([]string{"CHR_RIGHT_PARENTHESIS"}, typeIDs(v, g.Root.Follow())); diff != "" {
		t.Errorf("follow(expression) mismatch (-want +got):\n%s", diff)
	}
}

func TestFollowedBySeparator(t *testing.T) {
	b := NewBuilder(testVocabulary())
	list := b.Iteration(b.Token("NUMBER"), Separator("CHR_COMMA"))
	root := b.Named("root", list, b.Token("CHR_COMMA"), b.Token("CHR_STAR"))
	if _, err := b.Build(root); err != nil {
		t.Fatal(err)
	}
	if !list.FollowedBySeparator {
		t.Error("iteration followed by its own separator was not detected")
	}
}

func TestQualifiedVariants(t *testing.T) {
	b := NewBuilder(testVocabulary())
	schema := b.Identifier("schema")
	table := b.Identifier("table")
	column := b.Identifier("column")
	q := b.Qualified(token.IDDot, []Item{Optional(schema), table, Optional(column)})

	want := []string{
		"schema.table.column",
		"schema.table",
		"table.column",
		"table",
	}
	var got []string
	for _, v := range q.Variants {
		got = append(got, v.String())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("variants mismatch (-want +got):\n%s", diff)
	}
	if q.MaxLength != 3 {
		t.Errorf("MaxLength = %d, want 3", q.MaxLength)
	}
}

func TestQualifiedRejectsCompositeLeaves(t *testing.T) {
	b := NewBuilder(testVocabulary())
	q := b.Qualified(token.IDDot, []Item{b.Seq(b.Token("NUMBER"))})
	_, err := b.Build(b.Named("root", q))
	if err == nil || !strings.Contains(err.Error(), "is not a token or identifier") {
		t.Errorf("Build() error = %v", err)
	}
}

func TestWrapperStrength(t *testing.T) {
	b := NewBuilder(testVocabulary())
	reserved := b.Wrapper("KW_BEGIN", "KW_END", b.Token("NUMBER"))
	first := b.Wrapper(token.IDLeftParen, "CHR_RIGHT_PARENTHESIS", b.Token("NUMBER"))
	afterRequired := b.Wrapper(token.IDLeftParen, "CHR_RIGHT_PARENTHESIS", b.Token("NUMBER"))
	afterOptional := b.Wrapper(token.IDLeftParen, "CHR_RIGHT_PARENTHESIS", b.Token("NUMBER"))
	optional := b.Wrapper(token.IDLeftParen, "CHR_RIGHT_PARENTHESIS", b.Token("NUMBER"))

	root := b.Named("root",
		b.Seq(first, b.Token("KW_SELECT"), afterRequired, Optional(optional)),
		b.Seq(Optional(b.Token("KW_DISTINCT")), afterOptional),
		reserved,
	)
	if _, err := b.Build(root); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		w    *Wrapper
		want bool
	}{
		{"reserved begin", reserved, true},
		{"first child", first, false},
		{"after required sibling", afterRequired, true},
		{"after optional sibling", afterOptional, false},
		{"optional", optional, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.w.Strong != tt.want {
				t.Errorf("Strong = %v, want %v", tt.w.Strong, tt.want)
			}
		})
	}
}

func TestSortableOneOf(t *testing.T) {
	b := NewBuilder(testVocabulary())
	name := b.Identifier("column")
	number := b.Token("NUMBER")
	star := b.Token("CHR_STAR")
	qualified := b.Qualified(token.IDDot, []Item{b.Identifier("table"), b.Token("CHR_STAR")})
	o := b.Sortable(name, number, qualified, star)
	if _, err := b.Build(b.Named("root", o)); err != nil {
		t.Fatal(err)
	}
	var got []Element
	for _, c := range o.Children {
		got = append(got, c.Element)
	}
	want := []Element{number, star, name, qualified}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("alternative %d = %s, want %s", i, got[i], want[i])
		}
		if o.Children[i].Index != i {
			t.Errorf("alternative %d has index %d", i, o.Children[i].Index)
		}
	}
}

func TestExitAndVersion(t *testing.T) {
	b := NewBuilder(testVocabulary())
	s := b.Seq(
		b.Token("KW_SELECT"),
		Exit(b.Token("KW_DISTINCT")),
		Since(2, Optional(b.Token("NUMBER"))),
	)
	if s.ExitIndex != 1 || !s.IsExitIndex(0) || !s.IsExitIndex(1) || s.IsExitIndex(2) {
		t.Errorf("ExitIndex = %d", s.ExitIndex)
	}
	last := s.Children[2]
	if !last.Optional || last.Version != 2 {
		t.Errorf("child = %+v, want optional since version 2", last)
	}
	if !s.OptionalFrom(2) || s.OptionalFrom(1) {
		t.Error("OptionalFrom reports wrong result")
	}
}

func TestParseCounts(t *testing.T) {
	tests := []struct {
		spec    string
		want    []int
		wantErr bool
	}{
		{"1-3,5", []int{1, 2, 3, 5}, false},
		{" 2 ", []int{2}, false},
		{"4-2", nil, true},
		{"x", nil, true},
		{"", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseCounts(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCounts(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseCounts(%q) mismatch (-want +got):\n%s", tt.spec, diff)
			}
		})
	}
}

func TestIterationCounts(t *testing.T) {
	b := NewBuilder(testVocabulary())
	it := b.Iteration(b.Token("NUMBER"), MinIterations(1), Counts("2,4"))
	if !it.MatchesMin(1) || it.MatchesMin(0) {
		t.Error("MatchesMin")
	}
	if !it.MatchesCount(4) || it.MatchesCount(3) {
		t.Error("MatchesCount")
	}
}
