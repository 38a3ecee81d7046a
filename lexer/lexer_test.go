package lexer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/sqlgram/token"
)

func testVocabulary() *token.Vocabulary {
	v := token.NewVocabulary()
	v.Define(token.IDIdentifier, "", token.CategoryIdentifier, 0)
	v.Define(IDQuotedIdentifier, "", token.CategoryIdentifier, 0)
	v.Define(IDWhitespace, "", token.CategoryWhitespace, 0)
	v.Define(IDComment, "", token.CategoryComment, 0)
	v.Define(IDNumber, "", token.CategoryNumeric, 0)
	v.Define(IDString, "", token.CategoryLiteral, 0)
	v.Define(IDChameleon, "", token.CategoryChameleon, 0)
	v.Define(IDError, "", token.CategoryUnknown, 0)
	v.Define(token.IDDot, ".", token.CategoryCharacter, 0)
	v.Define(token.IDLeftParen, "(", token.CategoryCharacter, 0)
	v.Define("CHR_RIGHT_PARENTHESIS", ")", token.CategoryCharacter, 0)
	v.Define("CHR_COMMA", ",", token.CategoryCharacter, 0)
	v.Define("CHR_SEMICOLON", ";", token.CategoryCharacter, token.Landmark)
	v.Define("OPR_LESS", "<", token.CategoryOperator, 0)
	v.Define("OPR_LESS_EQUAL", "<=", token.CategoryOperator, 0)
	v.Define("OPR_NOT_EQUAL", "<>", token.CategoryOperator, 0)
	v.Define("OPR_MINUS", "-", token.CategoryOperator, 0)
	v.Define("KW_SELECT", "select", token.CategoryKeyword, token.Reserved|token.Landmark)
	v.Define("KW_FROM", "from", token.CategoryKeyword, token.Reserved|token.Landmark)
	return v
}

func kinds(t *testing.T, src string) []string {
	t.Helper()
	tokens, err := Tokenize([]byte(src), testVocabulary())
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var out []string
	for _, tok := range tokens {
		if tok.Type.IsTrivia() {
			continue
		}
		out = append(out, tok.Type.ID+":"+tok.Literal)
	}
	return out
}

func TestLexerNew(t *testing.T) {
	l, err := New([]byte("select"), testVocabulary(), WithFile("query.sql"))
	if err != nil {
		t.Fatal(err)
	}
	pos := l.Position()
	if pos.File != "query.sql" || pos.Line != 1 || pos.Column != 1 || pos.Offset != 0 {
		t.Errorf("Position() = %+v", pos)
	}
}

func TestLexerMissingTypes(t *testing.T) {
	v := token.NewVocabulary()
	v.Define(token.IDIdentifier, "", token.CategoryIdentifier, 0)
	_, err := New(nil, v)
	if err == nil {
		t.Fatal("expected an error for an incomplete vocabulary")
	}
	if !strings.Contains(err.Error(), IDChameleon) {
		t.Errorf("error %q does not name %s", err, IDChameleon)
	}
}

func TestLexerTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"keywords ignore case", "SeLeCt a FROM b", []string{"KW_SELECT:SeLeCt", "IDENTIFIER:a", "KW_FROM:FROM", "IDENTIFIER:b"}},
		{"qualified", "s.t.c", []string{"IDENTIFIER:s", "CHR_DOT:.", "IDENTIFIER:t", "CHR_DOT:.", "IDENTIFIER:c"}},
		{"longest operator", "a<=b<>c<d", []string{"IDENTIFIER:a", "OPR_LESS_EQUAL:<=", "IDENTIFIER:b", "OPR_NOT_EQUAL:<>", "IDENTIFIER:c", "OPR_LESS:<", "IDENTIFIER:d"}},
		{"numbers", "1 2.5 .5 3e10 4e", []string{"NUMBER:1", "NUMBER:2.5", "NUMBER:.5", "NUMBER:3e10", "NUMBER:4", "IDENTIFIER:e"}},
		{"string with escaped quote", "'it''s'", []string{"STRING:'it''s'"}},
		{"quoted identifier", `"Order Date"`, []string{`QUOTED_IDENTIFIER:"Order Date"`}},
		{"unterminated string", "'abc", []string{"ERROR:'abc"}},
		{"comments", "a -- note\n/* block */ b", []string{"IDENTIFIER:a", "IDENTIFIER:b"}},
		{"minus is not a comment", "a - b", []string{"IDENTIFIER:a", "OPR_MINUS:-", "IDENTIFIER:b"}},
		{"chameleon", "select $$ begin; end $$;", []string{"KW_SELECT:select", "CHAMELEON:$$ begin; end $$", "CHR_SEMICOLON:;"}},
		{"unknown character", "a # b", []string{"IDENTIFIER:a", "ERROR:#", "IDENTIFIER:b"}},
		{"unicode identifier", "größe", []string{"IDENTIFIER:größe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, kinds(t, tt.input)); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLexerPositions(t *testing.T) {
	tokens, err := Tokenize([]byte("select\n  a"), testVocabulary(), WithFile("q.sql"))
	if err != nil {
		t.Fatal(err)
	}
	last := tokens[len(tokens)-1]
	if last.Literal != "a" {
		t.Fatalf("last token = %v", last)
	}
	want := token.Position{File: "q.sql", Offset: 9, Line: 2, Column: 3}
	if diff := cmp.Diff(want, last.Span.Start); diff != "" {
		t.Errorf("position mismatch (-want +got):\n%s", diff)
	}
	if got := last.Span.Start.String(); got != "q.sql:2:3" {
		t.Errorf("Position.String() = %q", got)
	}
}

func TestLexerCoversInput(t *testing.T) {
	src := "select a.b, 'x' from t -- done\n;"
	tokens, err := Tokenize([]byte(src), testVocabulary())
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Literal)
	}
	if sb.String() != src {
		t.Errorf("concatenated literals = %q, want %q", sb.String(), src)
	}
}
