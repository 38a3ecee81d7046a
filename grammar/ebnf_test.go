package grammar

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/sqlgram/token"
)

func TestEBNFExport(t *testing.T) {
	v := testVocabulary()
	b := NewBuilder(v)
	expr := b.Named("expression")
	b.Named("expression", b.OneOf(
		b.Token("NUMBER"),
		b.Qualified(token.IDDot, []Item{Optional(b.Identifier("table")), b.Identifier("column")}),
		b.Wrapper(token.IDLeftParen, "CHR_RIGHT_PARENTHESIS", expr),
	))
	query := b.Statement("select_statement",
		b.Token("KW_SELECT"),
		Optional(b.Token("KW_DISTINCT")),
		b.Iteration(expr, Separator("CHR_COMMA")),
	)
	g, err := b.Build(query)
	if err != nil {
		t.Fatal(err)
	}

	out := g.EBNF()
	for _, want := range []string{
		`SelectStatement = "SELECT" [ "DISTINCT" ] Expression { "," Expression } .`,
		`Expression = ( number | ( identifier "." identifier | identifier ) | "(" Expression ")" ) .`,
		`number = "<number>" .`,
		`identifier = "<identifier>" .`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("EBNF output missing %q:\n%s", want, out)
		}
	}
	var ids []string
	for _, e := range g.Productions() {
		ids = append(ids, e.ID())
	}
	if diff := cmp.Diff([]string{"expression", "select_statement"}, ids); diff != "" {
		t.Errorf("Productions() mismatch (-want +got):\n%s", diff)
	}
	if g.StartProduction() != "SelectStatement" {
		t.Errorf("StartProduction() = %q", g.StartProduction())
	}
	if err := g.Verify(); err != nil {
		t.Errorf("Verify() = %v\n%s", err, out)
	}
}

func TestEBNFUsesTokenPatterns(t *testing.T) {
	v := testVocabulary()
	num, _ := v.Lookup("NUMBER")
	num.Pattern = `"0" … "9" { "0" … "9" }`

	b := NewBuilder(v)
	g, err := b.Build(b.Named("root", b.Token("NUMBER")))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(g.EBNF(), `number = "0" … "9" { "0" … "9" } .`) {
		t.Errorf("pattern not used:\n%s", g.EBNF())
	}
	if err := g.Verify(); err != nil {
		t.Error(err)
	}
}

func TestCheckEBNF(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		start   string
		wantErr string
	}{
		{"valid", `Root = "a" Tail . Tail = { "b" } .`, "Root", ""},
		{"syntax only", `Root = "a" Missing .`, "", ""},
		{"undefined production", `Root = "a" Missing .`, "Root", "verify"},
		{"syntax error", `Root = "a" `, "Root", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckEBNF("test.ebnf", strings.NewReader(tt.src), tt.start)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("CheckEBNF() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("CheckEBNF() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
