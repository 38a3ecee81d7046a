package dialect

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/sqlgram/ebnf/earley"
	"github.com/dhamidi/sqlgram/grammar"
	"github.com/dhamidi/sqlgram/parser"
	"github.com/dhamidi/sqlgram/tree"
)

func parse(t *testing.T, src string, opts ...Option) *Result {
	t.Helper()
	res, err := ANSI().Parse(context.Background(), []byte(src), opts...)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return res
}

func hasExpected(res *Result, name string) bool {
	for _, d := range res.Diagnostics {
		if slices.Contains(d.Expected, name) {
			return true
		}
	}
	return false
}

func TestANSIBuilds(t *testing.T) {
	d, err := ansi()
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Grammar.Verify(); err != nil {
		t.Errorf("EBNF export does not verify: %v\n%s", err, d.Grammar.EBNF())
	}
	for _, id := range []string{"select_statement", "expression", "create_table_statement", "returning_clause"} {
		if _, ok := d.Grammar.Named(id); !ok {
			t.Errorf("grammar has no %s", id)
		}
	}
}

var validStatements = []struct {
	name string
	src  string
	node string
}{
	{"star", "select * from t", "from_clause"},
	{"clauses", "select distinct a, b as c from s.t where a = 1 and b is not null order by a desc", "order_by_clause"},
	{"joins and aggregates", "select t.*, count(*), max(x) from t join u on t.id = u.id group by t.a having count(*) > 1", "join_clause"},
	{"arithmetic", "select (1 + 2) * 3, -x, 'a' || 'b' from t", "expression"},
	{"derived table", "select x from (select y from u) v", "from_clause"},
	{"in lists", "select x from t where y in (1, 2) and z not in (select w from u)", "where_clause"},
	{"insert values", "insert into t (a, b) values (1, 'x'), (2, null)", "values_clause"},
	{"insert select", "insert into t select * from u", "insert_statement"},
	{"update", "update t set a = 1, b = b + 1 where c = 2", "set_clause"},
	{"delete", "delete from t where x <> 1", "delete_statement"},
	{"create table", "create table s.t (id integer primary key, name varchar(20) not null default 'x', primary key (id))", "table_constraint"},
	{"several statements", "select x from t; select y from u;", "select_statement"},
	{"trivia", "-- leading comment\nselect /* inline */ x from t", "select_statement"},
	{"quoted identifier", `select "Weird Name" from t`, "identifier:column"},
	{"chameleon block", "do $$ begin end $$; select 1", "do_statement"},
}

func TestParseValidStatements(t *testing.T) {
	for _, tt := range validStatements {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, tt.src)
			if !res.Match.IsFull() {
				t.Errorf("got %s, want a full match", res.Match)
			}
			if res.Match.Tokens != len(res.Tokens) {
				t.Errorf("matched %d of %d tokens", res.Match.Tokens, len(res.Tokens))
			}
			if len(res.Diagnostics) > 0 {
				t.Errorf("unexpected diagnostics: %v", res.Diagnostics)
			}
			if res.Root.Find(tt.node) == nil {
				t.Errorf("no %s node:\n%s", tt.node, res.Root)
			}
		})
	}
}

// The EBNF export must accept every statement the parser accepts.
func TestEBNFAcceptsValidStatements(t *testing.T) {
	d := ANSI()
	g, err := grammar.CheckEBNF("ansi.ebnf", strings.NewReader(d.Grammar.EBNF()), d.Grammar.StartProduction())
	if err != nil {
		t.Fatal(err)
	}
	r, err := earley.New(g, d.Grammar.StartProduction(), d.Vocabulary())
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range validStatements {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := d.Tokenize([]byte(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			if err := r.Recognize(tokens); err != nil {
				t.Error(err)
			}
		})
	}

	tokens, err := d.Tokenize([]byte("select x, from t"))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Recognize(tokens); err == nil {
		t.Error("trailing comma accepted")
	}
}

func TestReservedWordsAsNames(t *testing.T) {
	res := parse(t, "select key, count from t")
	if !res.Match.IsFull() {
		t.Fatalf("got %s:\n%s", res.Match, res.Root)
	}
	var columns []string
	res.Root.Walk(func(n *tree.Node) bool {
		if n.Kind() == "identifier:column" {
			columns = append(columns, n.TokenLiteral())
		}
		return true
	})
	if diff := cmp.Diff([]string{"key", "count"}, columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	res = parse(t, "select count(x) from t")
	if res.Root.Find("function_call") == nil {
		t.Errorf("count(x) is not a function call:\n%s", res.Root)
	}
}

func TestParseReportsErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
		node     string
	}{
		{"missing select list", "select from t", "identifier", "from_clause"},
		{"missing condition", "select x from t where", "identifier", "where_clause"},
		{"trailing comma", "select x, from t", "'*'", "from_clause"},
		{"unclosed parenthesis", "select x from t where y = (1 + 2", "')'", "where_clause"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, tt.src)
			if !res.Match.IsPartial() {
				t.Errorf("got %s, want a partial match", res.Match)
			}
			if !hasExpected(res, tt.expected) {
				t.Errorf("%s not expected: %v", tt.expected, res.Diagnostics)
			}
			if res.Root.Find(tt.node) == nil {
				t.Errorf("no %s node:\n%s", tt.node, res.Root)
			}
		})
	}
}

func TestParseSkipsGarbageBetweenStatements(t *testing.T) {
	res := parse(t, "select x; ) ) select y")
	if res.Match != (parser.Result{Type: parser.PartialMatch, Tokens: 7}) {
		t.Errorf("got %s", res.Match)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(res.Diagnostics), res.Diagnostics)
	}
	for _, d := range res.Diagnostics {
		if !strings.HasPrefix(d.Message, tree.RecoveredMessage) {
			t.Errorf("diagnostic %q", d.Message)
		}
	}
	var statements int
	res.Root.Walk(func(n *tree.Node) bool {
		if n.Kind() == "select_statement" {
			statements++
		}
		return true
	})
	if statements != 2 {
		t.Errorf("got %d statements:\n%s", statements, res.Root)
	}
}

func TestReturningNeedsLanguageVersion(t *testing.T) {
	const src = "delete from t where x = 1 returning x"

	old := parse(t, src, WithParserOptions(parser.WithLanguageVersion(ReturningVersion-1)))
	if old.Match.IsFull() || len(old.Diagnostics) == 0 {
		t.Errorf("version %d accepted RETURNING: %s", ReturningVersion-1, old.Match)
	}

	for _, version := range []int{0, ReturningVersion} {
		res := parse(t, src, WithParserOptions(parser.WithLanguageVersion(version)))
		if !res.Match.IsFull() {
			t.Errorf("version %d: got %s:\n%s", version, res.Match, res.Root)
		}
		if res.Root.Find("returning_clause") == nil {
			t.Errorf("version %d: no returning clause:\n%s", version, res.Root)
		}
	}
}

func TestPlaceholderMatchesExpectedToken(t *testing.T) {
	const src = "delete __complete__ t"

	res := parse(t, src, WithPlaceholder("__complete__"))
	if !res.Match.IsFull() || len(res.Diagnostics) > 0 {
		t.Errorf("got %s, %v", res.Match, res.Diagnostics)
	}

	res = parse(t, src)
	if res.Match.IsFull() {
		t.Errorf("without placeholder: got %s", res.Match)
	}
}

func TestParsePositions(t *testing.T) {
	res := parse(t, "select x\nfrom", WithFile("query.sql"))
	if len(res.Diagnostics) == 0 {
		t.Fatal("no diagnostics")
	}
	d := res.Diagnostics[0]
	if d.Span.Start.File != "query.sql" || d.Span.Start.Line != 2 {
		t.Errorf("diagnostic at %s", d.Span.Start)
	}
}

func TestParseCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ANSI().Parse(ctx, []byte("select x from t"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestConcurrentParses(t *testing.T) {
	const src = "select a, count(*) from t where b = 1 group by a; delete from u"
	want := parse(t, src).Root.String()

	var wg sync.WaitGroup
	trees := make([]string, 8)
	errs := make([]error, len(trees))
	for i := range trees {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := ANSI().Parse(context.Background(), []byte(src))
			if err != nil {
				errs[i] = err
				return
			}
			trees[i] = res.Root.String()
		}()
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		t.Fatal(err)
	}
	for i, got := range trees {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("parse %d differs (-want +got):\n%s", i, diff)
		}
	}
}
