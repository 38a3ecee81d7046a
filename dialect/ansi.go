package dialect

import (
	"strings"
	"sync"

	"github.com/dhamidi/sqlgram/grammar"
	"github.com/dhamidi/sqlgram/lexer"
	"github.com/dhamidi/sqlgram/token"
)

// ReturningVersion is the first language version with RETURNING clauses.
const ReturningVersion = 2

type word struct {
	text  string
	cat   token.Category
	flags token.Flag
}

const (
	reserved     = token.Reserved
	landmark     = token.Reserved | token.Landmark
	suppressible = token.Reserved | token.Suppressible
)

var ansiWords = []word{
	{"select", token.CategoryKeyword, landmark},
	{"from", token.CategoryKeyword, landmark},
	{"where", token.CategoryKeyword, landmark},
	{"group", token.CategoryKeyword, landmark},
	{"having", token.CategoryKeyword, landmark},
	{"order", token.CategoryKeyword, landmark},
	{"insert", token.CategoryKeyword, landmark},
	{"values", token.CategoryKeyword, landmark},
	{"update", token.CategoryKeyword, landmark},
	{"set", token.CategoryKeyword, landmark},
	{"delete", token.CategoryKeyword, landmark},
	{"create", token.CategoryKeyword, landmark},
	{"join", token.CategoryKeyword, landmark},
	{"returning", token.CategoryKeyword, landmark},
	{"do", token.CategoryKeyword, landmark},
	{"by", token.CategoryKeyword, reserved},
	{"into", token.CategoryKeyword, reserved},
	{"table", token.CategoryKeyword, reserved},
	{"as", token.CategoryKeyword, reserved},
	{"and", token.CategoryKeyword, reserved},
	{"or", token.CategoryKeyword, reserved},
	{"not", token.CategoryKeyword, reserved},
	{"null", token.CategoryKeyword, reserved},
	{"is", token.CategoryKeyword, reserved},
	{"in", token.CategoryKeyword, reserved},
	{"like", token.CategoryKeyword, reserved},
	{"true", token.CategoryKeyword, reserved},
	{"false", token.CategoryKeyword, reserved},
	{"on", token.CategoryKeyword, reserved},
	{"inner", token.CategoryKeyword, reserved},
	{"left", token.CategoryKeyword, reserved},
	{"outer", token.CategoryKeyword, reserved},
	{"distinct", token.CategoryKeyword, reserved},
	{"all", token.CategoryKeyword, reserved},
	{"asc", token.CategoryKeyword, reserved},
	{"desc", token.CategoryKeyword, reserved},
	{"primary", token.CategoryKeyword, reserved},
	{"default", token.CategoryKeyword, reserved},
	{"key", token.CategoryKeyword, suppressible},
	{"integer", token.CategoryDatatype, reserved},
	{"varchar", token.CategoryDatatype, reserved},
	{"boolean", token.CategoryDatatype, reserved},
	{"text", token.CategoryDatatype, suppressible},
	{"date", token.CategoryDatatype, suppressible},
	{"count", token.CategoryFunction, suppressible},
	{"sum", token.CategoryFunction, suppressible},
	{"min", token.CategoryFunction, suppressible},
	{"max", token.CategoryFunction, suppressible},
	{"avg", token.CategoryFunction, suppressible},
}

var ansiSymbols = []struct {
	id, value string
	cat       token.Category
	flags     token.Flag
}{
	{token.IDDot, ".", token.CategoryCharacter, 0},
	{token.IDLeftParen, "(", token.CategoryCharacter, 0},
	{"CHR_RIGHT_PARENTHESIS", ")", token.CategoryCharacter, 0},
	{"CHR_COMMA", ",", token.CategoryCharacter, 0},
	{"CHR_SEMICOLON", ";", token.CategoryCharacter, token.Landmark},
	{"OPR_PLUS", "+", token.CategoryOperator, 0},
	{"OPR_MINUS", "-", token.CategoryOperator, 0},
	{"OPR_ASTERISK", "*", token.CategoryOperator, 0},
	{"OPR_SLASH", "/", token.CategoryOperator, 0},
	{"OPR_CONCAT", "||", token.CategoryOperator, 0},
	{"OPR_EQUAL", "=", token.CategoryOperator, 0},
	{"OPR_NOT_EQUAL", "<>", token.CategoryOperator, 0},
	{"OPR_BANG_EQUAL", "!=", token.CategoryOperator, 0},
	{"OPR_LESS", "<", token.CategoryOperator, 0},
	{"OPR_LESS_EQUAL", "<=", token.CategoryOperator, 0},
	{"OPR_GREATER", ">", token.CategoryOperator, 0},
	{"OPR_GREATER_EQUAL", ">=", token.CategoryOperator, 0},
}

// wordID is the token type ID of a dialect word: KW_SELECT, FN_COUNT,
// DT_INTEGER.
func wordID(w word) string {
	prefix := "KW_"
	switch w.cat {
	case token.CategoryFunction:
		prefix = "FN_"
	case token.CategoryDatatype:
		prefix = "DT_"
	}
	return prefix + strings.ToUpper(w.text)
}

func ansiVocabulary() *token.Vocabulary {
	v := token.NewVocabulary()
	v.Define(token.IDIdentifier, "", token.CategoryIdentifier, 0).Pattern = `( "a" … "z" | "_" ) { "a" … "z" | "0" … "9" | "_" }`
	v.Define(lexer.IDQuotedIdentifier, "", token.CategoryIdentifier, 0)
	v.Define(lexer.IDWhitespace, "", token.CategoryWhitespace, 0)
	v.Define(lexer.IDComment, "", token.CategoryComment, 0)
	v.Define(lexer.IDNumber, "", token.CategoryNumeric, 0).Pattern = `"0" … "9" { "0" … "9" } [ "." "0" … "9" { "0" … "9" } ]`
	v.Define(lexer.IDString, "", token.CategoryLiteral, 0)
	v.Define(lexer.IDChameleon, "", token.CategoryChameleon, 0)
	v.Define(lexer.IDError, "", token.CategoryUnknown, 0)
	for _, s := range ansiSymbols {
		v.Define(s.id, s.value, s.cat, s.flags)
	}
	for _, w := range ansiWords {
		v.Define(wordID(w), w.text, w.cat, w.flags)
	}
	return v
}

// ansiGrammar builds the statements of the dialect on top of v.
func ansiGrammar(v *token.Vocabulary) (*grammar.Grammar, error) {
	b := grammar.NewBuilder(v)
	kw := func(text string) *grammar.Token { return b.Token("KW_" + strings.ToUpper(text)) }
	parens := func(inner grammar.Item) *grammar.Wrapper {
		return b.Wrapper(token.IDLeftParen, "CHR_RIGHT_PARENTHESIS", inner)
	}
	commaList := func(body grammar.Element) *grammar.Iteration {
		return b.Iteration(body, grammar.Separator("CHR_COMMA"))
	}

	expression := b.Named("expression")
	selectStatement := b.Statement("select_statement")

	columnRef := b.Qualified(token.IDDot,
		[]grammar.Item{
			grammar.Optional(b.Identifier("schema")),
			grammar.Optional(b.Identifier("table")),
			b.Identifier("column"),
		},
		[]grammar.Item{
			grammar.Optional(b.Identifier("schema")),
			b.Identifier("table"),
			b.Token("OPR_ASTERISK"),
		},
	)
	tableName := b.Qualified(token.IDDot, []grammar.Item{
		grammar.Optional(b.Identifier("schema")),
		b.Identifier("table"),
	})
	alias := b.Seq(grammar.Optional(kw("as")), b.Identifier("alias", grammar.Alias()))

	literal := b.Tokens(lexer.IDNumber, lexer.IDString, "KW_NULL", "KW_TRUE", "KW_FALSE")
	functionCall := b.Named("function_call",
		b.Tokens("FN_COUNT", "FN_SUM", "FN_MIN", "FN_MAX", "FN_AVG"),
		parens(grammar.Optional(b.OneOf(
			b.Token("OPR_ASTERISK"),
			b.Seq(grammar.Optional(kw("distinct")), commaList(expression)),
		))),
	)
	primary := b.Sortable(
		literal,
		functionCall,
		parens(b.OneOf(selectStatement, expression)),
		columnRef,
	)
	postfix := b.OneOf(
		b.Seq(kw("is"), grammar.Optional(kw("not")), kw("null")),
		b.Seq(grammar.Optional(kw("not")), kw("in"), parens(b.OneOf(selectStatement, commaList(expression)))),
	)
	operand := b.Seq(
		grammar.Optional(b.Tokens("KW_NOT", "OPR_MINUS")),
		primary,
		grammar.Optional(postfix),
	)
	b.Named("expression", b.Iteration(operand, grammar.Separator(
		"OPR_PLUS", "OPR_MINUS", "OPR_ASTERISK", "OPR_SLASH", "OPR_CONCAT",
		"OPR_EQUAL", "OPR_NOT_EQUAL", "OPR_BANG_EQUAL",
		"OPR_LESS", "OPR_LESS_EQUAL", "OPR_GREATER", "OPR_GREATER_EQUAL",
		"KW_AND", "KW_OR", "KW_LIKE",
	)))

	selectList := commaList(b.Sortable(
		b.Token("OPR_ASTERISK"),
		b.Seq(expression, grammar.Optional(alias)),
	))
	join := b.Named("join_clause",
		grammar.Optional(b.Tokens("KW_INNER", "KW_LEFT")),
		grammar.Optional(kw("outer")),
		kw("join"),
		tableName,
		grammar.Optional(alias),
		grammar.Optional(b.Seq(kw("on"), expression)),
	)
	tableRef := b.Seq(
		b.Sortable(parens(selectStatement), tableName),
		grammar.Optional(alias),
		grammar.Optional(b.Iteration(join)),
	)
	fromClause := b.Named("from_clause", kw("from"), commaList(tableRef))
	whereClause := b.Named("where_clause", kw("where"), expression)
	groupBy := b.Named("group_by_clause", kw("group"), kw("by"), commaList(expression))
	having := b.Named("having_clause", kw("having"), expression)
	orderBy := b.Named("order_by_clause", kw("order"), kw("by"),
		commaList(b.Seq(expression, grammar.Optional(b.Tokens("KW_ASC", "KW_DESC")))),
	)
	b.Statement("select_statement",
		kw("select"),
		grammar.Optional(b.Tokens("KW_DISTINCT", "KW_ALL")),
		selectList,
		grammar.Optional(fromClause),
		grammar.Optional(whereClause),
		grammar.Optional(groupBy),
		grammar.Optional(having),
		grammar.Optional(orderBy),
	)
	returning := grammar.Optional(grammar.Since(ReturningVersion,
		b.Named("returning_clause", kw("returning"), commaList(b.Seq(expression, grammar.Optional(alias)))),
	))

	columnList := parens(commaList(b.Identifier("column")))
	insertStatement := b.Statement("insert_statement",
		kw("insert"), kw("into"), tableName,
		grammar.Optional(columnList),
		b.OneOf(
			b.Named("values_clause", kw("values"), commaList(parens(commaList(expression)))),
			selectStatement,
		),
		returning,
	)
	updateStatement := b.Statement("update_statement",
		kw("update"), tableName, grammar.Optional(alias),
		b.Named("set_clause", kw("set"), commaList(b.Seq(b.Identifier("column"), b.Token("OPR_EQUAL"), expression))),
		grammar.Optional(whereClause),
		returning,
	)
	deleteStatement := b.Statement("delete_statement",
		kw("delete"), kw("from"), tableName,
		grammar.Optional(whereClause),
		returning,
	)

	dataType := b.Sortable(
		b.Seq(b.Token("DT_VARCHAR"), grammar.Optional(parens(b.Token(lexer.IDNumber)))),
		b.Tokens("DT_INTEGER", "DT_BOOLEAN", "DT_TEXT", "DT_DATE"),
	)
	columnConstraint := b.OneOf(
		b.Seq(kw("not"), kw("null")),
		kw("null"),
		b.Seq(kw("primary"), kw("key")),
		b.Seq(kw("default"), expression),
	)
	tableElement := b.Sortable(
		b.Named("table_constraint", kw("primary"), kw("key"), columnList),
		b.Named("column_definition",
			b.Identifier("column", grammar.Definition()),
			dataType,
			grammar.Optional(b.Iteration(columnConstraint)),
		),
	)
	createTable := b.Statement("create_table_statement",
		kw("create"), kw("table"), tableName,
		parens(commaList(tableElement)),
	)
	// the body of a DO block is a chameleon token that follows the keyword
	doStatement := b.Statement("do_statement", kw("do"))

	statement := b.OneOf(selectStatement, insertStatement, updateStatement, deleteStatement, createTable, doStatement)
	script := b.Iteration(b.Seq(grammar.Optional(statement), grammar.Optional(b.Token("CHR_SEMICOLON"))))
	return b.Build(script)
}

var ansi = sync.OnceValues(func() (*Dialect, error) {
	v := ansiVocabulary()
	g, err := ansiGrammar(v)
	if err != nil {
		return nil, err
	}
	return New("ansi", g), nil
})

// ANSI returns the built-in ANSI-flavored dialect. It is built on first use
// and shared afterwards.
func ANSI() *Dialect {
	d, err := ansi()
	if err != nil {
		panic("dialect: ansi grammar: " + err.Error())
	}
	return d
}
