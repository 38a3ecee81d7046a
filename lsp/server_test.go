package lsp

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/sqlgram/dialect"
	"github.com/dhamidi/sqlgram/token"
)

type notification struct {
	method string
	params protocol.PublishDiagnosticsParams
}

func newTestContext(t *testing.T, sent *[]notification) *glsp.Context {
	t.Helper()
	return &glsp.Context{
		Notify: func(method string, params any) {
			p, ok := params.(protocol.PublishDiagnosticsParams)
			if !ok {
				t.Fatalf("unexpected notification params %T", params)
			}
			*sent = append(*sent, notification{method: method, params: p})
		},
	}
}

func TestToRange(t *testing.T) {
	tests := []struct {
		name string
		span token.Span
		want protocol.Range
	}{
		{
			name: "single line",
			span: token.Span{
				Start: token.Position{Line: 1, Column: 8},
				End:   token.Position{Line: 1, Column: 12},
			},
			want: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 7},
				End:   protocol.Position{Line: 0, Character: 11},
			},
		},
		{
			name: "multi line",
			span: token.Span{
				Start: token.Position{Line: 2, Column: 1},
				End:   token.Position{Line: 4, Column: 3},
			},
			want: protocol.Range{
				Start: protocol.Position{Line: 1, Character: 0},
				End:   protocol.Position{Line: 3, Character: 2},
			},
		},
		{
			name: "zero position",
			span: token.Span{},
			want: protocol.Range{},
		},
		{
			name: "end before start",
			span: token.Span{
				Start: token.Position{Line: 3, Column: 5},
				End:   token.Position{Line: 3, Column: 2},
			},
			want: protocol.Range{
				Start: protocol.Position{Line: 2, Character: 4},
				End:   protocol.Position{Line: 2, Character: 4},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, toRange(tt.span)); diff != "" {
				t.Errorf("range mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWorkspaceUpdate(t *testing.T) {
	w := NewWorkspace(dialect.ANSI())
	const uri = "file:///tmp/q.sql"

	doc, err := w.Update(context.Background(), uri, 1, []byte("select x from t"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Path != "/tmp/q.sql" {
		t.Errorf("path = %q", doc.Path)
	}
	if !doc.Parsed.Match.IsFull() || len(doc.Parsed.Diagnostics) > 0 {
		t.Errorf("got %s, %v", doc.Parsed.Match, doc.Parsed.Diagnostics)
	}

	if _, err := w.Update(context.Background(), uri, 3, []byte("select from t")); err != nil {
		t.Fatal(err)
	}
	// an older version arriving late does not replace a newer one
	doc, err = w.Update(context.Background(), uri, 2, []byte("select y from u"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != 3 || len(doc.Parsed.Diagnostics) == 0 {
		t.Errorf("got version %d with %d diagnostics", doc.Version, len(doc.Parsed.Diagnostics))
	}

	if diff := cmp.Diff([]string{uri}, w.URIs()); diff != "" {
		t.Errorf("URIs mismatch (-want +got):\n%s", diff)
	}
	w.Close(uri)
	if _, ok := w.Get(uri); ok {
		t.Error("document still open after Close")
	}
}

func TestDiagnosticsArePublished(t *testing.T) {
	ls := NewServer("test", dialect.ANSI())
	var sent []notification
	ctx := newTestContext(t, &sent)
	const uri = "file:///tmp/q.sql"

	err := ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "sql", Version: 1, Text: "select x\nfrom"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sent) != 1 {
		t.Fatalf("got %d notifications", len(sent))
	}
	n := sent[0]
	if n.method != protocol.ServerTextDocumentPublishDiagnostics || n.params.URI != uri {
		t.Errorf("got %s for %s", n.method, n.params.URI)
	}
	if len(n.params.Diagnostics) == 0 {
		t.Fatal("no diagnostics for incomplete statement")
	}
	d := n.params.Diagnostics[0]
	if d.Range.Start.Line != 1 || d.Message == "" {
		t.Errorf("diagnostic %+v", d)
	}

	err = ls.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "select x\nfrom t"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := sent[len(sent)-1].params.Diagnostics; len(got) != 0 {
		t.Errorf("diagnostics after fix: %v", got)
	}

	text := "delete from"
	err = ls.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Text:         &text,
	})
	if err != nil {
		t.Fatal(err)
	}
	if doc, _ := ls.Workspace().Get(uri); doc == nil || doc.Version != 2 || string(doc.Text) != text {
		t.Errorf("document after save: %+v", doc)
	}
	if len(sent[len(sent)-1].params.Diagnostics) == 0 {
		t.Error("no diagnostics after save")
	}

	err = ls.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatal(err)
	}
	last := sent[len(sent)-1].params.Diagnostics
	if last == nil || len(last) != 0 {
		t.Errorf("close should publish an empty list, got %v", last)
	}
}

func TestInitializeAdvertisesFullSync(t *testing.T) {
	ls := NewServer("1.2.3", dialect.ANSI())
	res, err := ls.initialize(&glsp.Context{}, &protocol.InitializeParams{})
	if err != nil {
		t.Fatal(err)
	}
	init, ok := res.(protocol.InitializeResult)
	if !ok {
		t.Fatalf("result is %T", res)
	}
	if init.ServerInfo == nil || init.ServerInfo.Name != lsName || *init.ServerInfo.Version != "1.2.3" {
		t.Errorf("server info %+v", init.ServerInfo)
	}
	sync, ok := init.Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	if !ok {
		t.Fatalf("sync options are %T", init.Capabilities.TextDocumentSync)
	}
	if *sync.Change != protocol.TextDocumentSyncKindFull {
		t.Errorf("sync kind %v", *sync.Change)
	}
}
