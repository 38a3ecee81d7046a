package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/sqlgram/token"
	"github.com/dhamidi/sqlgram/tree"
)

const diagnosticSource = "sqlgram"

// toProtocolDiagnostics converts parse diagnostics to LSP diagnostics.
// Never nil, so that publishing an empty list clears the client's view.
func toProtocolDiagnostics(diags []tree.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	severity := protocol.DiagnosticSeverityError
	source := diagnosticSource
	for _, d := range diags {
		out = append(out, protocol.Diagnostic{
			Range:    toRange(d.Span),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}

// token positions are 1-based, protocol positions 0-based
func toPosition(p token.Position) protocol.Position {
	line, col := p.Line-1, p.Column-1
	return protocol.Position{
		Line:      protocol.UInteger(max(line, 0)),
		Character: protocol.UInteger(max(col, 0)),
	}
}

func toRange(s token.Span) protocol.Range {
	r := protocol.Range{Start: toPosition(s.Start), End: toPosition(s.End)}
	if r.End.Line < r.Start.Line || (r.End.Line == r.Start.Line && r.End.Character < r.Start.Character) {
		r.End = r.Start
	}
	return r
}
