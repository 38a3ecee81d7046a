package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/sqlgram/dialect"
	"github.com/dhamidi/sqlgram/tree"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(res *dialect.Result) error {
	text, err := e.MarshalText(res)
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText(res *dialect.Result) ([]byte, error) {
	out := jsonResult{
		Match:  res.Match.Type.String(),
		Tokens: res.Match.Tokens,
		Tree:   res.Root,
	}
	for _, d := range res.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, toJSONDiagnostic(d))
	}
	return json.MarshalIndent(out, "", "  ")
}

type jsonResult struct {
	Match       string           `json:"match"`
	Tokens      int              `json:"tokens"`
	Tree        *tree.Node       `json:"tree"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
}

type jsonDiagnostic struct {
	File     string       `json:"file,omitempty"`
	Start    jsonPosition `json:"start"`
	End      jsonPosition `json:"end"`
	Message  string       `json:"message"`
	Expected []string     `json:"expected,omitempty"`
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func toJSONDiagnostic(d tree.Diagnostic) jsonDiagnostic {
	return jsonDiagnostic{
		File:     d.Span.Start.File,
		Start:    jsonPosition{Line: d.Span.Start.Line, Column: d.Span.Start.Column},
		End:      jsonPosition{Line: d.Span.End.Line, Column: d.Span.End.Column},
		Message:  d.Message,
		Expected: d.Expected,
	}
}
