package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/sqlgram/dialect"
	"github.com/dhamidi/sqlgram/tree"
)

// LineEncoder writes one tab separated line per node, in document order:
// depth, kind, start, end and the token text of leaves. It is meant for
// grep and awk.
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(res *dialect.Result) error {
	text, err := e.MarshalText(res)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(res *dialect.Result) ([]byte, error) {
	var sb strings.Builder
	e.write(&sb, res.Root, 0)
	return []byte(sb.String()), nil
}

func (e *LineEncoder) write(sb *strings.Builder, n *tree.Node, depth int) {
	if n == nil {
		return
	}
	start, end := n.Span.Start, n.Span.End
	fmt.Fprintf(sb, "%d\t%s\t%d:%d\t%d:%d", depth, n.Kind(), start.Line, start.Column, end.Line, end.Column)
	if n.Token != nil {
		fmt.Fprintf(sb, "\t%q", n.Token.Literal)
	}
	sb.WriteByte('\n')
	for _, c := range n.Children {
		e.write(sb, c, depth+1)
	}
}
