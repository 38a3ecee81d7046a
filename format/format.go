// Package format encodes parse results for output.
package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/sqlgram/dialect"
)

type Encoder interface {
	Encode(res *dialect.Result) error
}

// NewEncoder returns the encoder for a named output format: tree, json or
// lines.
func NewEncoder(name string, w io.Writer, positions bool) (Encoder, error) {
	switch name {
	case "tree":
		return NewTreeEncoder(w, positions), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "lines":
		return NewLineEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format: %s", name)
}

type TreeEncoder struct {
	w         io.Writer
	positions bool
}

func NewTreeEncoder(w io.Writer, positions bool) *TreeEncoder {
	return &TreeEncoder{w: w, positions: positions}
}

func (e *TreeEncoder) Encode(res *dialect.Result) error {
	s := res.Root.String()
	if e.positions {
		s = res.Root.StringWithPositions()
	}
	_, err := fmt.Fprintln(e.w, s)
	return err
}
