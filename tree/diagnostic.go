package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dhamidi/sqlgram/token"
)

// RecoveredMessage is the message of the error nodes covering tokens
// skipped during error recovery.
const RecoveredMessage = "Invalid or incomplete statement"

type Diagnostic struct {
	Span     token.Span
	Message  string
	Expected []string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Span.Start, d.Message)
}

// Diagnostics reports the error nodes and the expected-token sets recorded
// so far, ordered by position. An expectation at the start of an error
// node is reported as part of that node.
func (b *Builder) Diagnostics() []Diagnostic {
	expected := b.expectations()
	var out []Diagnostic
	covered := make(map[int]bool)

	var depth []int
	for i, ev := range b.events {
		switch ev.kind {
		case evOpen:
			if !ev.tombstone {
				depth = append(depth, i)
			}
		case evClose:
			open := b.events[depth[len(depth)-1]]
			depth = depth[:len(depth)-1]
			if open.element != nil {
				continue
			}
			d := Diagnostic{
				Span:    token.Span{Start: b.position(open.pos), End: b.endPosition(ev.pos)},
				Message: open.message,
			}
			if set, ok := expected[open.pos]; ok {
				d.Expected = b.describe(set)
				d.Message += ", expected one of: " + strings.Join(d.Expected, ", ")
				covered[open.pos] = true
			}
			out = append(out, d)
		}
	}

	for pos, set := range expected {
		if covered[pos] {
			continue
		}
		names := b.describe(set)
		start := b.position(pos)
		end := start
		if pos < len(b.tokens) {
			end = b.tokens[pos].Span.End
		}
		out = append(out, Diagnostic{
			Span:     token.Span{Start: start, End: end},
			Message:  "expected one of: " + strings.Join(names, ", "),
			Expected: names,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start.Offset < out[j].Span.Start.Offset
	})
	return out
}
