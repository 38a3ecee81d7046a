package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/dhamidi/sqlgram/tree"
)

var (
	locationColor = color.New(color.Bold)
	errorColor    = color.New(color.FgRed, color.Bold)
	caretColor    = color.New(color.FgGreen)
)

// printDiagnostics writes each diagnostic followed by the offending source
// line and a caret under the start column.
func printDiagnostics(w io.Writer, src []byte, diags []tree.Diagnostic) {
	lines := bytes.Split(src, []byte("\n"))
	for _, d := range diags {
		start := d.Span.Start
		locationColor.Fprintf(w, "%s: ", start)
		errorColor.Fprint(w, "error: ")
		fmt.Fprintln(w, d.Message)

		if start.Line < 1 || start.Line > len(lines) {
			continue
		}
		line := strings.TrimRight(string(lines[start.Line-1]), "\r")
		fmt.Fprintf(w, "  %s\n", line)
		col := min(max(start.Column-1, 0), utf8.RuneCountInString(line))
		caretColor.Fprintf(w, "  %s^\n", strings.Repeat(" ", col))
	}
}
