package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dhamidi/sqlgram/dialect"
)

func newLexCmd() *cobra.Command {
	var includeTrivia bool

	cmd := &cobra.Command{
		Use:   "lex <file>",
		Short: "Print the tokens of a SQL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := readSource(filename)
			if err != nil {
				return err
			}

			tokens, err := dialect.ANSI().Tokenize(data, dialect.WithFile(filename))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, tok := range tokens {
				if tok.Type.IsTrivia() && !includeTrivia {
					continue
				}
				fmt.Fprintf(w, "%d:%d\t%s\t%q\n", tok.Span.Start.Line, tok.Span.Start.Column, tok.Type.ID, tok.Literal)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&includeTrivia, "trivia", false, "include whitespace and comments")

	return cmd
}

// readSource reads a file, or standard input for "-".
func readSource(filename string) ([]byte, error) {
	if filename == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read sql file: %w", err)
	}
	return data, nil
}
