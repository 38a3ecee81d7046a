package main

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dhamidi/sqlgram/dialect"
	"github.com/dhamidi/sqlgram/ebnf/earley"
	"github.com/dhamidi/sqlgram/grammar"
)

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grammar",
		Short:         "Inspect and check grammars",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newGrammarEbnfCmd())
	cmd.AddCommand(newGrammarCheckCmd())
	cmd.AddCommand(newGrammarProductionsCmd())
	cmd.AddCommand(newGrammarRecognizeCmd())

	return cmd
}

func newGrammarEbnfCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:           "ebnf",
		Short:         "Print the dialect grammar as EBNF",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g := dialect.ANSI().Grammar
			fmt.Print(g.EBNF())
			if !verify {
				return nil
			}
			if err := g.Verify(); err != nil {
				printErrors(err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "verify the exported grammar from its start production")

	return cmd
}

func newGrammarCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:           "check <file>",
		Short:         "Parse and verify an EBNF grammar file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			f, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			if _, err := grammar.CheckEBNF(filename, f, startProduction); err != nil {
				printErrors(err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

func newGrammarProductionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "productions",
		Short: "List the named productions of the dialect with their first sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g := dialect.ANSI().Grammar
			vocab := g.Vocabulary()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, e := range g.Productions() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID(), e.Kind(), vocab.Describe(e.First()))
			}
			return w.Flush()
		},
	}
}

func newGrammarRecognizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "recognize <file>",
		Short:         "Check a SQL file against the exported EBNF grammar",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := readSource(filename)
			if err != nil {
				return err
			}

			d := dialect.ANSI()
			start := d.Grammar.StartProduction()
			g, err := grammar.CheckEBNF(d.Name+".ebnf", strings.NewReader(d.Grammar.EBNF()), start)
			if err != nil {
				printErrors(err)
				return err
			}
			r, err := earley.New(g, start, d.Vocabulary())
			if err != nil {
				return err
			}

			tokens, err := d.Tokenize(data, dialect.WithFile(filename))
			if err != nil {
				return err
			}
			if err := r.Recognize(tokens); err != nil {
				fmt.Println(err)
				return err
			}
			return nil
		},
	}
}

// printErrors prints one line per error of the error lists returned by
// the ebnf package.
func printErrors(err error) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		v := reflect.ValueOf(e)
		if v.Kind() != reflect.Slice {
			continue
		}
		for i := 0; i < v.Len(); i++ {
			fmt.Println(v.Index(i).Interface())
		}
		return
	}
	fmt.Println(err)
}
