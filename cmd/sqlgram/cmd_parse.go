package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/sqlgram/dialect"
	"github.com/dhamidi/sqlgram/format"
	"github.com/dhamidi/sqlgram/parser"
)

type parseFlags struct {
	format          string
	positions       bool
	languageVersion int
	placeholder     string
	stats           bool
	trace           bool
	watch           bool
}

func newParseCmd() *cobra.Command {
	var flags parseFlags

	cmd := &cobra.Command{
		Use:          "parse <file>",
		Short:        "Parse a SQL file and dump the syntax tree",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			if _, err := format.NewEncoder(flags.format, io.Discard, false); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if !flags.watch {
				ok, err := parseFile(ctx, os.Stdout, filename, &flags)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s: syntax errors", filename)
				}
				return nil
			}

			if filename == "-" {
				return fmt.Errorf("cannot watch standard input")
			}
			run := func() error {
				_, err := parseFile(ctx, os.Stdout, filename, &flags)
				return err
			}
			if err := run(); err != nil {
				return err
			}
			return watchFile(ctx, filename, run)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "tree", "output format (tree, json, lines)")
	cmd.Flags().BoolVar(&flags.positions, "positions", false, "include token positions in tree output")
	cmd.Flags().IntVar(&flags.languageVersion, "language-version", 0, "dialect language version (0 enables everything)")
	cmd.Flags().StringVar(&flags.placeholder, "placeholder", "", "completion placeholder that matches any expected token")
	cmd.Flags().BoolVar(&flags.stats, "stats", false, "print parser statistics to stderr")
	cmd.Flags().BoolVar(&flags.trace, "trace", false, "log every strategy invocation (needs -vv)")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "parse again whenever the file changes")

	return cmd
}

// parseFile parses filename and writes the tree to w and diagnostics to
// stderr. It reports whether the file parsed without errors.
func parseFile(ctx context.Context, w io.Writer, filename string, flags *parseFlags) (bool, error) {
	data, err := readSource(filename)
	if err != nil {
		return false, err
	}

	var stats parser.Stats
	parserOpts := []parser.Option{
		parser.WithLanguageVersion(flags.languageVersion),
		parser.WithLogger(commonlog.GetLogger("sqlgram.parser")),
	}
	if flags.stats {
		parserOpts = append(parserOpts, parser.WithStats(&stats))
	}
	if flags.trace {
		parserOpts = append(parserOpts, parser.WithTrace())
	}

	opts := []dialect.Option{
		dialect.WithFile(filename),
		dialect.WithParserOptions(parserOpts...),
	}
	if flags.placeholder != "" {
		opts = append(opts, dialect.WithPlaceholder(flags.placeholder))
	}

	res, err := dialect.ANSI().Parse(ctx, data, opts...)
	if err != nil {
		return false, err
	}

	enc, err := format.NewEncoder(flags.format, w, flags.positions)
	if err != nil {
		return false, err
	}
	if err := enc.Encode(res); err != nil {
		return false, fmt.Errorf("encode %s: %w", flags.format, err)
	}

	printDiagnostics(os.Stderr, data, res.Diagnostics)
	if flags.stats {
		fmt.Fprintf(os.Stderr, "%s: %s\n%s", filename, res.Match, stats.String())
	}
	return len(res.Diagnostics) == 0, nil
}
