package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/sqlgram/dialect"
	"github.com/dhamidi/sqlgram/lsp"
	"github.com/dhamidi/sqlgram/parser"
)

func newLSPCmd() *cobra.Command {
	var languageVersion int

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(version, dialect.ANSI(),
				dialect.WithParserOptions(parser.WithLanguageVersion(languageVersion)))
			return server.RunStdio()
		},
	}

	cmd.Flags().IntVar(&languageVersion, "language-version", 0, "dialect language version (0 enables everything)")

	return cmd
}
