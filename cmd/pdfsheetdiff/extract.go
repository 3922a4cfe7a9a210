package main

import (
	"fmt"

	"github.com/a3tai/pdfsheetdiff/internal/compare"
	"github.com/a3tai/pdfsheetdiff/internal/report"
	"github.com/spf13/cobra"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <document.pdf>",
		Short: "Print the text and tables extracted from a PDF",
		Long: `Extract prints each page's text and the tables detected on it, exactly as
compare will read them. Use it to check why a table was or was not matched.`,
		Args: cobra.ExactArgs(1),
		RunE: runExtractCmd,
	}
}

func runExtractCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	service, err := compare.NewService(cfg, logger)
	if err != nil {
		return err
	}

	doc, err := service.ExtractFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), report.FormatDocument(args[0], doc))
	return err
}
