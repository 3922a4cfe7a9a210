package main

import (
	"fmt"
	"io"
	"os"

	"github.com/a3tai/pdfsheetdiff/internal/compare"
	"github.com/a3tai/pdfsheetdiff/internal/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <document.pdf> <spreadsheet>",
		Short: "Compare a PDF document with a spreadsheet",
		Long: `Compare extracts the PDF's text and tables and reports:
- a text diff of the document's text against the spreadsheet's cells
- every cell that differs in the columns both share

Examples:
  # Side-by-side text report
  pdfsheetdiff compare invoice.pdf invoice.xlsx

  # Markdown report written to a file
  pdfsheetdiff compare --format markdown -o report.md invoice.pdf invoice.csv

  # Pair rows by invoice number and compare amounts numerically
  pdfsheetdiff compare --alignment key --key-column Invoice \
    --comparators Amount=numeric invoice.pdf ledger.xlsx

  # Exit with status 2 when the inputs differ
  pdfsheetdiff compare --fail-on-diff invoice.pdf invoice.xlsx`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().Bool("fail-on-diff", false, "Exit with status 2 when differences are found")

	return cmd
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	failOnDiff, err := cmd.Flags().GetBool("fail-on-diff")
	if err != nil {
		return err
	}

	service, err := compare.NewService(cfg, logger)
	if err != nil {
		return err
	}

	// Resolve the writer before the comparison so a bad format fails fast
	var out io.Writer = cmd.OutOrStdout()
	var file *os.File
	if output != "" {
		file, err = os.Create(output)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer file.Close()
		out = file
	}
	writer, err := report.NewWriter(cfg.OutputFormat, out)
	if err != nil {
		return err
	}

	result, err := service.CompareFiles(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	if _, err := writer.Write(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if file != nil {
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.WithFields(logrus.Fields{"path": output, "format": cfg.OutputFormat}).Info("report written")
	}

	if failOnDiff && result.HasDifferences() {
		return &exitCodeError{code: exitDifferences}
	}
	return nil
}
