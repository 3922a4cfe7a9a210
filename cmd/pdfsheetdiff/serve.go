package main

import (
	"github.com/a3tai/pdfsheetdiff/internal/compare"
	"github.com/a3tai/pdfsheetdiff/internal/mcp"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Serve exposes compare_documents, extract_document, read_spreadsheet and
server_info as MCP tools. In stdio mode (the default) the client talks over
stdin and stdout; with --mode server the tools are served over HTTP on
--host and --port. Tools may only read files under --dir.`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	if cfg.IsDebug() {
		logger.Debugf("starting with configuration: %s", cfg)
	}

	service, err := compare.NewService(cfg, logger)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg, service, logger)
	if err != nil {
		return err
	}

	if err := server.Run(cmd.Context()); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
