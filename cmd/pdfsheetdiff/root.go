package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/a3tai/pdfsheetdiff/internal/config"
	"github.com/a3tai/pdfsheetdiff/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Exit statuses
const (
	exitOK          = 0
	exitError       = 1
	exitDifferences = 2
)

const (
	flagConfig  = "config"
	flagEnvFile = "env-file"
)

// exitCodeError ends the process with a status other than 1 without
// printing anything
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// NewRootCmd creates the root command for pdfsheetdiff.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdfsheetdiff",
		Short: "Compare a PDF document against a spreadsheet",
		Long: `pdfsheetdiff extracts the text and tables of a PDF document, reads an XLSX or
CSV spreadsheet, and reports how they differ: a line diff of the text and a
cell-by-cell diff of the columns both share.

Settings come from defaults, the config file
(` + config.ConfigDir() + `/config.yaml), a .env file, PDFSHEETDIFF_* environment
variables and flags, in increasing order of precedence.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	config.DefineFlags(flags)
	flags.String(flagConfig, "", "Config file (default "+config.ConfigDir()+"/config.yaml)")
	flags.String(flagEnvFile, ".env", "Environment file loaded before reading the environment")

	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, NewRootCmd(), os.Stderr)
}

func run(ctx context.Context, cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exit *exitCodeError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitError
}

// loadConfig resolves the configuration for cmd from every source
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, err := cmd.Flags().GetString(flagEnvFile)
	if err != nil {
		return nil, err
	}
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return nil, err
		}
	}

	configFile, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return nil, err
	}
	cfg.Version = getVersion()
	return cfg, nil
}

// newLogger builds the command's logger. Logs always go to stderr so they
// never mix with reports or the MCP stream on stdout.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	return logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
}
