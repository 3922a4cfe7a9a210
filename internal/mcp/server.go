package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/a3tai/pdfsheetdiff/internal/compare"
	"github.com/a3tai/pdfsheetdiff/internal/config"
	"github.com/a3tai/pdfsheetdiff/internal/descriptions"
	"github.com/a3tai/pdfsheetdiff/internal/logging"
	"github.com/a3tai/pdfsheetdiff/internal/report"
	"github.com/a3tai/pdfsheetdiff/internal/security"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPreviewRows is how many spreadsheet rows read_spreadsheet shows by default
	DefaultPreviewRows = 20

	shutdownTimeout = 5 * time.Second
)

var (
	documentExtensions    = []string{".pdf"}
	spreadsheetExtensions = []string{".xlsx", ".xlsm", ".csv", ".txt"}
)

// Server exposes the comparison service as MCP tools
type Server struct {
	config    *config.Config
	service   *compare.Service
	paths     *security.PathValidator
	mcpServer *server.MCPServer
	logger    logrus.FieldLogger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *compare.Service, logger logrus.FieldLogger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("comparison service cannot be nil")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	paths, err := security.NewPathValidator(cfg.BaseDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:    cfg,
		service:   service,
		paths:     paths,
		mcpServer: mcpServer,
		logger:    logger.WithField("component", "mcp"),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	compareTool := mcp.NewTool(
		descriptions.ToolCompareDocuments,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolCompareDocuments)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Path to the PDF document, absolute or relative to the base directory"),
		),
		mcp.WithString("spreadsheet_path",
			mcp.Required(),
			mcp.Description("Path to the XLSX or CSV file, absolute or relative to the base directory"),
		),
		mcp.WithString("format",
			mcp.Description("Report format (defaults to the server's configured format)"),
			mcp.Enum(report.Formats...),
		),
	)
	s.mcpServer.AddTool(compareTool, s.handleCompareDocuments)

	extractTool := mcp.NewTool(
		descriptions.ToolExtractDocument,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolExtractDocument)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Path to the PDF document, absolute or relative to the base directory"),
		),
	)
	s.mcpServer.AddTool(extractTool, s.handleExtractDocument)

	readTool := mcp.NewTool(
		descriptions.ToolReadSpreadsheet,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolReadSpreadsheet)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("spreadsheet_path",
			mcp.Required(),
			mcp.Description("Path to the XLSX or CSV file, absolute or relative to the base directory"),
		),
		mcp.WithString("sheet",
			mcp.Description("Sheet name (defaults to the first sheet)"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum rows to show (default %d, 0 shows all)", DefaultPreviewRows)),
			mcp.Min(0),
		),
	)
	s.mcpServer.AddTool(readTool, s.handleReadSpreadsheet)

	infoTool := mcp.NewTool(
		descriptions.ToolServerInfo,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolServerInfo)),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcpServer.AddTool(infoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleCompareDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docPath, err := s.requirePath(request, "pdf_path", documentExtensions)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sheetPath, err := s.requirePath(request, "spreadsheet_path", spreadsheetExtensions)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	writer, err := report.NewWriter(request.GetString("format", s.config.OutputFormat), &buf)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.logger.WithFields(logrus.Fields{"pdf": docPath, "spreadsheet": sheetPath}).Debug("comparing")

	result, err := s.service.CompareFiles(ctx, docPath, sheetPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := writer.Write(result); err != nil {
		return mcp.NewToolResultErrorFromErr("failed to render report", err), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handleExtractDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.requirePath(request, "pdf_path", documentExtensions)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.service.ExtractFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(report.FormatDocument(path, doc)), nil
}

func (s *Server) handleReadSpreadsheet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.requirePath(request, "spreadsheet_path", spreadsheetExtensions)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	limit := request.GetInt("limit", DefaultPreviewRows)
	if limit < 0 {
		return mcp.NewToolResultError("limit cannot be negative"), nil
	}

	sh, err := s.service.ReadSheetFile(path, request.GetString("sheet", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(report.FormatSheet(path, sh, s.service.TableOptions(), limit)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}

// requirePath reads a path argument and confines it to the base directory.
// Errors name the argument so the caller knows which input was rejected.
func (s *Server) requirePath(request mcp.CallToolRequest, key string, exts []string) (string, error) {
	raw, err := request.RequireString(key)
	if err != nil {
		return "", err
	}
	path, err := s.paths.ResolveFile(raw, exts...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return path, nil
}

func (s *Server) formatServerInfo() string {
	cfg := s.config

	var b strings.Builder
	fmt.Fprintf(&b, "%s v%s\n", cfg.ServerName, cfg.Version)
	fmt.Fprintf(&b, "Base directory: %s\n", s.paths.BaseDirectory())
	fmt.Fprintf(&b, "Max file size: %d bytes\n", cfg.MaxFileSize)
	fmt.Fprintf(&b, "Page timeout: %s (stop after %d in a row)\n", cfg.PageTimeout, cfg.MaxPageTimeouts)
	fmt.Fprintf(&b, "Table detection: column gap %gem, single row gap %gem, min rows %d\n",
		cfg.ColumnGap, cfg.SingleRowGap, cfg.MinTableRows)

	b.WriteString("\nComparison settings:\n")
	fmt.Fprintf(&b, "  Table concatenation: %s\n", cfg.Concat)
	fmt.Fprintf(&b, "  Row alignment: %s", cfg.Alignment)
	if cfg.KeyColumn != "" {
		fmt.Fprintf(&b, " (key column %q)", cfg.KeyColumn)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Default comparator: %s\n", cfg.DefaultComparator)
	for _, column := range sortedKeys(cfg.Comparators) {
		fmt.Fprintf(&b, "  Column %q: %s\n", column, cfg.Comparators[column])
	}
	fmt.Fprintf(&b, "  Unicode NFC: %t\n", cfg.NFC)
	fmt.Fprintf(&b, "  Context lines: %d\n", cfg.ContextLines)

	b.WriteString("\nAvailable tools:\n")
	for _, name := range descriptions.GetAllToolNames() {
		summary, _, _ := strings.Cut(descriptions.GetToolDescription(name), "\n")
		fmt.Fprintf(&b, "  • %s: %s\n", name, summary)
	}

	fmt.Fprintf(&b, "\nReport formats: %s\n", strings.Join(report.Formats, ", "))
	fmt.Fprintf(&b, "PDF extensions: %s\n", strings.Join(documentExtensions, ", "))
	fmt.Fprintf(&b, "Spreadsheet extensions: %s\n", strings.Join(spreadsheetExtensions, ", "))
	return b.String()
}

// Run starts the MCP server in the configured mode and blocks until ctx is
// cancelled or the transport fails
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.ServeStdio(ctx, os.Stdin, os.Stdout)
}

// ServeStdio serves MCP over the given streams
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.WithField("directory", s.paths.BaseDirectory()).Info("starting MCP server in stdio mode")

	errorLog := s.logger.WithField("transport", "stdio").WriterLevel(logrus.ErrorLevel)
	defer errorLog.Close()

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(errorLog, "", 0))

	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over streamable HTTP on the configured address
func (s *Server) runServerMode(ctx context.Context) error {
	httpServer := server.NewStreamableHTTPServer(s.mcpServer)

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", s.config.Address()).Info("starting MCP server in HTTP mode")
		errCh <- httpServer.Start(s.config.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
