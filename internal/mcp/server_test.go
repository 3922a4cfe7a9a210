package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/a3tai/pdfsheetdiff/internal/compare"
	"github.com/a3tai/pdfsheetdiff/internal/config"
	"github.com/a3tai/pdfsheetdiff/internal/descriptions"
	"github.com/a3tai/pdfsheetdiff/internal/pdf/pdftest"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	dir := t.TempDir()
	doc := pdftest.Document(
		pdftest.Text("Purchase order 42"),
		pdftest.Table(
			[]string{"Item", "Qty"},
			[]string{"Bolt", "10"},
			[]string{"Nut", "5"},
		),
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.pdf"), doc, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.csv"), []byte("Item,Qty\nBolt,12\nNut,5\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a pdf"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.csv"), nil, 0o600))

	cfg := config.DefaultConfig()
	cfg.BaseDirectory = dir
	cfg.ServerName = "test-server"
	cfg.Version = "1.0.0"
	cfg.OutputFormat = "markdown"

	service, err := compare.NewService(cfg, nil)
	require.NoError(t, err)

	s, err := NewServer(cfg, service, nil)
	require.NoError(t, err)
	return s, dir
}

func callTool(t *testing.T, s *Server, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error),
	name string, args map[string]any,
) (string, bool) {
	t.Helper()

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, result.IsError
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig()
	service, err := compare.NewService(cfg, nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		cfg     *config.Config
		service *compare.Service
		wantErr bool
	}{
		{name: "valid", cfg: cfg, service: service},
		{name: "nil config", cfg: nil, service: service, wantErr: true},
		{name: "nil service", cfg: cfg, service: nil, wantErr: true},
		{
			name:    "missing base directory",
			cfg:     &config.Config{BaseDirectory: filepath.Join(t.TempDir(), "missing")},
			service: service,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewServer(tt.cfg, tt.service, nil)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.cfg, s.config)
			assert.NotNil(t, s.mcpServer)
		})
	}
}

func TestHandleCompareDocuments(t *testing.T) {
	s, dir := newTestServer(t)

	text, isErr := callTool(t, s, s.handleCompareDocuments, descriptions.ToolCompareDocuments, map[string]any{
		"pdf_path":         "orders.pdf",
		"spreadsheet_path": filepath.Join(dir, "orders.csv"),
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "# PDF / Spreadsheet Comparison")
	assert.Contains(t, text, "| Qty | 0 | 10 | 12 |")

	text, isErr = callTool(t, s, s.handleCompareDocuments, descriptions.ToolCompareDocuments, map[string]any{
		"pdf_path":         "orders.pdf",
		"spreadsheet_path": "orders.csv",
		"format":           "json",
	})
	require.False(t, isErr, text)

	var decoded struct {
		DataDiff []map[string]any `json:"data_diff"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	assert.Len(t, decoded.DataDiff, 1)
}

func TestHandleCompareDocumentsErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing pdf_path", args: map[string]any{"spreadsheet_path": "orders.csv"}, want: "pdf_path"},
		{name: "missing spreadsheet_path", args: map[string]any{"pdf_path": "orders.pdf"}, want: "spreadsheet_path"},
		{name: "outside base directory", args: map[string]any{"pdf_path": "../x.pdf", "spreadsheet_path": "orders.csv"}, want: "pdf_path: path is outside"},
		{name: "wrong extension", args: map[string]any{"pdf_path": "notes.txt", "spreadsheet_path": "orders.csv"}, want: "pdf_path: unsupported file extension"},
		{name: "unknown format", args: map[string]any{"pdf_path": "orders.pdf", "spreadsheet_path": "orders.csv", "format": "pdf"}, want: "unknown report format"},
		{name: "missing file", args: map[string]any{"pdf_path": "missing.pdf", "spreadsheet_path": "orders.csv"}, want: "document file"},
		{name: "unreadable spreadsheet", args: map[string]any{"pdf_path": "orders.pdf", "spreadsheet_path": "empty.csv"}, want: "spreadsheet input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := callTool(t, s, s.handleCompareDocuments, descriptions.ToolCompareDocuments, tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestHandleExtractDocument(t *testing.T) {
	s, _ := newTestServer(t)

	text, isErr := callTool(t, s, s.handleExtractDocument, descriptions.ToolExtractDocument, map[string]any{
		"pdf_path": "orders.pdf",
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Pages: 2")
	assert.Contains(t, text, "Tables: 1")
	assert.Contains(t, text, "--- Page 1 ---")
	assert.Contains(t, text, "Purchase order 42")
	assert.Contains(t, text, "| Item | Qty |")
	assert.Contains(t, text, "| Bolt | 10 |")

	text, isErr = callTool(t, s, s.handleExtractDocument, descriptions.ToolExtractDocument, map[string]any{
		"pdf_path": "/etc/passwd.pdf",
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "outside")
}

func TestHandleReadSpreadsheet(t *testing.T) {
	s, _ := newTestServer(t)

	text, isErr := callTool(t, s, s.handleReadSpreadsheet, descriptions.ToolReadSpreadsheet, map[string]any{
		"spreadsheet_path": "orders.csv",
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Sheet: csv (csv)")
	assert.Contains(t, text, "Columns (2): Item, Qty")
	assert.Contains(t, text, "Rows: 2")
	assert.Contains(t, text, "| Nut | 5 |")

	text, isErr = callTool(t, s, s.handleReadSpreadsheet, descriptions.ToolReadSpreadsheet, map[string]any{
		"spreadsheet_path": "orders.csv",
		"limit":            float64(1),
	})
	require.False(t, isErr, text)
	assert.NotContains(t, text, "| Nut | 5 |")
	assert.Contains(t, text, "... and 1 more row(s)")

	text, isErr = callTool(t, s, s.handleReadSpreadsheet, descriptions.ToolReadSpreadsheet, map[string]any{
		"spreadsheet_path": "orders.csv",
		"limit":            float64(-1),
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "limit")
}

func TestHandleServerInfo(t *testing.T) {
	s, _ := newTestServer(t)

	text, isErr := callTool(t, s, s.handleServerInfo, descriptions.ToolServerInfo, nil)
	require.False(t, isErr)
	assert.Contains(t, text, "test-server v1.0.0")
	assert.Contains(t, text, "Base directory: "+s.paths.BaseDirectory())
	for _, name := range descriptions.GetAllToolNames() {
		assert.Contains(t, text, name)
	}
	assert.Contains(t, text, "Row alignment: positional")
	assert.Contains(t, text, "Table detection: column gap 1.5em, single row gap 3em, min rows 1")
}

func TestToolsList(t *testing.T) {
	s, _ := newTestServer(t)

	response := s.mcpServer.HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(response)
	require.NoError(t, err)

	var decoded struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	var names []string
	for _, tool := range decoded.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, descriptions.GetAllToolNames(), names)
}

func TestServeStdio(t *testing.T) {
	s, _ := newTestServer(t)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"read_spreadsheet","arguments":{"spreadsheet_path":"orders.csv"}}}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.ServeStdio(ctx, strings.NewReader(input), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"serverInfo":{"name":"test-server","version":"1.0.0"}`)
	assert.Contains(t, lines[1], "Columns (2): Item, Qty")
}

func TestServeStdioCancelled(t *testing.T) {
	s, _ := newTestServer(t)

	reader, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeStdio(ctx, reader, &bytes.Buffer{}) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}

func TestRunServerModeShutsDown(t *testing.T) {
	s, _ := newTestServer(t)
	s.config.Mode = config.ModeServer
	s.config.Host = "127.0.0.1"
	s.config.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}
