package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the default config search at an empty directory
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	original := searchPaths
	searchPaths = func() []string { return []string{dir} }
	t.Cleanup(func() { searchPaths = original })
	return dir
}

func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("pdfsheetdiff", pflag.ContinueOnError)
	DefineFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(parseFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, DefaultPageTimeout, cfg.PageTimeout)
	assert.Equal(t, 5, cfg.ContextLines)
	assert.Empty(t, cfg.Comparators)
	assert.Empty(t, cfg.ConfigFile)
	assert.True(t, filepath.IsAbs(cfg.BaseDirectory))
}

func TestLoadFlags(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	cfg, err := Load(parseFlags(t,
		"--dir="+dir,
		"--log-level=debug",
		"--page-timeout=5s",
		"--context-lines=2",
		"--concat=intersection",
		"--alignment=key",
		"--key-column=ID",
		"--comparators=Qty=numeric,Name=fold",
		"--nfc",
		"--sheet=Orders",
		"--format=json",
	), "")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.BaseDirectory)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.PageTimeout)
	assert.Equal(t, 2, cfg.ContextLines)
	assert.Equal(t, "intersection", cfg.Concat)
	assert.Equal(t, "key", cfg.Alignment)
	assert.Equal(t, "ID", cfg.KeyColumn)
	assert.Equal(t, map[string]string{"Qty": "numeric", "Name": "fold"}, cfg.Comparators)
	assert.True(t, cfg.NFC)
	assert.Equal(t, "Orders", cfg.SheetName)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)

	t.Setenv("PDFSHEETDIFF_LOG_LEVEL", "warn")
	t.Setenv("PDFSHEETDIFF_MAX_FILE_SIZE", "2000")
	t.Setenv("PDFSHEETDIFF_CONCAT", "intersection")
	t.Setenv("PDFSHEETDIFF_COMPARATORS", "Total=numeric")

	cfg, err := Load(parseFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, int64(2000), cfg.MaxFileSize)
	assert.Equal(t, "intersection", cfg.Concat)
	assert.Equal(t, map[string]string{"Total": "numeric"}, cfg.Comparators)
}

func TestLoadDetectionSettings(t *testing.T) {
	isolate(t)
	t.Setenv("PDFSHEETDIFF_MIN_TABLE_ROWS", "2")

	cfg, err := Load(parseFlags(t,
		"--column-gap=2",
		"--single-row-gap=4.5",
		"--row-tolerance=1",
		"--max-page-timeouts=0",
	), "")
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.MaxPageTimeouts)
	opts := cfg.DetectOptions()
	assert.Equal(t, 2.0, opts.ColumnGap)
	assert.Equal(t, 4.5, opts.SingleRowGap)
	assert.Equal(t, 1.0, opts.RowTolerance)
	assert.Equal(t, 3.0, opts.SnapTolerance)
	assert.Equal(t, 2, opts.MinRows)
}

func TestLoadRejectsBadDetectionSettings(t *testing.T) {
	isolate(t)

	_, err := Load(parseFlags(t, "--column-gap=4", "--single-row-gap=2"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be smaller than column gap")
}

func TestLoadFlagOverridesEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("PDFSHEETDIFF_FORMAT", "yaml")

	cfg, err := Load(parseFlags(t, "--format=markdown"), "")
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.OutputFormat)

	cfg, err = Load(parseFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.OutputFormat)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)

	content := `log-level: error
context-lines: 1
alignment: key
key-column: SKU
comparators:
  - column: Unit Price
    comparator: numeric
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := Load(parseFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigFile)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 1, cfg.ContextLines)
	assert.Equal(t, "SKU", cfg.KeyColumn)
	assert.Equal(t, map[string]string{"Unit Price": "numeric"}, cfg.Comparators)

	// environment beats the file
	t.Setenv("PDFSHEETDIFF_CONTEXT_LINES", "7")
	cfg, err = Load(parseFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.ContextLines)
}

func TestLoadExplicitConfigFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: html\n"), 0o600))

	cfg, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "html", cfg.OutputFormat)

	_, err = Load(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "invalid mode", args: []string{"--mode=invalid"}},
		{name: "invalid port", args: []string{"--mode=server", "--port=70000"}},
		{name: "invalid log level", args: []string{"--log-level=loud"}},
		{name: "key alignment without key", args: []string{"--alignment=key"}},
		{name: "unknown comparator", args: []string{"--comparators=Qty=fuzzy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(parseFlags(t, tt.args...), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	require.NoError(t, LoadDotEnv(path), "missing file is not an error")

	require.NoError(t, os.WriteFile(path, []byte("PDFSHEETDIFF_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("PDFSHEETDIFF_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("PDFSHEETDIFF_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("PDFSHEETDIFF_TEST_DOTENV"))
}
