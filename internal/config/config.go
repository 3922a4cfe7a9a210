package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/a3tai/pdfsheetdiff/internal/diff"
	"github.com/a3tai/pdfsheetdiff/internal/pdf/tables"
	"github.com/a3tai/pdfsheetdiff/internal/sheet"
	"github.com/a3tai/pdfsheetdiff/internal/table"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName names the config directory and the environment prefix
	AppName = "pdfsheetdiff"

	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort         = 8080
	DefaultHost         = "127.0.0.1"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultMaxFileSize  = 100 * 1024 * 1024 // 100MB
	DefaultPageTimeout  = 30 * time.Second
	DefaultOutputFormat = "text"

	// DefaultMaxPageTimeouts stops extraction after this many pages in a row time out
	DefaultMaxPageTimeouts = 3

	envPrefix = "PDFSHEETDIFF"
)

// Keys shared by flags, environment variables and the config file
const (
	KeyMode              = "mode"
	KeyHost              = "host"
	KeyPort              = "port"
	KeyDir               = "dir"
	KeyLogLevel          = "log-level"
	KeyLogFormat         = "log-format"
	KeyMaxFileSize       = "max-file-size"
	KeyPageTimeout       = "page-timeout"
	KeyMaxPageTimeouts   = "max-page-timeouts"
	KeyRowTolerance      = "row-tolerance"
	KeySnapTolerance     = "snap-tolerance"
	KeyColumnGap         = "column-gap"
	KeySingleRowGap      = "single-row-gap"
	KeyMinTableRows      = "min-table-rows"
	KeyContextLines      = "context-lines"
	KeyConcat            = "concat"
	KeyAlignment         = "alignment"
	KeyKeyColumn         = "key-column"
	KeyComparators       = "comparators"
	KeyDefaultComparator = "default-comparator"
	KeyNFC               = "nfc"
	KeySheet             = "sheet"
	KeySheetFormat       = "sheet-format"
	KeyFormat            = "format"
)

// OutputFormats lists the report formats the presentation layer can write
var OutputFormats = []string{"text", "markdown", "json", "yaml", "html"}

// searchPaths returns the directories searched for config.yaml
var searchPaths = func() []string {
	return []string{ConfigDir()}
}

// Config holds all configuration for comparisons and the MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// BaseDirectory bounds the files the MCP tools may read
	BaseDirectory string

	// Logging
	LogLevel  string
	LogFormat string

	// Extraction
	MaxFileSize     int64
	PageTimeout     time.Duration
	MaxPageTimeouts int

	// Table detection, gaps in em
	RowTolerance  float64
	SnapTolerance float64
	ColumnGap     float64
	SingleRowGap  float64
	MinTableRows  int

	// Comparison
	ContextLines      int
	Concat            string
	Alignment         string
	KeyColumn         string
	Comparators       map[string]string
	DefaultComparator string
	NFC               bool

	// Spreadsheet input
	SheetName   string
	SheetFormat string

	// Presentation
	OutputFormat string

	// Application configuration
	Version    string
	ServerName string

	// ConfigFile is the config file that was read, if any
	ConfigFile string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	detect := tables.DefaultDetectOptions()

	return &Config{
		Mode:              ModeStdio,
		Host:              DefaultHost,
		Port:              DefaultPort,
		BaseDirectory:     currentDir,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		MaxFileSize:       DefaultMaxFileSize,
		PageTimeout:       DefaultPageTimeout,
		MaxPageTimeouts:   DefaultMaxPageTimeouts,
		RowTolerance:      detect.RowTolerance,
		SnapTolerance:     detect.SnapTolerance,
		ColumnGap:         detect.ColumnGap,
		SingleRowGap:      detect.SingleRowGap,
		MinTableRows:      detect.MinRows,
		ContextLines:      diff.DefaultContextLines,
		Concat:            string(table.PolicyUnion),
		Alignment:         string(diff.AlignPositional),
		Comparators:       map[string]string{},
		DefaultComparator: diff.Exact.Name(),
		SheetFormat:       string(sheet.FormatAuto),
		OutputFormat:      DefaultOutputFormat,
		Version:           "dev",
		ServerName:        AppName,
	}
}

// ConfigDir returns the directory holding config.yaml
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefineFlags registers every configuration flag on fs
func DefineFlags(fs *pflag.FlagSet) {
	cfg := DefaultConfig()

	fs.String(KeyMode, cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	fs.String(KeyHost, cfg.Host, "Server host address (server mode only)")
	fs.Int(KeyPort, cfg.Port, "Server port (server mode only)")
	fs.String(KeyDir, cfg.BaseDirectory, "Directory the MCP tools may read files from")
	fs.String(KeyLogLevel, cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.String(KeyLogFormat, cfg.LogFormat, "Log format (text, json)")
	fs.Int64(KeyMaxFileSize, cfg.MaxFileSize, "Maximum input file size in bytes")
	fs.Duration(KeyPageTimeout, cfg.PageTimeout, "Time budget for extracting a single PDF page (0 disables)")
	fs.Int(KeyMaxPageTimeouts, cfg.MaxPageTimeouts, "Skip the rest of a PDF after this many consecutive page timeouts (0 disables)")
	fs.Float64(KeyRowTolerance, cfg.RowTolerance, "Largest baseline difference, in points, between words on one table row")
	fs.Float64(KeySnapTolerance, cfg.SnapTolerance, "Points by which two table columns may come together and stay separate")
	fs.Float64(KeyColumnGap, cfg.ColumnGap, "Smallest gap, in em, between two table cells")
	fs.Float64(KeySingleRowGap, cfg.SingleRowGap, "Smallest gap, in em, between the cells of a one-row table")
	fs.Int(KeyMinTableRows, cfg.MinTableRows, "Discard detected PDF tables with fewer rows")
	fs.Int(KeyContextLines, cfg.ContextLines, "Unchanged lines shown around each text difference")
	fs.String(KeyConcat, cfg.Concat, "How PDF tables with different columns are combined (union, intersection)")
	fs.String(KeyAlignment, cfg.Alignment, "How rows are paired for the data diff (positional, key)")
	fs.String(KeyKeyColumn, cfg.KeyColumn, "Column whose values identify rows when alignment is 'key'")
	fs.StringToString(KeyComparators, cfg.Comparators, "Per-column comparators, e.g. Qty=numeric,Name=fold")
	fs.String(KeyDefaultComparator, cfg.DefaultComparator, "Comparator for columns without an override (exact, trim, fold, numeric)")
	fs.Bool(KeyNFC, cfg.NFC, "Apply Unicode NFC normalization to cell values")
	fs.String(KeySheet, cfg.SheetName, "Spreadsheet sheet to compare (first sheet by default)")
	fs.String(KeySheetFormat, cfg.SheetFormat, "Spreadsheet format (auto, xlsx, csv)")
	fs.String(KeyFormat, cfg.OutputFormat, "Report format ("+strings.Join(OutputFormats, ", ")+")")
}

// LoadDotEnv loads environment variables from a .env file when it exists.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("cannot load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from defaults, the config file, the
// environment and flags, in increasing order of precedence. configFile may
// be empty to search the default location. flags may be nil.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	setupViperEnvironment(v, cfg)

	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("cannot bind flags: %w", err)
		}
	}

	if err := populateConfigFromViper(v, cfg); err != nil {
		return nil, err
	}

	if cfg.BaseDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.BaseDirectory); err == nil {
			cfg.BaseDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures environment lookup and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyMode, cfg.Mode)
	v.SetDefault(KeyHost, cfg.Host)
	v.SetDefault(KeyPort, cfg.Port)
	v.SetDefault(KeyDir, cfg.BaseDirectory)
	v.SetDefault(KeyLogLevel, cfg.LogLevel)
	v.SetDefault(KeyLogFormat, cfg.LogFormat)
	v.SetDefault(KeyMaxFileSize, cfg.MaxFileSize)
	v.SetDefault(KeyPageTimeout, cfg.PageTimeout)
	v.SetDefault(KeyMaxPageTimeouts, cfg.MaxPageTimeouts)
	v.SetDefault(KeyRowTolerance, cfg.RowTolerance)
	v.SetDefault(KeySnapTolerance, cfg.SnapTolerance)
	v.SetDefault(KeyColumnGap, cfg.ColumnGap)
	v.SetDefault(KeySingleRowGap, cfg.SingleRowGap)
	v.SetDefault(KeyMinTableRows, cfg.MinTableRows)
	v.SetDefault(KeyContextLines, cfg.ContextLines)
	v.SetDefault(KeyConcat, cfg.Concat)
	v.SetDefault(KeyAlignment, cfg.Alignment)
	v.SetDefault(KeyKeyColumn, cfg.KeyColumn)
	v.SetDefault(KeyComparators, cfg.Comparators)
	v.SetDefault(KeyDefaultComparator, cfg.DefaultComparator)
	v.SetDefault(KeyNFC, cfg.NFC)
	v.SetDefault(KeySheet, cfg.SheetName)
	v.SetDefault(KeySheetFormat, cfg.SheetFormat)
	v.SetDefault(KeyFormat, cfg.OutputFormat)
}

func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("cannot read config file %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range searchPaths() {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("cannot read config file: %w", err)
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) error {
	cfg.Mode = v.GetString(KeyMode)
	cfg.Host = v.GetString(KeyHost)
	cfg.Port = v.GetInt(KeyPort)
	cfg.BaseDirectory = v.GetString(KeyDir)
	cfg.LogLevel = strings.ToLower(v.GetString(KeyLogLevel))
	cfg.LogFormat = strings.ToLower(v.GetString(KeyLogFormat))
	cfg.MaxFileSize = v.GetInt64(KeyMaxFileSize)
	cfg.PageTimeout = v.GetDuration(KeyPageTimeout)
	cfg.MaxPageTimeouts = v.GetInt(KeyMaxPageTimeouts)
	cfg.RowTolerance = v.GetFloat64(KeyRowTolerance)
	cfg.SnapTolerance = v.GetFloat64(KeySnapTolerance)
	cfg.ColumnGap = v.GetFloat64(KeyColumnGap)
	cfg.SingleRowGap = v.GetFloat64(KeySingleRowGap)
	cfg.MinTableRows = v.GetInt(KeyMinTableRows)
	cfg.ContextLines = v.GetInt(KeyContextLines)
	cfg.Concat = strings.ToLower(v.GetString(KeyConcat))
	cfg.Alignment = strings.ToLower(v.GetString(KeyAlignment))
	cfg.KeyColumn = v.GetString(KeyKeyColumn)
	cfg.DefaultComparator = strings.ToLower(v.GetString(KeyDefaultComparator))
	cfg.NFC = v.GetBool(KeyNFC)
	cfg.SheetName = v.GetString(KeySheet)
	cfg.SheetFormat = strings.ToLower(v.GetString(KeySheetFormat))
	cfg.OutputFormat = strings.ToLower(v.GetString(KeyFormat))
	cfg.ConfigFile = v.ConfigFileUsed()

	comparators, err := parseComparators(v.Get(KeyComparators))
	if err != nil {
		return err
	}
	cfg.Comparators = comparators
	return nil
}

// parseComparators accepts "Column=name,..." from flags and the environment,
// a map, or a list of {column, comparator} entries from the config file.
// The list form keeps the case of column names, which viper folds in map keys.
func parseComparators(raw interface{}) (map[string]string, error) {
	out := map[string]string{}

	switch value := raw.(type) {
	case nil:
	case string:
		value = strings.Trim(strings.TrimSpace(value), "[]")
		if value == "" {
			break
		}
		for _, pair := range strings.Split(value, ",") {
			column, name, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(column) == "" {
				return nil, fmt.Errorf("invalid comparator %q (want Column=name)", pair)
			}
			out[strings.TrimSpace(column)] = strings.TrimSpace(name)
		}
	case map[string]string:
		for column, name := range value {
			out[column] = name
		}
	case map[string]interface{}:
		for column, name := range value {
			out[column] = fmt.Sprint(name)
		}
	case []interface{}:
		for _, item := range value {
			entry, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("invalid comparator entry %v", item)
			}
			column, _ := entry["column"].(string)
			name, _ := entry["comparator"].(string)
			if column == "" {
				return nil, fmt.Errorf("comparator entry %v has no column", item)
			}
			out[column] = name
		}
	default:
		return nil, fmt.Errorf("invalid comparators value of type %T", raw)
	}

	return out, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.BaseDirectory == "" {
		return errors.New("base directory cannot be empty")
	}
	if info, err := os.Stat(c.BaseDirectory); err != nil {
		return fmt.Errorf("cannot access base directory %s: %w", c.BaseDirectory, err)
	} else if !info.IsDir() {
		return fmt.Errorf("base directory %s is not a directory", c.BaseDirectory)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.PageTimeout < 0 {
		return errors.New("page timeout cannot be negative")
	}

	if c.MaxPageTimeouts < 0 {
		return errors.New("max page timeouts cannot be negative")
	}

	if c.RowTolerance < 0 || c.SnapTolerance < 0 {
		return errors.New("row and snap tolerances cannot be negative")
	}
	if c.ColumnGap <= 0 || c.SingleRowGap <= 0 {
		return errors.New("column gaps must be positive")
	}
	if c.SingleRowGap < c.ColumnGap {
		return fmt.Errorf("single row gap %g cannot be smaller than column gap %g", c.SingleRowGap, c.ColumnGap)
	}
	if c.MinTableRows < 1 {
		return errors.New("minimum table rows must be at least 1")
	}

	if c.ContextLines < 0 {
		return errors.New("context lines cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be one of: text, json)", c.LogFormat)
	}

	if _, err := table.ParsePolicy(c.Concat); err != nil {
		return err
	}

	alignment, err := diff.ParseAlignment(c.Alignment)
	if err != nil {
		return err
	}
	if alignment == diff.AlignKey && c.KeyColumn == "" {
		return errors.New("key alignment requires a key column")
	}

	if _, err := diff.ComparatorByName(c.DefaultComparator); err != nil {
		return err
	}
	for _, column := range sortedKeys(c.Comparators) {
		if _, err := diff.ComparatorByName(c.Comparators[column]); err != nil {
			return fmt.Errorf("column %q: %w", column, err)
		}
	}

	if _, err := sheet.ParseFormat(c.SheetFormat); err != nil {
		return err
	}

	if !c.validOutputFormat() {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}

	return nil
}

func (c *Config) validOutputFormat() bool {
	for _, f := range OutputFormats {
		if c.OutputFormat == f {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DetectOptions returns the table detection settings
func (c *Config) DetectOptions() tables.DetectOptions {
	opts := tables.DefaultDetectOptions()
	opts.RowTolerance = c.RowTolerance
	opts.SnapTolerance = c.SnapTolerance
	opts.ColumnGap = c.ColumnGap
	opts.SingleRowGap = c.SingleRowGap
	opts.MinRows = c.MinTableRows
	return opts
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, BaseDirectory: %s, LogLevel: %s, MaxFileSize: %d, Concat: %s, Alignment: %s, Format: %s}",
		c.Mode, c.BaseDirectory, c.LogLevel, c.MaxFileSize, c.Concat, c.Alignment, c.OutputFormat)
}

// IsServerMode returns true if the MCP server runs over HTTP
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the MCP server runs over standard I/O
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
