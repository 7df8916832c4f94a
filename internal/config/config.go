// Package config loads the extractor's configuration from command line
// flags and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeRun = "run"
	ModeMCP = "mcp"

	// Default values
	DefaultInputDir    = "./data"
	DefaultOutputDir   = "./output"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the catalog extractor
type Config struct {
	// Execution mode: "run" processes the input directory once,
	// "mcp" serves the extraction tools over MCP stdio
	Mode string

	// Pipeline configuration
	InputDirectory  string
	OutputDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:            ModeRun,
		InputDirectory:  DefaultInputDir,
		OutputDirectory: DefaultOutputDir,
		Version:         "1.0.0",
		ServerName:      "pdf-catalog",
		LogLevel:        DefaultLogLevel,
		MaxFileSize:     DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.InputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.InputDirectory); err == nil {
			cfg.InputDirectory = expandedPath
		}
	}
	if cfg.OutputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDirectory); err == nil {
			cfg.OutputDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("PDF_CATALOG")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("dir", cfg.InputDirectory)
	viper.SetDefault("out", cfg.OutputDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Execution mode: 'run' for a one-shot batch, 'mcp' for an MCP stdio server")
	pflag.String("dir", cfg.InputDirectory, "Directory containing PDF catalogs")
	pflag.String("out", cfg.OutputDirectory, "Directory to write extracted tables and images")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("out", pflag.Lookup("out"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Catalog Extractor - pulls product tables and images out of PDF catalogs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   "+
			"# process ./data into ./output (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/catalogs           "+
			"# process a custom input directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=mcp --out=/tmp/extracted   # serve the tools over MCP stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF_CATALOG_MODE        Execution mode\n")
		fmt.Fprintf(os.Stderr, "  PDF_CATALOG_DIR         Input directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_CATALOG_OUT         Output directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_CATALOG_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF_CATALOG_MAXFILESIZE Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.InputDirectory = viper.GetString("dir")
	cfg.OutputDirectory = viper.GetString("out")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeRun && c.Mode != ModeMCP {
		return errors.New("mode must be either 'run' or 'mcp'")
	}

	if c.InputDirectory == "" {
		return errors.New("input directory cannot be empty")
	}
	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}

	// Create the input directory if it does not exist yet so a first run
	// with defaults leaves an obvious place to drop catalogs into.
	if _, err := os.Stat(c.InputDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.InputDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create input directory %s: %w", c.InputDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access input directory %s: %w", c.InputDirectory, err)
	}

	if err := os.MkdirAll(c.OutputDirectory, DefaultDirPerm); err != nil {
		return fmt.Errorf("cannot create output directory %s: %w", c.OutputDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
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

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, InputDirectory: %s, OutputDirectory: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.InputDirectory, c.OutputDirectory, c.LogLevel, c.MaxFileSize)
}

// IsRunMode returns true if the extractor performs a one-shot batch run
func (c *Config) IsRunMode() bool {
	return c.Mode == ModeRun
}

// IsMCPMode returns true if the extractor serves tools over MCP stdio
func (c *Config) IsMCPMode() bool {
	return c.Mode == ModeMCP
}
