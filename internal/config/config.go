package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio = "stdio"
	ModeHTTP  = "http"

	// Default values
	DefaultPort            = 4000
	DefaultHost            = "127.0.0.1"
	DefaultLogLevel        = "info"
	DefaultMaxFileSize     = 100 * 1024 * 1024 // 100MB
	DefaultMaxBodySize     = 50 * 1024 * 1024  // 50MB, large enough for inline signature images
	DefaultAllowedOrigins  = "*"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	// OutputDirName is the default output directory below the source root
	OutputDirName = "output"

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "PDF_STAMPER"
)

// Config holds all configuration for the field stamper
type Config struct {
	// Server configuration
	Mode            string // "http" or "stdio"
	Host            string
	Port            int
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodySize     int64 // Maximum request body size in bytes

	// Document configuration
	SourceDirectory string // source documents are resolved below this root
	OutputDirectory string // signed_<id>.pdf and audit records are written here
	MaxFileSize     int64  // Maximum source PDF size in bytes

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:            ModeHTTP,
		Host:            DefaultHost,
		Port:            DefaultPort,
		AllowedOrigins:  []string{DefaultAllowedOrigins},
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		MaxBodySize:     DefaultMaxBodySize,
		SourceDirectory: currentDir,
		OutputDirectory: filepath.Join(currentDir, OutputDirName),
		MaxFileSize:     DefaultMaxFileSize,
		Version:         "1.0.0",
		ServerName:      "pdf-field-stamper",
		LogLevel:        DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.SourceDirectory)
	// empty means <dir>/output, resolved after parsing
	viper.SetDefault("outputdir", "")
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("maxbodysize", cfg.MaxBodySize)
	viper.SetDefault("origins", strings.Join(cfg.AllowedOrigins, ","))
	viper.SetDefault("readtimeout", cfg.ReadTimeout)
	viper.SetDefault("writetimeout", cfg.WriteTimeout)
	viper.SetDefault("shutdowntimeout", cfg.ShutdownTimeout)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'http' for the REST API, 'stdio' for MCP standard I/O")
	pflag.String("host", cfg.Host, "Server host address (http mode only)")
	pflag.Int("port", cfg.Port, "Server port (http mode only)")
	pflag.String("dir", cfg.SourceDirectory, "Directory source PDF URLs are resolved against")
	pflag.String("outputdir", "", "Directory for generated documents (default <dir>/output)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum source PDF size in bytes")
	pflag.Int64("maxbodysize", cfg.MaxBodySize, "Maximum request body size in bytes (http mode only)")
	pflag.String("origins", strings.Join(cfg.AllowedOrigins, ","), "Comma separated CORS allowed origins")
	pflag.Duration("readtimeout", cfg.ReadTimeout, "HTTP read timeout")
	pflag.Duration("writetimeout", cfg.WriteTimeout, "HTTP write timeout")
	pflag.Duration("shutdowntimeout", cfg.ShutdownTimeout, "Graceful shutdown timeout")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "dir", "outputdir", "loglevel", "maxfilesize",
		"maxbodysize", "origins", "readtimeout", "writetimeout", "shutdowntimeout",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Field Stamper - bakes signatures, text, dates and marks into PDF documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   # http mode on 127.0.0.1:4000\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/public                 # serve sources from /srv/public\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/srv/public    # MCP stdio mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --origins=http://localhost:5173   # restrict CORS to the editor\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF_STAMPER_MODE         Run mode\n")
		fmt.Fprintf(os.Stderr, "  PDF_STAMPER_HOST         Server host\n")
		fmt.Fprintf(os.Stderr, "  PDF_STAMPER_PORT         Server port\n")
		fmt.Fprintf(os.Stderr, "  PDF_STAMPER_DIR          Source directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_STAMPER_OUTPUTDIR    Output directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_STAMPER_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF_STAMPER_MAXFILESIZE  Maximum source size\n")
		fmt.Fprintf(os.Stderr, "  PDF_STAMPER_MAXBODYSIZE  Maximum request body size\n")
		fmt.Fprintf(os.Stderr, "  PDF_STAMPER_ORIGINS      CORS allowed origins\n")
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
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.SourceDirectory = viper.GetString("dir")
	cfg.OutputDirectory = viper.GetString("outputdir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.MaxBodySize = viper.GetInt64("maxbodysize")
	cfg.AllowedOrigins = ParseOrigins(viper.GetString("origins"))
	cfg.ReadTimeout = viper.GetDuration("readtimeout")
	cfg.WriteTimeout = viper.GetDuration("writetimeout")
	cfg.ShutdownTimeout = viper.GetDuration("shutdowntimeout")

	if cfg.SourceDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.SourceDirectory); err == nil {
			cfg.SourceDirectory = expandedPath
		}
	}
	if cfg.OutputDirectory == "" && cfg.SourceDirectory != "" {
		cfg.OutputDirectory = filepath.Join(cfg.SourceDirectory, OutputDirName)
	}
	if cfg.OutputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDirectory); err == nil {
			cfg.OutputDirectory = expandedPath
		}
	}
}

// ParseOrigins splits a comma separated origin list, dropping blanks
func ParseOrigins(s string) []string {
	var origins []string
	for _, origin := range strings.Split(s, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeHTTP {
		return errors.New("mode must be either 'http' or 'stdio'")
	}

	if c.Mode == ModeHTTP {
		if c.Port < 1 || c.Port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		if c.MaxBodySize <= 0 {
			return errors.New("maximum body size must be positive")
		}
		if len(c.AllowedOrigins) == 0 {
			return errors.New("at least one allowed origin is required")
		}
		if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
			return errors.New("timeouts cannot be negative")
		}
	}

	if c.SourceDirectory == "" {
		return errors.New("source directory cannot be empty")
	}
	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}

	if err := ensureDirectory("source", c.SourceDirectory); err != nil {
		return err
	}
	if err := ensureDirectory("output", c.OutputDirectory); err != nil {
		return err
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

// ensureDirectory creates dir if it does not exist
func ensureDirectory(kind, dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create %s directory %s: %w", kind, dir, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access %s directory %s: %w", kind, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s directory %s is not a directory", kind, dir)
	}
	return nil
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
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, SourceDirectory: %s, OutputDirectory: %s, "+
		"LogLevel: %s, MaxFileSize: %d, MaxBodySize: %d, AllowedOrigins: %v}",
		c.Mode, c.Host, c.Port, c.SourceDirectory, c.OutputDirectory,
		c.LogLevel, c.MaxFileSize, c.MaxBodySize, c.AllowedOrigins)
}

// IsHTTPMode returns true if the stamper is serving the REST API
func (c *Config) IsHTTPMode() bool {
	return c.Mode == ModeHTTP
}

// IsStdioMode returns true if the stamper is running as an MCP stdio server
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
