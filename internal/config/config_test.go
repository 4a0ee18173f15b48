package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "http" {
		t.Errorf("Expected default mode to be 'http', got '%s'", cfg.Mode)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}

	if cfg.Port != 4000 {
		t.Errorf("Expected default port to be 4000, got %d", cfg.Port)
	}

	if cfg.ServerName != "pdf-field-stamper" {
		t.Errorf("Expected default server name to be 'pdf-field-stamper', got '%s'", cfg.ServerName)
	}

	if cfg.MaxBodySize != 50*1024*1024 {
		t.Errorf("Expected default max body size to be 50MB, got %d", cfg.MaxBodySize)
	}

	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("Expected default origins to be [*], got %v", cfg.AllowedOrigins)
	}

	currentDir, _ := os.Getwd()
	if cfg.SourceDirectory != currentDir {
		t.Errorf("Expected default source directory to be '%s', got '%s'", currentDir, cfg.SourceDirectory)
	}
	if cfg.OutputDirectory != filepath.Join(currentDir, "output") {
		t.Errorf("Expected default output directory below the source root, got '%s'", cfg.OutputDirectory)
	}
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		Mode:            ModeHTTP,
		Host:            "127.0.0.1",
		Port:            4000,
		AllowedOrigins:  []string{"*"},
		MaxBodySize:     1024,
		SourceDirectory: dir,
		OutputDirectory: filepath.Join(dir, "output"),
		MaxFileSize:     1024,
		LogLevel:        "info",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid http config",
			mutate: func(c *Config) {},
		},
		{
			name:   "valid stdio config",
			mutate: func(c *Config) { c.Mode = ModeStdio },
		},
		{
			name:    "invalid mode",
			mutate:  func(c *Config) { c.Mode = "server" },
			wantErr: "mode must be",
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: "port must be",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: "port must be",
		},
		{
			name: "http settings ignored in stdio mode",
			mutate: func(c *Config) {
				c.Mode = ModeStdio
				c.Port = 0
				c.MaxBodySize = 0
				c.AllowedOrigins = nil
			},
		},
		{
			name:    "zero body size",
			mutate:  func(c *Config) { c.MaxBodySize = 0 },
			wantErr: "body size",
		},
		{
			name:    "no origins",
			mutate:  func(c *Config) { c.AllowedOrigins = nil },
			wantErr: "origin",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.WriteTimeout = -time.Second },
			wantErr: "timeouts",
		},
		{
			name:    "empty source directory",
			mutate:  func(c *Config) { c.SourceDirectory = "" },
			wantErr: "source directory cannot be empty",
		},
		{
			name:    "empty output directory",
			mutate:  func(c *Config) { c.OutputDirectory = "" },
			wantErr: "output directory cannot be empty",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "invalid max file size",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: "file size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Config.Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Config.Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidate_CreatesDirectories(t *testing.T) {
	cfg := validConfig(t)
	cfg.SourceDirectory = filepath.Join(cfg.SourceDirectory, "nested", "public")
	cfg.OutputDirectory = filepath.Join(cfg.SourceDirectory, "output")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config.Validate() unexpected error = %v", err)
	}

	for _, dir := range []string{cfg.SourceDirectory, cfg.OutputDirectory} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("Expected directory %s to be created", dir)
		}
	}
}

func TestConfigValidate_OutputIsFile(t *testing.T) {
	cfg := validConfig(t)
	if err := os.WriteFile(cfg.OutputDirectory, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Expected error when output directory is a regular file")
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{input: "*", want: []string{"*"}},
		{input: "http://localhost:5173", want: []string{"http://localhost:5173"}},
		{input: "http://a.test, http://b.test ,", want: []string{"http://a.test", "http://b.test"}},
		{input: "", want: nil},
		{input: " , ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseOrigins(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseOrigins(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{
		Host: "192.168.1.1",
		Port: 9090,
	}

	expected := "192.168.1.1:9090"
	if got := cfg.Address(); got != expected {
		t.Errorf("Config.Address() = %v, want %v", got, expected)
	}
}

func TestConfigModes(t *testing.T) {
	tests := []struct {
		mode      string
		wantHTTP  bool
		wantStdio bool
	}{
		{mode: ModeHTTP, wantHTTP: true},
		{mode: ModeStdio, wantStdio: true},
		{mode: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := &Config{Mode: tt.mode}
			if got := cfg.IsHTTPMode(); got != tt.wantHTTP {
				t.Errorf("Config.IsHTTPMode() = %v, want %v", got, tt.wantHTTP)
			}
			if got := cfg.IsStdioMode(); got != tt.wantStdio {
				t.Errorf("Config.IsStdioMode() = %v, want %v", got, tt.wantStdio)
			}
		})
	}
}

func TestConfigIsDebug(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			cfg := &Config{LogLevel: level}
			if got := cfg.IsDebug(); got != (level == "debug") {
				t.Errorf("Config.IsDebug() = %v for level %s", got, level)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := validConfig(t)
	s := cfg.String()

	for _, want := range []string{"Mode: http", "Port: 4000", cfg.SourceDirectory, cfg.OutputDirectory} {
		if !strings.Contains(s, want) {
			t.Errorf("Config.String() = %s, missing %q", s, want)
		}
	}
}
