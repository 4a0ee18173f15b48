package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/a3tai/pdf-field-stamper/internal/config"
	"github.com/a3tai/pdf-field-stamper/internal/httpapi"
	"github.com/a3tai/pdf-field-stamper/internal/mcp"
	"github.com/a3tai/pdf-field-stamper/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// runner is implemented by both the HTTP and the MCP server
type runner interface {
	Run(ctx context.Context) error
}

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// stdout carries the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
		return
	}

	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// newRunner builds the service and the server for the configured mode
func newRunner(cfg *config.Config) (runner, error) {
	pdfService, err := pdf.NewService(pdf.ServiceOptions{
		MaxFileSize:     cfg.MaxFileSize,
		SourceDirectory: cfg.SourceDirectory,
		OutputDirectory: cfg.OutputDirectory,
		Debug:           cfg.IsDebug(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF service: %w", err)
	}

	if cfg.IsStdioMode() {
		server, err := mcp.NewServer(cfg, pdfService)
		if err != nil {
			return nil, fmt.Errorf("failed to create MCP server: %w", err)
		}
		return server, nil
	}

	server, err := httpapi.NewServer(cfg, pdfService)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}
	return server, nil
}

// runHTTPMode runs the HTTP server until it fails or a shutdown signal arrives
func runHTTPMode(ctx context.Context, cancel context.CancelFunc, server runner) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode runs the MCP server until the parent closes stdin
func runStdioMode(ctx context.Context, server runner) {
	if err := server.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	// pdfcpu would otherwise create a config directory under the user's home
	api.DisableConfigDir()

	if cfg.IsDebug() && cfg.IsHTTPMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	server, err := newRunner(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsHTTPMode() {
		runHTTPMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, server)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF Field Stamper\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
