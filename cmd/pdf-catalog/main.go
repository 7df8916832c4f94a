package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/pricebook/pdf-catalog/internal/config"
	"github.com/pricebook/pdf-catalog/internal/extractor"
	"github.com/pricebook/pdf-catalog/internal/mcp"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the execution mode
func setupLogging(cfg *config.Config) {
	if cfg.IsMCPMode() {
		// In MCP mode, redirect log output to stderr to avoid interfering with the protocol
		log.SetOutput(os.Stderr)
		// Reduce log verbosity unless debug is enabled
		if !cfg.IsDebug() {
			log.SetOutput(os.NewFile(0, os.DevNull))
		}
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// runBatchMode processes the input directory once and exits
func runBatchMode(cfg *config.Config, service *extractor.Service) {
	summary, err := service.Run(cfg.InputDirectory)
	if err != nil {
		log.Fatalf("Extraction run failed: %v", err)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// runMCPMode serves the extraction tools over stdio
func runMCPMode(ctx context.Context, server *mcp.Server) {
	// The parent process controls our lifecycle; exit cleanly when
	// stdin is closed or we get an error.
	if err := server.Run(ctx); err != nil {
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

func main() {
	// Check for version flag before parsing other flags
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

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	service := extractor.NewService(cfg.MaxFileSize, cfg.OutputDirectory)

	if cfg.IsRunMode() {
		runBatchMode(cfg, service)
		return
	}

	server, err := mcp.NewServer(cfg, service)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runMCPMode(ctx, server)
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF Catalog Extractor\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
