// Package mcp exposes the catalog extraction pipeline as MCP tools over
// standard I/O.
package mcp

import (
	"context"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pricebook/pdf-catalog/internal/config"
	"github.com/pricebook/pdf-catalog/internal/extractor"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *extractor.Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *extractor.Service) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractFileTool := mcp.NewTool(
		"catalog_extract_file",
		mcp.WithDescription("Extract product rows and images from one PDF catalog into a CSV table"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(extractFileTool, s.handleExtractFile)

	extractDirectoryTool := mcp.NewTool(
		"catalog_extract_directory",
		mcp.WithDescription("Extract product rows and images from every PDF catalog found under a directory"),
		mcp.WithString("directory",
			mcp.Description("Directory to search for PDFs (uses the configured input directory if empty)"),
		),
	)
	s.mcpServer.AddTool(extractDirectoryTool, s.handleExtractDirectory)

	serverInfoTool := mcp.NewTool(
		"catalog_server_info",
		mcp.WithDescription("Get server information, available tools, and the configured directories"),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := s.service.ExtractFile(path)
	if result.Err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed for %s: %v", result.PDF, result.Err)), nil
	}

	return mcp.NewToolResultText(s.formatDocumentResult(result)), nil
}

func (s *Server) handleExtractDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.InputDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	files, err := s.service.FindDocuments(directory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No PDF files found in directory: %s", directory)), nil
	}

	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n\n", len(files), directory)
	succeeded := 0
	for _, file := range files {
		result := s.service.ExtractFile(file.Path)
		switch {
		case result.Err != nil:
			text += fmt.Sprintf("✗ %s: %v\n", result.PDF, result.Err)
		case result.NoData:
			text += fmt.Sprintf("- %s: no product data found\n", result.PDF)
		default:
			succeeded++
			text += fmt.Sprintf("✓ %s: %d rows, %d images -> %s\n",
				result.PDF, result.Rows, result.Images, result.TablePath)
		}
	}
	text += fmt.Sprintf("\n%d of %d documents produced tables under %s\n",
		succeeded, len(files), s.service.OutputRoot())

	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("📁 Input Directory: %s\n", s.config.InputDirectory)
	text += fmt.Sprintf("📂 Output Directory: %s\n", s.config.OutputDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", s.config.MaxFileSize/(1024*1024))

	files, err := s.service.ListDocuments(s.config.InputDirectory)
	if err == nil && len(files) > 0 {
		text += fmt.Sprintf("Input Directory Contents (%d PDF files found):\n", len(files))
		for i, file := range files {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(files)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "Input Directory Contents: No PDF files found\n\n"
	}

	text += "🛠️  Available Tools:\n"
	text += "\n• catalog_extract_file\n"
	text += "  Extracts product rows and images from one PDF catalog.\n"
	text += "  Parameters: path (required)\n"
	text += "\n• catalog_extract_directory\n"
	text += "  Extracts every PDF catalog found under a directory.\n"
	text += "  Parameters: directory (optional, defaults to the configured input directory)\n"
	text += "\n• catalog_server_info\n"
	text += "  Shows this information.\n"

	return mcp.NewToolResultText(text), nil
}

// Formatting methods
func (s *Server) formatDocumentResult(result *extractor.DocumentResult) string {
	if result.NoData {
		return fmt.Sprintf("No product data found in %s; no table written.", result.PDF)
	}

	text := fmt.Sprintf("Successfully extracted %s\n", result.PDF)
	text += fmt.Sprintf("Rows: %d\n", result.Rows)
	text += fmt.Sprintf("Images: %d\n", result.Images)
	text += fmt.Sprintf("Table: %s\n", result.TablePath)
	return text
}

// Run starts the MCP server over stdio
func (s *Server) Run(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting catalog MCP server in stdio mode")
		log.Printf("Input directory: %s", s.config.InputDirectory)
		log.Printf("Output directory: %s", s.config.OutputDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
