// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to store and search notes via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/voicenotes/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs voicenotes as an MCP (Model Context Protocol) server, exposing
note storage and semantic search tools over stdio.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an agent host)
  voicenotes mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "voicenotes": {
  #       "command": "voicenotes",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	pipe, _, err := newPipeline()
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer(
		"Voicenotes",
		"0.1.0",
	)

	mcp.RegisterTools(server, pipe)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("Voicenotes MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, shutting down...")
		}
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
