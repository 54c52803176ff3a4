// ABOUTME: Main entry point for the voicenotes MCP server with stdio transport
// ABOUTME: Builds the note pipeline from env config and registers all tools
package main

import (
	"log"

	"github.com/harper/voicenotes/internal/config"
	"github.com/harper/voicenotes/internal/embed"
	"github.com/harper/voicenotes/internal/mcp"
	"github.com/harper/voicenotes/internal/pipeline"
	"github.com/harper/voicenotes/internal/qdrant"
	"github.com/harper/voicenotes/internal/transcribe"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}
	if cfg.QdrantURL == "" {
		log.Fatal("QDRANT_URL is not set")
	}

	transcriber, err := transcribe.New(cfg.OpenAIKey, cfg.TranscribeModel, cfg.Language, cfg.Timeout)
	if err != nil {
		log.Fatalf("Failed to initialize transcription client: %v", err)
	}

	embedder, err := embed.New(cfg.OpenAIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension, cfg.Timeout)
	if err != nil {
		log.Fatalf("Failed to initialize embedding client: %v", err)
	}

	store, err := qdrant.NewClient(qdrant.Config{
		URL:        cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.CollectionName,
		Dimension:  cfg.EmbeddingDimension,
		Distance:   cfg.DistanceMetric,
		Timeout:    cfg.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize vector store client: %v", err)
	}

	pipe := pipeline.New(transcriber, embedder, store)

	server := mcpserver.NewMCPServer(
		"Voicenotes",
		"0.1.0",
	)

	mcp.RegisterTools(server, pipe)

	log.Println("Voicenotes MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
