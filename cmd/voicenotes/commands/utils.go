// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Pipeline construction from config plus small formatting helpers
package commands

import (
	"fmt"
	"time"

	"github.com/harper/voicenotes/internal/config"
	"github.com/harper/voicenotes/internal/embed"
	"github.com/harper/voicenotes/internal/pipeline"
	"github.com/harper/voicenotes/internal/qdrant"
	"github.com/harper/voicenotes/internal/transcribe"
)

// newPipeline builds the note pipeline from environment-backed config.
// Configuration is read here, at the CLI boundary; the pipeline and
// adapters only ever see explicit values.
func newPipeline() (*pipeline.Pipeline, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.OpenAIKey == "" {
		return nil, nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if cfg.QdrantURL == "" {
		return nil, nil, fmt.Errorf("QDRANT_URL is not set")
	}

	transcriber, err := transcribe.New(cfg.OpenAIKey, cfg.TranscribeModel, cfg.Language, cfg.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing transcription client: %w", err)
	}

	embedder, err := embed.New(cfg.OpenAIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension, cfg.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing embedding client: %w", err)
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
		return nil, nil, fmt.Errorf("initializing vector store client: %w", err)
	}

	return pipeline.New(transcriber, embedder, store), cfg, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
