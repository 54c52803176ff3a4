// ABOUTME: Centralized configuration for the voicenotes pipeline
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the voice-note pipeline. The pipeline
// and adapters receive these values explicitly; only this package and the
// CLI layer touch the environment.
type Config struct {
	// OpenAI settings
	OpenAIKey          string
	TranscribeModel    string
	EmbeddingModel     string
	EmbeddingDimension int
	Language           string

	// Qdrant settings
	QdrantURL      string
	QdrantAPIKey   string
	CollectionName string
	DistanceMetric string

	// Call policy
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults match the deployed collection: text-embedding-3-large
		// at 3072 dimensions under cosine distance.
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		TranscribeModel:    getEnv("VOICENOTES_TRANSCRIBE_MODEL", "whisper-1"),
		EmbeddingModel:     getEnv("VOICENOTES_EMBEDDING_MODEL", "text-embedding-3-large"),
		EmbeddingDimension: getEnvInt("VOICENOTES_EMBEDDING_DIMENSION", 3072),
		Language:           os.Getenv("VOICENOTES_LANGUAGE"),
		QdrantURL:          os.Getenv("QDRANT_URL"),
		QdrantAPIKey:       os.Getenv("QDRANT_API_KEY"),
		CollectionName:     getEnv("VOICENOTES_COLLECTION", "notes"),
		DistanceMetric:     getEnv("VOICENOTES_DISTANCE", "Cosine"),
		Timeout:            getEnvDuration("VOICENOTES_TIMEOUT", 30*time.Second),
		MaxRetries:         getEnvInt("VOICENOTES_MAX_RETRIES", 2),
		RetryDelay:         getEnvDuration("VOICENOTES_RETRY_DELAY", 2*time.Second),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("VOICENOTES_EMBEDDING_DIMENSION must be positive, got %d", c.EmbeddingDimension)
	}
	if c.CollectionName == "" {
		return fmt.Errorf("VOICENOTES_COLLECTION must not be empty")
	}
	switch c.DistanceMetric {
	case "Cosine", "Euclid", "Dot":
	default:
		return fmt.Errorf("VOICENOTES_DISTANCE must be Cosine, Euclid, or Dot, got %q", c.DistanceMetric)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("VOICENOTES_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("VOICENOTES_TIMEOUT must be positive, got %v", c.Timeout)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
