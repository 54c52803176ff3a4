// ABOUTME: Note models for vector storage and semantic search
// ABOUTME: Defines Note and ScoredNote structures with dimension validation
package models

import (
	"fmt"
	"time"
)

// Note is the unit of persistence: a transcribed or edited text snippet
// plus its embedding vector, stored under a stable UUID.
type Note struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ScoredNote is a search result: a stored note with its similarity score.
// Score is nil for listing results, where no query vector is involved.
type ScoredNote struct {
	Note  Note     `json:"note"`
	Score *float64 `json:"score,omitempty"`
}

// ValidateDimension checks that the note's embedding matches the
// collection's configured dimension. A mismatch is a configuration error
// and must never be truncated or padded away.
func (n *Note) ValidateDimension(expected int) error {
	if len(n.Embedding) == 0 {
		return fmt.Errorf("note %s: embedding cannot be empty", n.ID)
	}
	if len(n.Embedding) != expected {
		return fmt.Errorf("note %s: embedding dimension mismatch: expected %d, got %d", n.ID, expected, len(n.Embedding))
	}
	return nil
}
