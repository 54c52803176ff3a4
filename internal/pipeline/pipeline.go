// ABOUTME: Note pipeline orchestrating transcription, embedding, and vector storage
// ABOUTME: Owns collection bootstrap; ingest and retrieve are strictly sequential flows
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harper/voicenotes/internal/models"
)

// Transcriber converts an audio byte stream into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Embedder converts text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// VectorStore manages the note collection and its two core operations,
// plus the listing and deletion the browse surface needs.
type VectorStore interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, note models.Note) error
	Search(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]models.ScoredNote, error)
	List(ctx context.Context, limit int) ([]models.ScoredNote, error)
	Delete(ctx context.Context, id string) error
}

// Pipeline composes the three adapters. It performs no retries of its own:
// transcription and embedding are billed external calls, so duplicating
// them silently is worse than surfacing a transient error to the caller.
type Pipeline struct {
	transcriber Transcriber
	embedder    Embedder
	store       VectorStore

	mu           sync.Mutex
	bootstrapped bool
	conflictErr  error
}

// New creates a pipeline over the given adapters
func New(transcriber Transcriber, embedder Embedder, store VectorStore) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		embedder:    embedder,
		store:       store,
	}
}

// bootstrap ensures the collection exists before the first write or search.
// A schema conflict is sticky: once the collection is known to disagree
// with the configuration, every subsequent call fails fast. Transient
// bootstrap failures are not sticky, so the next call can retry.
func (p *Pipeline) bootstrap(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conflictErr != nil {
		return p.conflictErr
	}
	if p.bootstrapped {
		return nil
	}

	if err := p.store.EnsureCollection(ctx); err != nil {
		if models.ClassOf(err) == models.SchemaConflict {
			p.conflictErr = err
		}
		return err
	}

	p.bootstrapped = true
	return nil
}

// IngestAudio transcribes an audio payload and persists the resulting note.
// The flow is transcribe, embed, upsert; any stage's failure aborts with
// that adapter's classified error. The upsert is the single commit point,
// so a failure before it leaves nothing in the store.
func (p *Pipeline) IngestAudio(ctx context.Context, audio []byte, metadata map[string]string) (*models.Note, error) {
	if err := p.bootstrap(ctx); err != nil {
		return nil, err
	}

	text, err := p.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, err
	}

	return p.ingest(ctx, text, metadata)
}

// IngestText persists a note from already-final text, the path taken when
// the user has edited a transcript before saving.
func (p *Pipeline) IngestText(ctx context.Context, text string, metadata map[string]string) (*models.Note, error) {
	if err := p.bootstrap(ctx); err != nil {
		return nil, err
	}
	return p.ingest(ctx, text, metadata)
}

func (p *Pipeline) ingest(ctx context.Context, text string, metadata map[string]string) (*models.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.E(models.InvalidInput, models.Unknown, "ingest", fmt.Errorf("note text is empty"))
	}

	vector, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	note := models.Note{
		ID:        uuid.New().String(),
		Text:      text,
		Embedding: vector,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}

	if err := p.store.Upsert(ctx, note); err != nil {
		return nil, err
	}

	return &note, nil
}

// Retrieve embeds the query text and returns the topK most similar notes.
// An empty result is not an error. Adapter failures surface unchanged.
func (p *Pipeline) Retrieve(ctx context.Context, query string, topK int, filter map[string]any) ([]models.ScoredNote, error) {
	if err := p.bootstrap(ctx); err != nil {
		return nil, err
	}

	if strings.TrimSpace(query) == "" {
		return nil, models.E(models.InvalidInput, models.Unknown, "retrieve", fmt.Errorf("query is empty"))
	}
	if topK <= 0 {
		return nil, models.E(models.InvalidInput, models.Unknown, "retrieve", fmt.Errorf("topK must be positive, got %d", topK))
	}

	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	return p.store.Search(ctx, vector, topK, filter)
}

// List returns up to limit stored notes, newest first.
func (p *Pipeline) List(ctx context.Context, limit int) ([]models.ScoredNote, error) {
	if err := p.bootstrap(ctx); err != nil {
		return nil, err
	}
	return p.store.List(ctx, limit)
}

// Delete removes a stored note by ID.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	if err := p.bootstrap(ctx); err != nil {
		return err
	}
	return p.store.Delete(ctx, id)
}
