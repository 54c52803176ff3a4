// ABOUTME: Tests for the note pipeline using in-memory fake adapters
// ABOUTME: Covers ingest flows, bootstrap behavior, retrieval ranking, and failure propagation
package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/harper/voicenotes/internal/models"
)

// fakeTranscriber maps audio payloads to canned transcripts.
type fakeTranscriber struct {
	transcripts map[string]string
	err         error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(audio) == 0 {
		return "", models.E(models.InvalidInput, models.Unknown, "transcribe", fmt.Errorf("audio payload is empty"))
	}
	text, ok := f.transcripts[string(audio)]
	if !ok {
		return "", models.E(models.TranscriptionFailure, models.Unknown, "transcribe", fmt.Errorf("no transcript"))
	}
	return text, nil
}

// fakeEmbedder returns fixed vectors per text so similarity is predictable.
type fakeEmbedder struct {
	vectors   map[string][]float32
	dimension int
	err       error
	calls     int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	// Unknown texts get an arbitrary unit vector so ingest still works.
	v := make([]float32, f.dimension)
	v[0] = 1
	return v, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dimension }

// fakeStore keeps notes in memory and scores searches by cosine similarity.
type fakeStore struct {
	mu          sync.Mutex
	notes       map[string]models.Note
	ensureCalls int
	ensureErr   error
	upsertErr   error
	searchErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{notes: make(map[string]models.Note)}
}

func (f *fakeStore) EnsureCollection(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureCalls++
	return f.ensureErr
}

func (f *fakeStore) Upsert(ctx context.Context, note models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.notes[note.ID] = note
	return nil
}

func (f *fakeStore) Search(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]models.ScoredNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	results := make([]models.ScoredNote, 0, len(f.notes))
	for _, note := range f.notes {
		score := cosine(vector, note.Embedding)
		results = append(results, models.ScoredNote{Note: note, Score: &score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if *results[i].Score != *results[j].Score {
			return *results[i].Score > *results[j].Score
		}
		return results[i].Note.ID < results[j].Note.ID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (f *fakeStore) List(ctx context.Context, limit int) ([]models.ScoredNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	results := make([]models.ScoredNote, 0, len(f.notes))
	for _, note := range f.notes {
		results = append(results, models.ScoredNote{Note: note})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].Note.CreatedAt.Equal(results[j].Note.CreatedAt) {
			return results[i].Note.CreatedAt.After(results[j].Note.CreatedAt)
		}
		return results[i].Note.ID < results[j].Note.ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.notes, id)
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func newTestPipeline() (*Pipeline, *fakeTranscriber, *fakeEmbedder, *fakeStore) {
	transcriber := &fakeTranscriber{transcripts: map[string]string{
		"grocery.mp3": "buy milk and eggs",
		"dentist.mp3": "schedule dentist appointment for next tuesday",
	}}
	embedder := &fakeEmbedder{
		dimension: 4,
		vectors: map[string][]float32{
			"buy milk and eggs":                             {0.9, 0.1, 0.0, 0.0},
			"schedule dentist appointment for next tuesday": {0.0, 0.0, 0.9, 0.1},
			"grocery list":                                  {0.8, 0.2, 0.0, 0.0},
		},
	}
	store := newFakeStore()
	return New(transcriber, embedder, store), transcriber, embedder, store
}

func TestIngestAudio_StoresTranscribedNote(t *testing.T) {
	pipe, _, embedder, store := newTestPipeline()

	note, err := pipe.IngestAudio(context.Background(), []byte("grocery.mp3"), map[string]string{"source": "audio"})
	if err != nil {
		t.Fatalf("IngestAudio() failed: %v", err)
	}

	if note.Text != "buy milk and eggs" {
		t.Errorf("note text = %q, want the transcript", note.Text)
	}
	if note.ID == "" {
		t.Error("note should have a generated ID")
	}
	if note.CreatedAt.IsZero() {
		t.Error("note should have a creation timestamp")
	}
	if len(note.Embedding) != embedder.Dimension() {
		t.Errorf("embedding length = %d, want %d", len(note.Embedding), embedder.Dimension())
	}
	if note.Metadata["source"] != "audio" {
		t.Errorf("metadata = %v, want source=audio", note.Metadata)
	}
	if _, ok := store.notes[note.ID]; !ok {
		t.Error("note was not persisted to the store")
	}
}

func TestIngestText_TrimsAndStores(t *testing.T) {
	pipe, _, _, store := newTestPipeline()

	note, err := pipe.IngestText(context.Background(), "  buy milk and eggs  ", nil)
	if err != nil {
		t.Fatalf("IngestText() failed: %v", err)
	}
	if note.Text != "buy milk and eggs" {
		t.Errorf("note text = %q, want trimmed text", note.Text)
	}
	if len(store.notes) != 1 {
		t.Errorf("store holds %d notes, want 1", len(store.notes))
	}
}

func TestIngestText_EmptyTextIsInvalidInput(t *testing.T) {
	pipe, _, embedder, store := newTestPipeline()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := pipe.IngestText(context.Background(), text, nil)
		if err == nil {
			t.Fatalf("IngestText(%q) should fail", text)
		}
		if models.KindOf(err) != models.InvalidInput {
			t.Errorf("IngestText(%q) kind = %v, want InvalidInput", text, models.KindOf(err))
		}
	}
	if embedder.calls != 0 {
		t.Error("empty text must be rejected before embedding")
	}
	if len(store.notes) != 0 {
		t.Error("no note should have been stored")
	}
}

func TestBootstrap_RunsOnce(t *testing.T) {
	pipe, _, _, store := newTestPipeline()

	for i := 0; i < 3; i++ {
		if _, err := pipe.IngestText(context.Background(), "buy milk and eggs", nil); err != nil {
			t.Fatalf("IngestText() call %d failed: %v", i+1, err)
		}
	}
	if _, err := pipe.Retrieve(context.Background(), "grocery list", 5, nil); err != nil {
		t.Fatalf("Retrieve() failed: %v", err)
	}

	if store.ensureCalls != 1 {
		t.Errorf("EnsureCollection called %d times, want 1", store.ensureCalls)
	}
}

func TestBootstrap_SchemaConflictIsSticky(t *testing.T) {
	pipe, _, embedder, store := newTestPipeline()
	store.ensureErr = models.E(models.WriteFailure, models.SchemaConflict, "qdrant.ensure_collection",
		fmt.Errorf("dimension mismatch"))

	_, err := pipe.IngestText(context.Background(), "buy milk and eggs", nil)
	if err == nil {
		t.Fatal("first call should fail on bootstrap")
	}
	if models.ClassOf(err) != models.SchemaConflict {
		t.Errorf("class = %v, want SchemaConflict", models.ClassOf(err))
	}

	// Clearing the fault must not help: the conflict is remembered.
	store.ensureErr = nil
	_, err = pipe.IngestText(context.Background(), "buy milk and eggs", nil)
	if err == nil {
		t.Fatal("second call should fail fast on the remembered conflict")
	}
	if models.ClassOf(err) != models.SchemaConflict {
		t.Errorf("class = %v, want SchemaConflict", models.ClassOf(err))
	}
	if store.ensureCalls != 1 {
		t.Errorf("EnsureCollection called %d times, want 1 (fail fast)", store.ensureCalls)
	}
	if embedder.calls != 0 {
		t.Error("no billed call should happen after a schema conflict")
	}
}

func TestBootstrap_TransientFailureIsRetryable(t *testing.T) {
	pipe, _, _, store := newTestPipeline()
	store.ensureErr = models.E(models.QueryFailure, models.Transient, "qdrant.ensure_collection",
		fmt.Errorf("connection refused"))

	_, err := pipe.IngestText(context.Background(), "buy milk and eggs", nil)
	if err == nil {
		t.Fatal("first call should fail on bootstrap")
	}
	if !models.IsTransient(err) {
		t.Errorf("class = %v, want Transient", models.ClassOf(err))
	}

	// Once the store recovers, the next call bootstraps normally.
	store.ensureErr = nil
	if _, err := pipe.IngestText(context.Background(), "buy milk and eggs", nil); err != nil {
		t.Fatalf("call after recovery failed: %v", err)
	}
	if store.ensureCalls != 2 {
		t.Errorf("EnsureCollection called %d times, want 2", store.ensureCalls)
	}
}

func TestIngest_TranscriptionFailureStoresNothing(t *testing.T) {
	pipe, transcriber, embedder, store := newTestPipeline()
	transcriber.err = models.E(models.TranscriptionFailure, models.Transient, "transcribe",
		fmt.Errorf("timeout"))

	_, err := pipe.IngestAudio(context.Background(), []byte("grocery.mp3"), nil)
	if err == nil {
		t.Fatal("IngestAudio() should fail")
	}
	if models.KindOf(err) != models.TranscriptionFailure {
		t.Errorf("kind = %v, want TranscriptionFailure", models.KindOf(err))
	}
	if embedder.calls != 0 {
		t.Error("embedding must not run after a failed transcription")
	}
	if len(store.notes) != 0 {
		t.Error("no note should have been stored")
	}
}

func TestIngest_EmbeddingFailureStoresNothing(t *testing.T) {
	pipe, _, embedder, store := newTestPipeline()
	embedder.err = models.E(models.EmbeddingFailure, models.Transient, "embed",
		fmt.Errorf("503 service unavailable"))

	_, err := pipe.IngestText(context.Background(), "buy milk and eggs", nil)
	if err == nil {
		t.Fatal("IngestText() should fail")
	}
	if models.KindOf(err) != models.EmbeddingFailure {
		t.Errorf("kind = %v, want EmbeddingFailure", models.KindOf(err))
	}
	if !models.IsTransient(err) {
		t.Errorf("class = %v, want Transient", models.ClassOf(err))
	}
	if len(store.notes) != 0 {
		t.Error("no note should have been stored")
	}
}

func TestIngest_WriteFailureSurfacesClass(t *testing.T) {
	pipe, _, _, store := newTestPipeline()
	store.upsertErr = models.E(models.WriteFailure, models.Forbidden, "qdrant.upsert",
		fmt.Errorf("status 403"))

	_, err := pipe.IngestText(context.Background(), "buy milk and eggs", nil)
	if err == nil {
		t.Fatal("IngestText() should fail")
	}
	if models.KindOf(err) != models.WriteFailure {
		t.Errorf("kind = %v, want WriteFailure", models.KindOf(err))
	}
	if models.ClassOf(err) != models.Forbidden {
		t.Errorf("class = %v, want Forbidden", models.ClassOf(err))
	}
}

func TestRetrieve_RanksRelevantNoteFirst(t *testing.T) {
	pipe, _, _, _ := newTestPipeline()

	grocery, err := pipe.IngestAudio(context.Background(), []byte("grocery.mp3"), nil)
	if err != nil {
		t.Fatalf("ingesting grocery note: %v", err)
	}
	if _, err := pipe.IngestAudio(context.Background(), []byte("dentist.mp3"), nil); err != nil {
		t.Fatalf("ingesting dentist note: %v", err)
	}

	results, err := pipe.Retrieve(context.Background(), "grocery list", 2, nil)
	if err != nil {
		t.Fatalf("Retrieve() failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Note.ID != grocery.ID {
		t.Errorf("top result = %q, want the grocery note", results[0].Note.Text)
	}
	if results[0].Score == nil || results[1].Score == nil {
		t.Fatal("retrieved notes should carry scores")
	}
	if *results[0].Score <= *results[1].Score {
		t.Errorf("scores not descending: %v then %v", *results[0].Score, *results[1].Score)
	}
}

func TestRetrieve_SelfSimilarity(t *testing.T) {
	pipe, _, _, _ := newTestPipeline()

	note, err := pipe.IngestText(context.Background(), "buy milk and eggs", nil)
	if err != nil {
		t.Fatalf("IngestText() failed: %v", err)
	}

	results, err := pipe.Retrieve(context.Background(), "buy milk and eggs", 1, nil)
	if err != nil {
		t.Fatalf("Retrieve() failed: %v", err)
	}
	if len(results) != 1 || results[0].Note.ID != note.ID {
		t.Fatal("querying with a note's own text should return that note first")
	}
	if got := *results[0].Score; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("self-similarity score = %v, want 1.0", got)
	}
}

func TestRetrieve_EmptyQueryIsInvalidInput(t *testing.T) {
	pipe, _, embedder, _ := newTestPipeline()

	_, err := pipe.Retrieve(context.Background(), "   ", 5, nil)
	if err == nil {
		t.Fatal("Retrieve() should fail on empty query")
	}
	if models.KindOf(err) != models.InvalidInput {
		t.Errorf("kind = %v, want InvalidInput", models.KindOf(err))
	}
	if embedder.calls != 0 {
		t.Error("empty query must be rejected before embedding")
	}
}

func TestRetrieve_InvalidTopK(t *testing.T) {
	pipe, _, _, _ := newTestPipeline()

	for _, topK := range []int{0, -3} {
		_, err := pipe.Retrieve(context.Background(), "grocery list", topK, nil)
		if err == nil {
			t.Fatalf("Retrieve(topK=%d) should fail", topK)
		}
		if models.KindOf(err) != models.InvalidInput {
			t.Errorf("Retrieve(topK=%d) kind = %v, want InvalidInput", topK, models.KindOf(err))
		}
	}
}

func TestRetrieve_EmptyStoreYieldsEmptyResults(t *testing.T) {
	pipe, _, _, _ := newTestPipeline()

	results, err := pipe.Retrieve(context.Background(), "grocery list", 5, nil)
	if err != nil {
		t.Fatalf("Retrieve() failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from an empty store, want 0", len(results))
	}
}

func TestRetrieve_SearchFailureSurfaces(t *testing.T) {
	pipe, _, _, store := newTestPipeline()
	store.searchErr = models.E(models.QueryFailure, models.Transient, "qdrant.search",
		fmt.Errorf("status 503"))

	_, err := pipe.Retrieve(context.Background(), "grocery list", 5, nil)
	if err == nil {
		t.Fatal("Retrieve() should fail")
	}
	if models.KindOf(err) != models.QueryFailure {
		t.Errorf("kind = %v, want QueryFailure", models.KindOf(err))
	}
}

func TestList_ReturnsStoredNotes(t *testing.T) {
	pipe, _, _, _ := newTestPipeline()

	if _, err := pipe.IngestText(context.Background(), "buy milk and eggs", nil); err != nil {
		t.Fatalf("IngestText() failed: %v", err)
	}
	if _, err := pipe.IngestText(context.Background(), "schedule dentist appointment for next tuesday", nil); err != nil {
		t.Fatalf("IngestText() failed: %v", err)
	}

	results, err := pipe.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d notes, want 2", len(results))
	}
	for i, r := range results {
		if r.Score != nil {
			t.Errorf("results[%d].Score should be nil for a listing", i)
		}
	}
}

func TestDelete_RemovesNote(t *testing.T) {
	pipe, _, _, store := newTestPipeline()

	note, err := pipe.IngestText(context.Background(), "buy milk and eggs", nil)
	if err != nil {
		t.Fatalf("IngestText() failed: %v", err)
	}

	if err := pipe.Delete(context.Background(), note.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if len(store.notes) != 0 {
		t.Error("note should have been removed from the store")
	}
}

func TestIngest_DistinctIDsPerNote(t *testing.T) {
	pipe, _, _, _ := newTestPipeline()

	a, err := pipe.IngestText(context.Background(), "buy milk and eggs", nil)
	if err != nil {
		t.Fatalf("IngestText() failed: %v", err)
	}
	b, err := pipe.IngestText(context.Background(), "buy milk and eggs", nil)
	if err != nil {
		t.Fatalf("IngestText() failed: %v", err)
	}

	if a.ID == b.ID {
		t.Error("two ingests of identical text must produce distinct notes")
	}
}
