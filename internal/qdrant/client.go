// ABOUTME: Vector store adapter for a Qdrant collection over its REST API
// ABOUTME: Handles collection bootstrap, idempotent upsert, similarity search, scroll, and delete
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/harper/voicenotes/internal/models"
)

// Config holds the connection and collection settings for the Qdrant client
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Distance   string // "Cosine", "Euclid", or "Dot"
	Timeout    time.Duration
}

// Client talks to a single Qdrant collection. The collection schema is
// effectively immutable after EnsureCollection, so the client is safe to
// share across concurrent requests.
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	dimension  int
	distance   string
	httpClient *http.Client
}

// NewClient creates a Qdrant client for the configured collection
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", cfg.Dimension)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		distance:   cfg.Distance,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Wire types for the Qdrant REST API. Point IDs must be UUIDs or unsigned
// integers; this client always writes UUID strings.

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createCollectionRequest struct {
	Vectors vectorParams `json:"vectors"`
}

type collectionInfoResponse struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors vectorParams `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

type pointPayload struct {
	Text      string            `json:"text"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type point struct {
	ID      string       `json:"id"`
	Vector  []float32    `json:"vector"`
	Payload pointPayload `json:"payload"`
}

type upsertRequest struct {
	Points []point `json:"points"`
}

type searchRequest struct {
	Vector      []float32      `json:"vector"`
	Limit       int            `json:"limit"`
	WithPayload bool           `json:"with_payload"`
	Filter      map[string]any `json:"filter,omitempty"`
}

type scoredPoint struct {
	ID      string       `json:"id"`
	Score   float64      `json:"score"`
	Payload pointPayload `json:"payload"`
}

type searchResponse struct {
	Result []scoredPoint `json:"result"`
}

type scrollRequest struct {
	Limit       int  `json:"limit"`
	WithPayload bool `json:"with_payload"`
	WithVector  bool `json:"with_vector"`
}

type scrollResponse struct {
	Result struct {
		Points []scoredPoint `json:"points"`
	} `json:"result"`
}

type deleteRequest struct {
	Points []string `json:"points"`
}

// EnsureCollection checks that the collection exists with the expected
// dimension and distance metric, creating it if absent. Idempotent: a
// second call with identical parameters is a no-op. An existing collection
// with a different dimension or metric is a fatal configuration conflict
// and aborts without side effects.
func (c *Client) EnsureCollection(ctx context.Context) error {
	const op = "qdrant.ensure_collection"

	var info collectionInfoResponse
	status, err := c.do(ctx, http.MethodGet, "/collections/"+c.collection, nil, &info)
	if err != nil {
		return models.E(models.QueryFailure, classifyTransport(err), op, err)
	}

	switch {
	case status == http.StatusOK:
		got := info.Result.Config.Params.Vectors
		if got.Size != c.dimension || got.Distance != c.distance {
			return models.E(models.WriteFailure, models.SchemaConflict, op,
				fmt.Errorf("collection %q exists with dimension=%d distance=%s, expected dimension=%d distance=%s",
					c.collection, got.Size, got.Distance, c.dimension, c.distance))
		}
		return nil
	case status == http.StatusNotFound:
		// Absent: create it with the configured schema.
	default:
		return models.E(models.QueryFailure, models.ClassifyStatus(status), op,
			fmt.Errorf("describe collection %q: status %d", c.collection, status))
	}

	req := createCollectionRequest{Vectors: vectorParams{Size: c.dimension, Distance: c.distance}}
	status, err = c.do(ctx, http.MethodPut, "/collections/"+c.collection, req, nil)
	if err != nil {
		return models.E(models.WriteFailure, classifyTransport(err), op, err)
	}
	if status < 200 || status >= 300 {
		return models.E(models.WriteFailure, models.ClassifyStatus(status), op,
			fmt.Errorf("create collection %q: status %d", c.collection, status))
	}
	return nil
}

// Upsert writes a note's id, embedding, and payload into the collection.
// Idempotent on ID: re-upserting the same ID overwrites the existing point.
func (c *Client) Upsert(ctx context.Context, note models.Note) error {
	const op = "qdrant.upsert"

	if err := note.ValidateDimension(c.dimension); err != nil {
		return models.E(models.WriteFailure, models.SchemaConflict, op, err)
	}

	req := upsertRequest{Points: []point{{
		ID:     note.ID,
		Vector: note.Embedding,
		Payload: pointPayload{
			Text:      note.Text,
			CreatedAt: note.CreatedAt,
			Metadata:  note.Metadata,
		},
	}}}

	status, err := c.do(ctx, http.MethodPut, "/collections/"+c.collection+"/points?wait=true", req, nil)
	if err != nil {
		return models.E(models.WriteFailure, classifyTransport(err), op, err)
	}
	if status < 200 || status >= 300 {
		return models.E(models.WriteFailure, models.ClassifyStatus(status), op,
			fmt.Errorf("upsert point %s: status %d", note.ID, status))
	}
	return nil
}

// Search returns the topK stored notes ranked by descending similarity to
// the query vector. Ranking is deterministic: ties are broken by ascending
// ID rather than left to the backend's ordering. An empty collection yields
// an empty slice, not an error.
func (c *Client) Search(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]models.ScoredNote, error) {
	const op = "qdrant.search"

	if topK <= 0 {
		return nil, models.E(models.InvalidInput, models.Unknown, op, fmt.Errorf("topK must be positive, got %d", topK))
	}
	if len(vector) != c.dimension {
		return nil, models.E(models.QueryFailure, models.SchemaConflict, op,
			fmt.Errorf("query vector has %d dimensions, collection expects %d", len(vector), c.dimension))
	}

	req := searchRequest{
		Vector:      vector,
		Limit:       topK,
		WithPayload: true,
		Filter:      filter,
	}

	var resp searchResponse
	status, err := c.do(ctx, http.MethodPost, "/collections/"+c.collection+"/points/search", req, &resp)
	if err != nil {
		return nil, models.E(models.QueryFailure, classifyTransport(err), op, err)
	}
	if status < 200 || status >= 300 {
		return nil, models.E(models.QueryFailure, models.ClassifyStatus(status), op,
			fmt.Errorf("search collection %q: status %d", c.collection, status))
	}

	results := make([]models.ScoredNote, 0, len(resp.Result))
	for _, sp := range resp.Result {
		results = append(results, toScoredNote(sp, true))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if *results[i].Score != *results[j].Score {
			return *results[i].Score > *results[j].Score
		}
		return results[i].Note.ID < results[j].Note.ID
	})

	return results, nil
}

// List returns up to limit stored notes, newest first. No query vector is
// involved, so scores are nil.
func (c *Client) List(ctx context.Context, limit int) ([]models.ScoredNote, error) {
	const op = "qdrant.list"

	if limit <= 0 {
		return nil, models.E(models.InvalidInput, models.Unknown, op, fmt.Errorf("limit must be positive, got %d", limit))
	}

	req := scrollRequest{Limit: limit, WithPayload: true, WithVector: false}

	var resp scrollResponse
	status, err := c.do(ctx, http.MethodPost, "/collections/"+c.collection+"/points/scroll", req, &resp)
	if err != nil {
		return nil, models.E(models.QueryFailure, classifyTransport(err), op, err)
	}
	if status < 200 || status >= 300 {
		return nil, models.E(models.QueryFailure, models.ClassifyStatus(status), op,
			fmt.Errorf("scroll collection %q: status %d", c.collection, status))
	}

	results := make([]models.ScoredNote, 0, len(resp.Result.Points))
	for _, sp := range resp.Result.Points {
		results = append(results, toScoredNote(sp, false))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].Note.CreatedAt.Equal(results[j].Note.CreatedAt) {
			return results[i].Note.CreatedAt.After(results[j].Note.CreatedAt)
		}
		return results[i].Note.ID < results[j].Note.ID
	})

	return results, nil
}

// Delete removes a note from the collection by ID
func (c *Client) Delete(ctx context.Context, id string) error {
	const op = "qdrant.delete"

	if id == "" {
		return models.E(models.InvalidInput, models.Unknown, op, fmt.Errorf("id is empty"))
	}

	req := deleteRequest{Points: []string{id}}
	status, err := c.do(ctx, http.MethodPost, "/collections/"+c.collection+"/points/delete?wait=true", req, nil)
	if err != nil {
		return models.E(models.WriteFailure, classifyTransport(err), op, err)
	}
	if status < 200 || status >= 300 {
		return models.E(models.WriteFailure, models.ClassifyStatus(status), op,
			fmt.Errorf("delete point %s: status %d", id, status))
	}
	return nil
}

// do sends one JSON request and decodes the response body into out when the
// status is 2xx. Non-2xx statuses are returned to the caller for
// classification; only transport failures produce an error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	} else {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return resp.StatusCode, nil
}

func toScoredNote(sp scoredPoint, withScore bool) models.ScoredNote {
	sn := models.ScoredNote{
		Note: models.Note{
			ID:        sp.ID,
			Text:      sp.Payload.Text,
			CreatedAt: sp.Payload.CreatedAt,
			Metadata:  sp.Payload.Metadata,
		},
	}
	if withScore {
		score := sp.Score
		sn.Score = &score
	}
	return sn
}

// classifyTransport maps a transport-level failure into the taxonomy.
// Timeouts and connection errors are transient and safe to retry; failures
// that never reached the network are not.
func classifyTransport(err error) models.Class {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.Transient
	}
	// url.Error wraps connection refused, DNS failures, and the http
	// client's own timeout; all are worth retrying.
	var ue *url.Error
	if errors.As(err, &ue) {
		return models.Transient
	}
	return models.Unknown
}
