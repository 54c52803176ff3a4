// ABOUTME: Embedding adapter wrapping the OpenAI embeddings API
// ABOUTME: Converts text into fixed-dimension vectors, verifying the returned length
package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/voicenotes/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the default embedding model
const DefaultModel = openai.LargeEmbedding3

// Client wraps the OpenAI embeddings endpoint. Stateless per call and safe
// to share across concurrent requests.
type Client struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
	timeout   time.Duration
}

// New creates an embedding client with the given API key
func New(apiKey, model string, dimension int, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return NewWithClient(openai.NewClient(apiKey), model, dimension, timeout), nil
}

// NewWithClient creates an embedding client around an existing OpenAI
// client. Used by tests to point at a stub server.
func NewWithClient(client *openai.Client, model string, dimension int, timeout time.Duration) *Client {
	m := openai.EmbeddingModel(model)
	if model == "" {
		m = DefaultModel
	}
	return &Client{
		client:    client,
		model:     m,
		dimension: dimension,
		timeout:   timeout,
	}
}

// Dimension returns the dimensionality of the output vectors.
func (c *Client) Dimension() int {
	return c.dimension
}

// Embed returns a vector of the configured dimension for the given text.
// The remote model is not guaranteed to be bit-identical across calls, but
// is similarity-preserving for equivalent text. The returned vector length
// is always verified against the configured dimension; the remote length is
// never trusted silently.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "embed"

	if strings.TrimSpace(text) == "" {
		return nil, models.E(models.InvalidInput, models.Unknown, op, fmt.Errorf("text is empty"))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      []string{text},
		Model:      c.model,
		Dimensions: c.dimension,
	})
	if err != nil {
		return nil, models.E(models.EmbeddingFailure, classify(err), op, err)
	}

	if len(resp.Data) == 0 {
		return nil, models.E(models.EmbeddingFailure, models.Unknown, op, fmt.Errorf("no embeddings returned"))
	}

	vector := resp.Data[0].Embedding
	if len(vector) != c.dimension {
		return nil, models.E(models.EmbeddingFailure, models.Unknown, op,
			fmt.Errorf("service returned %d dimensions, expected %d", len(vector), c.dimension))
	}

	return vector, nil
}

// classify maps an OpenAI client error into the shared error taxonomy.
func classify(err error) models.Class {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.Transient
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return models.ClassifyStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return models.ClassifyStatus(reqErr.HTTPStatusCode)
	}
	// Transport-level failures (connection refused, DNS) are retryable.
	return models.Transient
}
