// ABOUTME: Transcription adapter wrapping the OpenAI speech-to-text API
// ABOUTME: Converts a raw audio payload into plain text via whisper-1
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harper/voicenotes/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the default speech-to-text model
const DefaultModel = openai.Whisper1

// Client wraps the OpenAI audio transcription endpoint. It is stateless
// per call and safe to share across concurrent requests.
type Client struct {
	client   *openai.Client
	model    string
	language string
	timeout  time.Duration
}

// New creates a transcription client with the given API key
func New(apiKey, model, language string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return NewWithClient(openai.NewClient(apiKey), model, language, timeout), nil
}

// NewWithClient creates a transcription client around an existing OpenAI
// client. Used by tests to point at a stub server.
func NewWithClient(client *openai.Client, model, language string, timeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client:   client,
		model:    model,
		language: language,
		timeout:  timeout,
	}
}

// Transcribe converts an audio byte stream into plain text. A failure here
// aborts the ingest flow for that note; the caller may retry the whole
// operation. No partial transcripts are retried locally.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	const op = "transcribe"

	if len(audio) == 0 {
		return "", models.E(models.InvalidInput, models.Unknown, op, fmt.Errorf("audio payload is empty"))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// The recorder exports mp3; the filename hint tells the API the format.
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: "note.mp3",
		Reader:   bytes.NewReader(audio),
		Language: c.language,
	})
	if err != nil {
		return "", models.E(models.TranscriptionFailure, classify(err), op, err)
	}

	if resp.Text == "" {
		return "", models.E(models.TranscriptionFailure, models.Unknown, op, fmt.Errorf("service returned an empty transcript"))
	}

	return resp.Text, nil
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
