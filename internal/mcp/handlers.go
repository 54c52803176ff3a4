// ABOUTME: MCP tool handler implementations for the voicenotes server
// ABOUTME: Thin wrappers over the note pipeline with classified error reporting
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harper/voicenotes/internal/models"
	"github.com/harper/voicenotes/internal/pipeline"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	pipeline *pipeline.Pipeline
}

// StoreNote handles the store_note tool
func (h *Handlers) StoreNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	var metadata map[string]string
	if tags := request.GetString("tags", ""); tags != "" {
		metadata = map[string]string{"tags": tags}
	}

	note, err := h.pipeline.IngestText(ctx, text, metadata)
	if err != nil {
		return toolError("storing note", err), nil
	}

	response := map[string]interface{}{
		"id":         note.ID,
		"created_at": note.CreatedAt.Format(time.RFC3339),
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// SearchNotes handles the search_notes tool
func (h *Handlers) SearchNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	limit := request.GetInt("limit", 5)

	results, err := h.pipeline.Retrieve(ctx, query, limit, nil)
	if err != nil {
		return toolError("searching notes", err), nil
	}

	notes := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		entry := map[string]interface{}{
			"id":         r.Note.ID,
			"text":       r.Note.Text,
			"created_at": r.Note.CreatedAt.Format(time.RFC3339),
		}
		if r.Score != nil {
			entry["score"] = *r.Score
		}
		if len(r.Note.Metadata) > 0 {
			entry["metadata"] = r.Note.Metadata
		}
		notes = append(notes, entry)
	}

	responseJSON, err := json.Marshal(map[string]interface{}{"notes": notes})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ListNotes handles the list_notes tool
func (h *Handlers) ListNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)

	results, err := h.pipeline.List(ctx, limit)
	if err != nil {
		return toolError("listing notes", err), nil
	}

	notes := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		notes = append(notes, map[string]interface{}{
			"id":         r.Note.ID,
			"text":       r.Note.Text,
			"created_at": r.Note.CreatedAt.Format(time.RFC3339),
		})
	}

	responseJSON, err := json.Marshal(map[string]interface{}{"notes": notes})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// DeleteNote handles the delete_note tool
func (h *Handlers) DeleteNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required and must be a string"), nil
	}

	if err := h.pipeline.Delete(ctx, id); err != nil {
		return toolError("deleting note", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(`{"deleted": %q}`, id)), nil
}

// toolError renders a classified pipeline error with a hint the agent can
// act on: transient errors invite a retry, the rest point at configuration
// or credentials.
func toolError(action string, err error) *mcp.CallToolResult {
	var hint string
	switch models.ClassOf(err) {
	case models.Transient:
		hint = "temporary failure, safe to retry"
	case models.Forbidden:
		hint = "credentials problem, check API keys"
	case models.SchemaConflict, models.NotFound:
		hint = "configuration problem, check collection settings"
	default:
		hint = "not retryable"
	}
	msg := fmt.Sprintf("%s failed: %v (%s)", action, err, hint)
	return mcp.NewToolResultError(strings.TrimSpace(msg))
}
