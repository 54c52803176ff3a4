// ABOUTME: MCP tool definitions and registration for the voicenotes server
// ABOUTME: Defines JSON schemas for the note store/search/list/delete tools
package mcp

import (
	"github.com/harper/voicenotes/internal/pipeline"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, pipe *pipeline.Pipeline) *Handlers {
	handlers := &Handlers{pipeline: pipe}

	// 1. store_note - Persist a text note with its embedding
	server.AddTool(mcp.Tool{
		Name:        "store_note",
		Description: "Store a note. The text is embedded and persisted in the vector collection for later semantic search.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Note text to store",
				},
				"tags": map[string]interface{}{
					"type":        "string",
					"description": "Optional comma-separated tags attached as metadata",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.StoreNote)

	// 2. search_notes - Semantic search over stored notes
	server.AddTool(mcp.Tool{
		Name:        "search_notes",
		Description: "Search stored notes by meaning. Returns notes ranked by similarity to the query.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text search query",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchNotes)

	// 3. list_notes - Browse stored notes, newest first
	server.AddTool(mcp.Tool{
		Name:        "list_notes",
		Description: "List stored notes, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of notes to return (default: 20)",
					"default":     20,
				},
			},
		},
	}, handlers.ListNotes)

	// 4. delete_note - Remove a stored note by id
	server.AddTool(mcp.Tool{
		Name:        "delete_note",
		Description: "Delete a stored note by its id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the note to delete",
				},
			},
			Required: []string{"id"},
		},
	}, handlers.DeleteNote)

	return handlers
}
