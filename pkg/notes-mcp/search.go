package notes

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/timothepoznanski/poznote-mcp/pkg/dto"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

type SearchNotesRequest struct {
	Scope
	Query Text `json:"query"`
	Limit Int  `json:"limit,omitempty"`
}

func (r *SearchNotesRequest) Validate() error {
	if _, err := requireString("query", r.Query.String()); err != nil {
		return err
	}

	if r.Limit.IsSet() {
		if _, err := r.Limit.Value("limit"); err != nil {
			return err
		}
	}

	return nil
}

// limit returns the requested result count clamped to the range the backend
// accepts.
func (r *SearchNotesRequest) limit() int {
	if !r.Limit.IsSet() {
		return defaultSearchLimit
	}

	n, err := r.Limit.Value("limit")
	if err != nil || n < 1 {
		return 1
	}

	return min(n, maxSearchLimit)
}

func (ns *NotesServer) NewSearchNotesTool() {
	tool := mcp.NewTool(
		"search_notes",
		mcp.WithDescription("Search notes by text query. Returns matching notes with excerpts."),
		mcp.WithString("query",
			mcp.Description("Search query (text to find in note titles and content)"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(defaultSearchLimit),
			mcp.Min(1),
			mcp.Max(maxSearchLimit),
			mcp.Description("Maximum number of results (default: 10)"),
		),
		withWorkspace(),
		withUserID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.SearchNotes))
}

// SearchNotes searches for text within notes
func (ns *NotesServer) SearchNotes(ctx context.Context, req mcp.CallToolRequest, params SearchNotesRequest) (*mcp.CallToolResult, error) {
	query, err := requireString("query", params.Query.String())
	if err != nil {
		return nil, err
	}

	limit := params.limit()

	notes, err := ns.api.SearchNotes(ctx, query, limit, params.Workspace.String(), params.UserID.String())
	if err != nil {
		return nil, err
	}

	// the backend is asked for at most limit results; cap in case it ignores that
	if len(notes) > limit {
		notes = notes[:limit]
	}

	results := make([]dto.SearchResult, 0, len(notes))
	for _, n := range notes {
		results = append(results, toSearchResult(n))
	}

	return successResult(fields{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}
