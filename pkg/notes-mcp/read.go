package notes

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
)

type GetNoteRequest struct {
	Scope
	ID Int `json:"id"`
}

func (r *GetNoteRequest) Validate() error {
	_, err := r.ID.Value("id")
	return err
}

func (ns *NotesServer) NewGetNoteTool() {
	tool := mcp.NewTool(
		"get_note",
		mcp.WithDescription("Read a note, including its content, by id"),
		mcp.WithNumber("id", mcp.Description("ID of the note to read"), mcp.Required()),
		withWorkspace(),
		withUserID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.GetNote))
}

// GetNote reads the contents of a note
func (ns *NotesServer) GetNote(ctx context.Context, req mcp.CallToolRequest, params GetNoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}

	note, err := ns.api.GetNote(ctx, id, params.Workspace.String(), params.UserID.String())
	if err != nil {
		slog.Error("failed to read note", "id", id, "error", err)
		return nil, err
	}

	if note == nil {
		return nil, notFound("Note %d not found", id)
	}

	return successResult(fields{
		"note": toNote(*note),
	})
}
