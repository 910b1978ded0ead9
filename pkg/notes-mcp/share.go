package notes

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (ns *NotesServer) NewGetNoteShareTool() {
	tool := mcp.NewTool("get_note_share",
		mcp.WithDescription("Get the public sharing state of a note"),
		noteIDParam("ID of the note"),
		withUserID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.GetNoteShare))
}

func (ns *NotesServer) GetNoteShare(ctx context.Context, req mcp.CallToolRequest, params NoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}

	share, err := ns.api.GetNoteShare(ctx, id, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if share == nil {
		return nil, notFound("Note %d not found", id)
	}

	return successResult(fields{
		"id":    id,
		"share": toShare(*share),
	})
}

func (ns *NotesServer) NewShareNoteTool() {
	tool := mcp.NewTool("share_note",
		mcp.WithDescription("Make a note public and return its share link"),
		noteIDParam("ID of the note to share"),
		withUserID(),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.ShareNote))
}

func (ns *NotesServer) ShareNote(ctx context.Context, req mcp.CallToolRequest, params NoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}

	share, err := ns.api.CreateNoteShare(ctx, id, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if share == nil {
		return nil, notFound("Note %d not found", id)
	}

	out := toShare(*share)
	out.Public = true

	return successResult(fields{
		"id":      id,
		"message": fmt.Sprintf("Note %d is now public", id),
		"share":   out,
	})
}

func (ns *NotesServer) NewUnshareNoteTool() {
	tool := mcp.NewTool("unshare_note",
		mcp.WithDescription("Revoke the public link of a note"),
		noteIDParam("ID of the note"),
		withUserID(),
		mcp.WithDestructiveHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.UnshareNote))
}

func (ns *NotesServer) UnshareNote(ctx context.Context, req mcp.CallToolRequest, params NoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}

	ok, err := ns.api.DeleteNoteShare(ctx, id, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("Note %d not found or not shared", id)
	}

	return successResult(fields{
		"id":      id,
		"message": fmt.Sprintf("Note %d is no longer public", id),
	})
}

type FolderRequest struct {
	UserID   Text `json:"user_id,omitempty"`
	FolderID Int  `json:"folder_id"`
}

func (r *FolderRequest) Validate() error {
	_, err := r.FolderID.Value("folder_id")
	return err
}

func (ns *NotesServer) NewGetFolderShareTool() {
	tool := mcp.NewTool("get_folder_share",
		mcp.WithDescription("Get the public sharing state of a folder"),
		mcp.WithNumber("folder_id", mcp.Description("ID of the folder"), mcp.Required()),
		withUserID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.GetFolderShare))
}

func (ns *NotesServer) GetFolderShare(ctx context.Context, req mcp.CallToolRequest, params FolderRequest) (*mcp.CallToolResult, error) {
	folderID, err := params.FolderID.Value("folder_id")
	if err != nil {
		return nil, err
	}

	share, err := ns.api.GetFolderShare(ctx, folderID, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if share == nil {
		return nil, notFound("Folder %d not found", folderID)
	}

	return successResult(fields{
		"folder_id": folderID,
		"share":     toShare(*share),
	})
}
