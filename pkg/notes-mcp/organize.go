package notes

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/timothepoznanski/poznote-mcp/pkg/dto"
)

// NoteRequest addresses a single note.
type NoteRequest struct {
	UserID Text `json:"user_id,omitempty"`
	ID     Int  `json:"id"`
}

func (r *NoteRequest) Validate() error {
	_, err := r.ID.Value("id")
	return err
}

func noteIDParam(description string) mcp.ToolOption {
	return mcp.WithNumber("id", mcp.Description(description), mcp.Required())
}

func (ns *NotesServer) NewRestoreNoteTool() {
	tool := mcp.NewTool("restore_note",
		mcp.WithDescription("Restore a note from the trash"),
		noteIDParam("ID of the trashed note to restore"),
		withUserID(),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.RestoreNote))
}

func (ns *NotesServer) RestoreNote(ctx context.Context, req mcp.CallToolRequest, params NoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}

	ok, err := ns.api.RestoreNote(ctx, id, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("Note %d not found in trash", id)
	}

	return successResult(fields{
		"id":      id,
		"message": fmt.Sprintf("Note %d restored", id),
	})
}

func (ns *NotesServer) NewDuplicateNoteTool() {
	tool := mcp.NewTool("duplicate_note",
		mcp.WithDescription("Create a copy of a note"),
		noteIDParam("ID of the note to duplicate"),
		withUserID(),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.DuplicateNote))
}

func (ns *NotesServer) DuplicateNote(ctx context.Context, req mcp.CallToolRequest, params NoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}

	note, err := ns.api.DuplicateNote(ctx, id, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, notFound("Note %d not found", id)
	}

	return successResult(fields{
		"message": fmt.Sprintf("Note %d duplicated as note %d", id, int(note.ID)),
		"note":    toSummary(*note),
	})
}

func (ns *NotesServer) NewToggleFavoriteTool() {
	tool := mcp.NewTool("toggle_favorite",
		mcp.WithDescription("Add a note to the favorites or remove it from them"),
		noteIDParam("ID of the note"),
		withUserID(),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.ToggleFavorite))
}

func (ns *NotesServer) ToggleFavorite(ctx context.Context, req mcp.CallToolRequest, params NoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}

	favorite, err := ns.api.ToggleFavorite(ctx, id, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if favorite == nil {
		return nil, notFound("Note %d not found", id)
	}

	state := "removed from"
	if *favorite {
		state = "added to"
	}

	return successResult(fields{
		"id":          id,
		"is_favorite": *favorite,
		"message":     fmt.Sprintf("Note %d %s favorites", id, state),
	})
}

type MoveNoteRequest struct {
	UserID   Text `json:"user_id,omitempty"`
	ID       Int  `json:"id"`
	FolderID Int  `json:"folder_id"`
}

func (r *MoveNoteRequest) Validate() error {
	if _, err := r.ID.Value("id"); err != nil {
		return err
	}
	_, err := r.FolderID.Value("folder_id")
	return err
}

func (ns *NotesServer) NewMoveNoteToFolderTool() {
	tool := mcp.NewTool("move_note_to_folder",
		mcp.WithDescription("Move a note into a folder"),
		noteIDParam("ID of the note to move"),
		mcp.WithNumber("folder_id", mcp.Description("ID of the destination folder"), mcp.Required()),
		withUserID(),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.MoveNoteToFolder))
}

func (ns *NotesServer) MoveNoteToFolder(ctx context.Context, req mcp.CallToolRequest, params MoveNoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}
	folderID, err := params.FolderID.Value("folder_id")
	if err != nil {
		return nil, err
	}

	ok, err := ns.api.MoveNoteToFolder(ctx, id, folderID, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("Note %d or folder %d not found", id, folderID)
	}

	return successResult(fields{
		"id":        id,
		"folder_id": folderID,
		"message":   fmt.Sprintf("Note %d moved to folder %d", id, folderID),
	})
}

func (ns *NotesServer) NewRemoveNoteFromFolderTool() {
	tool := mcp.NewTool("remove_note_from_folder",
		mcp.WithDescription("Move a note out of its folder to the workspace root"),
		noteIDParam("ID of the note"),
		withUserID(),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.RemoveNoteFromFolder))
}

func (ns *NotesServer) RemoveNoteFromFolder(ctx context.Context, req mcp.CallToolRequest, params NoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}

	ok, err := ns.api.RemoveNoteFromFolder(ctx, id, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("Note %d not found", id)
	}

	return successResult(fields{
		"id":      id,
		"message": fmt.Sprintf("Note %d removed from its folder", id),
	})
}

func (ns *NotesServer) NewConvertNoteTool() {
	tool := mcp.NewTool("convert_note",
		mcp.WithDescription("Convert a note between the HTML and Markdown formats"),
		noteIDParam("ID of the note to convert"),
		withUserID(),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.ConvertNote))
}

func (ns *NotesServer) ConvertNote(ctx context.Context, req mcp.CallToolRequest, params NoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}

	note, err := ns.api.ConvertNote(ctx, id, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, notFound("Note %d not found", id)
	}

	return successResult(fields{
		"message": fmt.Sprintf("Note %d converted to %s", id, note.Type),
		"note":    toSummary(*note),
	})
}

func (ns *NotesServer) NewListAttachmentsTool() {
	tool := mcp.NewTool("list_attachments",
		mcp.WithDescription("List the files attached to a note"),
		noteIDParam("ID of the note"),
		withUserID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.ListAttachments))
}

func (ns *NotesServer) ListAttachments(ctx context.Context, req mcp.CallToolRequest, params NoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}

	attachments, err := ns.api.ListAttachments(ctx, id, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if attachments == nil {
		return nil, notFound("Note %d not found", id)
	}

	out := make([]dto.Attachment, 0, len(attachments))
	for _, a := range attachments {
		name := a.OriginalFilename
		if name == "" {
			name = a.Filename
		}
		out = append(out, dto.Attachment{
			ID:       a.ID,
			Filename: name,
			Size:     int(a.FileSize),
			Type:     a.FileType,
			Uploaded: a.UploadedAt,
		})
	}

	return successResult(fields{
		"id":          id,
		"count":       len(out),
		"attachments": out,
	})
}

type EmptyTrashRequest struct {
	UserID  Text `json:"user_id,omitempty"`
	Confirm Flag `json:"confirm"`
}

func (r *EmptyTrashRequest) Validate() error {
	if !r.Confirm {
		return invalidArgument("confirm must be true to permanently delete the notes in the trash")
	}
	return nil
}

func (ns *NotesServer) NewEmptyTrashTool() {
	tool := mcp.NewTool("empty_trash",
		mcp.WithDescription("Permanently delete every note in the trash. Requires confirm=true."),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to proceed"), mcp.Required()),
		withUserID(),
		mcp.WithDestructiveHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.EmptyTrash))
}

func (ns *NotesServer) EmptyTrash(ctx context.Context, req mcp.CallToolRequest, params EmptyTrashRequest) (*mcp.CallToolResult, error) {
	ok, err := ns.api.EmptyTrash(ctx, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("the backend refused to empty the trash")
	}

	return successResult(fields{
		"message": "Trash emptied",
	})
}
