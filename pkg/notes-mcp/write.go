package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/timothepoznanski/poznote-mcp/pkg/dto"
	"github.com/timothepoznanski/poznote-mcp/pkg/poznote"
)

// NoteTypes are the note formats the backend stores.
var NoteTypes = []string{"note", "markdown", "excalidraw"}

// normalizeNoteType maps a requested note type onto one the backend accepts.
// "html" is an alias of "note" and an empty type is left to the backend.
func normalizeNoteType(noteType string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(noteType))
	switch t {
	case "":
		return "", nil
	case "html":
		return "note", nil
	}

	for _, allowed := range NoteTypes {
		if t == allowed {
			return t, nil
		}
	}

	return "", invalidArgument("note_type must be one of %s (got %q)", strings.Join(NoteTypes, ", "), noteType)
}

type CreateNoteRequest struct {
	Scope
	Title    Text   `json:"title"`
	Content  string `json:"content"`
	Tags     Tags   `json:"tags,omitempty"`
	Folder   Text   `json:"folder,omitempty"`
	NoteType Text   `json:"note_type,omitempty"`
}

func (r *CreateNoteRequest) Validate() error {
	if _, err := requireString("title", r.Title.String()); err != nil {
		return err
	}
	if _, err := requireString("content", r.Content); err != nil {
		return err
	}
	_, err := normalizeNoteType(r.NoteType.String())
	return err
}

func (ns *NotesServer) NewCreateNoteTool() {
	tool := mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note in Poznote"),
		mcp.WithString("title", mcp.Description("Title of the new note"), mcp.Required()),
		mcp.WithString("content", mcp.Description("Content of the note (HTML or Markdown)"), mcp.Required()),
		mcp.WithString("tags", mcp.Description("Comma-separated tags (e.g., 'ai, docs, important')")),
		mcp.WithString("folder", mcp.Description("Folder name to place the note in")),
		mcp.WithString("note_type",
			mcp.Description("Note format: note (HTML), markdown or excalidraw. 'html' is accepted as an alias of 'note'."),
			mcp.Enum("note", "markdown", "excalidraw", "html"),
		),
		withWorkspace(),
		withUserID(),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.CreateNote))
}

// CreateNote creates a new note
func (ns *NotesServer) CreateNote(ctx context.Context, req mcp.CallToolRequest, params CreateNoteRequest) (*mcp.CallToolResult, error) {
	title, err := requireString("title", params.Title.String())
	if err != nil {
		return nil, err
	}

	noteType, err := normalizeNoteType(params.NoteType.String())
	if err != nil {
		return nil, err
	}

	note, err := ns.api.CreateNote(ctx, poznote.CreateNoteInput{
		Title:      title,
		Content:    params.Content,
		Tags:       string(params.Tags),
		FolderName: params.Folder.String(),
		Type:       noteType,
		Workspace:  params.Workspace.String(),
		UserID:     params.UserID.String(),
	})
	if err != nil {
		return nil, err
	}

	if note == nil {
		return nil, fmt.Errorf("failed to create note %q", title)
	}

	return successResult(fields{
		"message": fmt.Sprintf("Note '%s' created successfully", title),
		"note":    toNote(*note),
	})
}

type UpdateNoteRequest struct {
	Scope
	ID      Int     `json:"id"`
	Title   *Text   `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Tags    *Tags   `json:"tags,omitempty"`
}

func (r *UpdateNoteRequest) Validate() error {
	_, err := r.ID.Value("id")
	return err
}

func (ns *NotesServer) NewUpdateNoteTool() {
	tool := mcp.NewTool("update_note",
		mcp.WithDescription("Update an existing note. Only provided fields will be updated."),
		mcp.WithNumber("id", mcp.Description("ID of the note to update"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title for the note")),
		mcp.WithString("content", mcp.Description("New content for the note")),
		mcp.WithString("tags", mcp.Description("New tags (comma-separated), replacing the current ones")),
		withWorkspace(),
		withUserID(),
		mcp.WithIdempotentHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.UpdateNote))
}

// UpdateNote sends the supplied fields of a note to the backend. A call
// without any field is a successful no-op.
func (ns *NotesServer) UpdateNote(ctx context.Context, req mcp.CallToolRequest, params UpdateNoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}

	in := poznote.UpdateNoteInput{
		Workspace: params.Workspace.String(),
		UserID:    params.UserID.String(),
	}
	if params.Title != nil {
		title := params.Title.String()
		in.Title = &title
	}
	if params.Content != nil {
		in.Content = params.Content
	}
	if params.Tags != nil {
		tags := string(*params.Tags)
		in.Tags = &tags
	}

	if in.Empty() {
		return successResult(fields{
			"updated": false,
			"message": "Nothing to update: provide title, content or tags",
			"note":    nil,
		})
	}

	note, err := ns.api.UpdateNote(ctx, id, in)
	if err != nil {
		return nil, err
	}

	if note == nil {
		return nil, notFound("Note %d not found or update failed", id)
	}

	return successResult(fields{
		"updated": true,
		"message": fmt.Sprintf("Note %d updated successfully", id),
		"note":    toNote(*note),
	})
}

type DeleteNoteRequest struct {
	Scope
	ID Int `json:"id"`
}

func (r *DeleteNoteRequest) Validate() error {
	_, err := r.ID.Value("id")
	return err
}

func (ns *NotesServer) NewDeleteNoteTool() {
	tool := mcp.NewTool("delete_note",
		mcp.WithDescription("Move a note to the trash"),
		mcp.WithNumber("id", mcp.Description("ID of the note to delete"), mcp.Required()),
		withWorkspace(),
		withUserID(),
		mcp.WithDestructiveHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.DeleteNote))
}

func (ns *NotesServer) DeleteNote(ctx context.Context, req mcp.CallToolRequest, params DeleteNoteRequest) (*mcp.CallToolResult, error) {
	id, err := params.ID.Value("id")
	if err != nil {
		return nil, err
	}

	ok, err := ns.api.DeleteNote(ctx, id, params.Workspace.String(), params.UserID.String())
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, notFound("Note %d not found", id)
	}

	return successResult(fields{
		"id":      id,
		"message": fmt.Sprintf("Note %d moved to trash", id),
	})
}

type CreateFolderRequest struct {
	Scope
	FolderName     Text `json:"folder_name"`
	ParentFolderID Int  `json:"parent_folder_id,omitempty"`
}

func (r *CreateFolderRequest) Validate() error {
	if _, err := requireString("folder_name", r.FolderName.String()); err != nil {
		return err
	}

	if r.ParentFolderID.IsSet() {
		if _, err := r.ParentFolderID.Value("parent_folder_id"); err != nil {
			return err
		}
	}

	return nil
}

func (ns *NotesServer) NewCreateFolderTool() {
	tool := mcp.NewTool("create_folder",
		mcp.WithDescription("Create a new folder, optionally inside another folder"),
		mcp.WithString("folder_name", mcp.Description("Name of the folder to create"), mcp.Required()),
		mcp.WithNumber("parent_folder_id", mcp.Description("ID of the parent folder (optional, defaults to the workspace root)")),
		withWorkspace(),
		withUserID(),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.CreateFolder))
}

// CreateFolder creates a new folder
func (ns *NotesServer) CreateFolder(ctx context.Context, req mcp.CallToolRequest, params CreateFolderRequest) (*mcp.CallToolResult, error) {
	name, err := requireString("folder_name", params.FolderName.String())
	if err != nil {
		return nil, err
	}

	in := poznote.CreateFolderInput{
		Name:      name,
		Workspace: params.Workspace.String(),
		UserID:    params.UserID.String(),
	}
	if params.ParentFolderID.IsSet() {
		parent, err := params.ParentFolderID.Value("parent_folder_id")
		if err != nil {
			return nil, err
		}
		in.ParentFolderID = &parent
	}

	folder, err := ns.api.CreateFolder(ctx, in)
	if err != nil {
		return nil, err
	}

	if folder == nil {
		return nil, fmt.Errorf("failed to create folder %q", name)
	}

	return successResult(fields{
		"message": fmt.Sprintf("Folder '%s' created successfully", name),
		"folder":  dto.Folder{ID: int(folder.ID), Name: folder.Name, ParentID: toIntPtr(folder.ParentID), Path: folder.Path},
	})
}
