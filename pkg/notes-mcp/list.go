package notes

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/timothepoznanski/poznote-mcp/pkg/dto"
	"github.com/timothepoznanski/poznote-mcp/pkg/poznote"
)

// Scope holds the workspace and caller identity overrides every tool accepts.
// Empty values fall back to the configured defaults.
type Scope struct {
	Workspace Text `json:"workspace,omitempty"`
	UserID    Text `json:"user_id,omitempty"`
}

func withWorkspace() mcp.ToolOption {
	return mcp.WithString("workspace",
		mcp.Description("Workspace name (optional, defaults to the configured workspace)"),
	)
}

func withUserID() mcp.ToolOption {
	return mcp.WithString("user_id",
		mcp.Description("Poznote user id to act as (optional, defaults to the configured user)"),
	)
}

type ListNotesRequest struct {
	Scope
	FolderID Int  `json:"folder_id,omitempty"`
	Tag      Text `json:"tag,omitempty"`
	Favorite Flag `json:"favorite,omitempty"`
}

func (r *ListNotesRequest) Validate() error {
	if r.FolderID.IsSet() {
		if _, err := r.FolderID.Value("folder_id"); err != nil {
			return err
		}
	}
	return nil
}

func (ns *NotesServer) NewListNotesTool() {
	tool := mcp.NewTool(
		"list_notes",
		mcp.WithDescription("List the notes of a workspace (titles, tags and folders, without content)"),
		withWorkspace(),
		mcp.WithNumber("folder_id", mcp.Description("Only list notes in this folder (optional)")),
		mcp.WithString("tag", mcp.Description("Only list notes carrying this tag (optional)")),
		mcp.WithBoolean("favorite", mcp.DefaultBool(false), mcp.Description("Only list favorite notes")),
		withUserID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.ListNotes))
}

// ListNotes lists the notes of a workspace
func (ns *NotesServer) ListNotes(ctx context.Context, req mcp.CallToolRequest, params ListNotesRequest) (*mcp.CallToolResult, error) {
	opts := poznote.ListNotesOptions{
		Workspace: params.Workspace.String(),
		Tag:       params.Tag.String(),
		Favorite:  bool(params.Favorite),
		UserID:    params.UserID.String(),
	}
	if params.FolderID.IsSet() {
		opts.FolderID, _ = params.FolderID.Value("folder_id")
	}

	notes, err := ns.api.ListNotes(ctx, opts)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.NoteSummary, 0, len(notes))
	for _, n := range notes {
		summaries = append(summaries, toSummary(n))
	}

	return successResult(fields{
		"count": len(summaries),
		"notes": summaries,
	})
}

func (ns *NotesServer) NewListFoldersTool() {
	tool := mcp.NewTool(
		"list_folders",
		mcp.WithDescription("List the folders of a workspace"),
		withWorkspace(),
		withUserID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.ListFolders))
}

// ListFolders gets the folders of a workspace
func (ns *NotesServer) ListFolders(ctx context.Context, req mcp.CallToolRequest, params Scope) (*mcp.CallToolResult, error) {
	folders, err := ns.api.ListFolders(ctx, params.Workspace.String(), params.UserID.String())
	if err != nil {
		return nil, err
	}

	out := make([]dto.Folder, 0, len(folders))
	for _, f := range folders {
		out = append(out, toFolder(f))
	}

	return successResult(fields{
		"count":   len(out),
		"folders": out,
	})
}

type UserRequest struct {
	UserID Text `json:"user_id,omitempty"`
}

func (ns *NotesServer) NewListWorkspacesTool() {
	tool := mcp.NewTool(
		"list_workspaces",
		mcp.WithDescription("List the available workspaces"),
		withUserID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.ListWorkspaces))
}

func (ns *NotesServer) ListWorkspaces(ctx context.Context, req mcp.CallToolRequest, params UserRequest) (*mcp.CallToolResult, error) {
	workspaces, err := ns.api.ListWorkspaces(ctx, params.UserID.String())
	if err != nil {
		return nil, err
	}

	return successResult(fields{
		"count":      len(workspaces),
		"workspaces": workspaces,
	})
}

func (ns *NotesServer) NewListTagsTool() {
	tool := mcp.NewTool(
		"list_tags",
		mcp.WithDescription("List every distinct tag in use"),
		mcp.WithString("workspace", mcp.Description("Only list tags of this workspace (optional)")),
		withUserID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.ListTags))
}

func (ns *NotesServer) ListTags(ctx context.Context, req mcp.CallToolRequest, params Scope) (*mcp.CallToolResult, error) {
	tags, err := ns.api.ListTags(ctx, params.Workspace.String(), params.UserID.String())
	if err != nil {
		return nil, err
	}

	return successResult(fields{
		"count": len(tags),
		"tags":  tags,
	})
}

func (ns *NotesServer) NewListTrashTool() {
	tool := mcp.NewTool(
		"list_trash",
		mcp.WithDescription("List the notes currently in the trash"),
		withUserID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.ListTrash))
}

func (ns *NotesServer) ListTrash(ctx context.Context, req mcp.CallToolRequest, params UserRequest) (*mcp.CallToolResult, error) {
	notes, err := ns.api.ListTrash(ctx, params.UserID.String())
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.NoteSummary, 0, len(notes))
	for _, n := range notes {
		summaries = append(summaries, toSummary(n))
	}

	return successResult(fields{
		"count": len(summaries),
		"notes": summaries,
	})
}
