// Package notes contains the MCP tools and resources that expose a Poznote
// instance to an assistant.
package notes

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/timothepoznanski/poznote-mcp/pkg/poznote"
)

const (
	ServerName    = "poznote-mcp"
	ServerVersion = "v1.0.0"
)

// NotesAPI is the part of the Poznote REST client the tools depend on.
type NotesAPI interface {
	ListNotes(ctx context.Context, opts poznote.ListNotesOptions) ([]poznote.Note, error)
	GetNote(ctx context.Context, id int, workspace, userID string) (*poznote.Note, error)
	SearchNotes(ctx context.Context, query string, limit int, workspace, userID string) ([]poznote.Note, error)
	CreateNote(ctx context.Context, in poznote.CreateNoteInput) (*poznote.Note, error)
	UpdateNote(ctx context.Context, id int, in poznote.UpdateNoteInput) (*poznote.Note, error)
	DeleteNote(ctx context.Context, id int, workspace, userID string) (bool, error)
	RestoreNote(ctx context.Context, id int, userID string) (bool, error)
	DuplicateNote(ctx context.Context, id int, userID string) (*poznote.Note, error)
	ConvertNote(ctx context.Context, id int, userID string) (*poznote.Note, error)
	ToggleFavorite(ctx context.Context, id int, userID string) (*bool, error)
	MoveNoteToFolder(ctx context.Context, id, folderID int, userID string) (bool, error)
	RemoveNoteFromFolder(ctx context.Context, id int, userID string) (bool, error)
	ListAttachments(ctx context.Context, id int, userID string) ([]poznote.Attachment, error)

	ListFolders(ctx context.Context, workspace, userID string) ([]poznote.Folder, error)
	CreateFolder(ctx context.Context, in poznote.CreateFolderInput) (*poznote.Folder, error)
	ListWorkspaces(ctx context.Context, userID string) ([]poznote.Workspace, error)
	ListTags(ctx context.Context, workspace, userID string) ([]string, error)
	ListTrash(ctx context.Context, userID string) ([]poznote.Note, error)
	EmptyTrash(ctx context.Context, userID string) (bool, error)

	GetNoteShare(ctx context.Context, id int, userID string) (*poznote.ShareStatus, error)
	CreateNoteShare(ctx context.Context, id int, userID string) (*poznote.ShareStatus, error)
	DeleteNoteShare(ctx context.Context, id int, userID string) (bool, error)
	GetFolderShare(ctx context.Context, folderID int, userID string) (*poznote.ShareStatus, error)

	GitHubStatus(ctx context.Context, userID string) (poznote.Payload, error)
	GitHubPush(ctx context.Context, userID string) (poznote.Payload, error)
	GitHubPull(ctx context.Context, userID string) (poznote.Payload, error)
	SystemVersion(ctx context.Context) (poznote.Payload, error)
	ListBackups(ctx context.Context) ([]poznote.Backup, error)
	CreateBackup(ctx context.Context) (poznote.Payload, error)
	GetSetting(ctx context.Context, key, userID string) (poznote.Payload, error)
}

type NotesServer struct {
	McpServer *server.MCPServer
	api       NotesAPI
	cfg       poznote.Config
}

// NewNotesServer builds the MCP server and registers every tool and resource
// against api. cfg is checked on every call so a misconfigured process still
// starts and reports what is missing.
func NewNotesServer(api NotesAPI, cfg poznote.Config) *NotesServer {
	ns := &NotesServer{
		api: api,
		cfg: cfg,
	}

	ns.McpServer = server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithToolHandlerMiddleware(logToolCalls),
		server.WithRecovery(),
		server.WithInstructions("Read, search and edit the notes, folders and workspaces of a Poznote instance."),
	)

	ns.addTools()
	ns.addResources()

	return ns
}

// addTools adds all the tools to the server
func (ns *NotesServer) addTools() {
	// notes
	ns.NewListNotesTool()
	ns.NewGetNoteTool()
	ns.NewSearchNotesTool()
	ns.NewCreateNoteTool()
	ns.NewUpdateNoteTool()
	ns.NewDeleteNoteTool()
	ns.NewRestoreNoteTool()
	ns.NewDuplicateNoteTool()
	ns.NewToggleFavoriteTool()
	ns.NewMoveNoteToFolderTool()
	ns.NewRemoveNoteFromFolderTool()
	ns.NewConvertNoteTool()
	ns.NewListAttachmentsTool()

	// folders, workspaces, tags, trash
	ns.NewCreateFolderTool()
	ns.NewListFoldersTool()
	ns.NewListWorkspacesTool()
	ns.NewListTagsTool()
	ns.NewListTrashTool()
	ns.NewEmptyTrashTool()

	// sharing
	ns.NewGetNoteShareTool()
	ns.NewShareNoteTool()
	ns.NewUnshareNoteTool()
	ns.NewGetFolderShareTool()

	// instance
	ns.NewGitHubSyncStatusTool()
	ns.NewGitHubSyncPushTool()
	ns.NewGitHubSyncPullTool()
	ns.NewSystemVersionTool()
	ns.NewListBackupsTool()
	ns.NewCreateBackupTool()
	ns.NewGetSettingTool()
}

// logToolCalls tags each tool call with an id and logs its outcome.
func logToolCalls(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callID := uuid.NewString()
		start := time.Now()

		slog.Debug("tool call", "call_id", callID, "tool", req.Params.Name, "arguments", req.GetArguments())

		result, err := next(ctx, req)

		attrs := []any{"call_id", callID, "tool", req.Params.Name, "duration", time.Since(start)}
		switch {
		case err != nil:
			slog.Error("tool call failed", append(attrs, "error", err)...)
		case result != nil && result.IsError:
			slog.Warn("tool call returned an error result", attrs...)
		default:
			slog.Info("tool call", attrs...)
		}

		return result, err
	}
}
