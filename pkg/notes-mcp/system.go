package notes

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/timothepoznanski/poznote-mcp/pkg/poznote"
)

func (ns *NotesServer) NewGitHubSyncStatusTool() {
	tool := mcp.NewTool("github_sync_status",
		mcp.WithDescription("Show whether GitHub synchronisation is configured and when it last ran"),
		withUserID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.GitHubSyncStatus))
}

func (ns *NotesServer) GitHubSyncStatus(ctx context.Context, req mcp.CallToolRequest, params UserRequest) (*mcp.CallToolResult, error) {
	status, err := ns.api.GitHubStatus(ctx, params.UserID.String())
	if err != nil {
		return nil, err
	}

	return payloadResult("status", status)
}

func (ns *NotesServer) NewGitHubSyncPushTool() {
	tool := mcp.NewTool("github_sync_push",
		mcp.WithDescription("Push the notes to the configured GitHub repository"),
		withUserID(),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.GitHubSyncPush))
}

func (ns *NotesServer) GitHubSyncPush(ctx context.Context, req mcp.CallToolRequest, params UserRequest) (*mcp.CallToolResult, error) {
	out, err := ns.api.GitHubPush(ctx, params.UserID.String())
	if err != nil {
		return nil, err
	}

	return payloadResult("sync", out)
}

func (ns *NotesServer) NewGitHubSyncPullTool() {
	tool := mcp.NewTool("github_sync_pull",
		mcp.WithDescription("Pull the notes from the configured GitHub repository, overwriting local changes"),
		withUserID(),
		mcp.WithDestructiveHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.GitHubSyncPull))
}

func (ns *NotesServer) GitHubSyncPull(ctx context.Context, req mcp.CallToolRequest, params UserRequest) (*mcp.CallToolResult, error) {
	out, err := ns.api.GitHubPull(ctx, params.UserID.String())
	if err != nil {
		return nil, err
	}

	return payloadResult("sync", out)
}

type NoParams struct{}

func (ns *NotesServer) NewSystemVersionTool() {
	tool := mcp.NewTool("get_system_version",
		mcp.WithDescription("Get the version of the Poznote instance"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.SystemVersion))
}

func (ns *NotesServer) SystemVersion(ctx context.Context, req mcp.CallToolRequest, params NoParams) (*mcp.CallToolResult, error) {
	version, err := ns.api.SystemVersion(ctx)
	if err != nil {
		return nil, err
	}

	return payloadResult("version", version)
}

func (ns *NotesServer) NewListBackupsTool() {
	tool := mcp.NewTool("list_backups",
		mcp.WithDescription("List the backup archives available on the instance"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.ListBackups))
}

func (ns *NotesServer) ListBackups(ctx context.Context, req mcp.CallToolRequest, params NoParams) (*mcp.CallToolResult, error) {
	backups, err := ns.api.ListBackups(ctx)
	if err != nil {
		return nil, err
	}

	return successResult(fields{
		"count":   len(backups),
		"backups": backups,
	})
}

func (ns *NotesServer) NewCreateBackupTool() {
	tool := mcp.NewTool("create_backup",
		mcp.WithDescription("Create a full backup archive of the instance"),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.CreateBackup))
}

func (ns *NotesServer) CreateBackup(ctx context.Context, req mcp.CallToolRequest, params NoParams) (*mcp.CallToolResult, error) {
	backup, err := ns.api.CreateBackup(ctx)
	if err != nil {
		return nil, err
	}

	return payloadResult("backup", backup)
}

type SettingRequest struct {
	UserID Text `json:"user_id,omitempty"`
	Key    Text `json:"key"`
}

func (r *SettingRequest) Validate() error {
	_, err := requireString("key", r.Key.String())
	return err
}

func (ns *NotesServer) NewGetSettingTool() {
	tool := mcp.NewTool("get_setting",
		mcp.WithDescription("Read one application setting"),
		mcp.WithString("key", mcp.Description("Setting key, for example note_font_size"), mcp.Required()),
		withUserID(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	ns.McpServer.AddTool(tool, typedHandler(ns, ns.GetSetting))
}

func (ns *NotesServer) GetSetting(ctx context.Context, req mcp.CallToolRequest, params SettingRequest) (*mcp.CallToolResult, error) {
	key := params.Key.String()

	setting, err := ns.api.GetSetting(ctx, key, params.UserID.String())
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, notFound("Setting %q not found", key)
	}

	return payloadResult("setting", setting)
}

// payloadResult wraps a pass-through backend body under key, dropping the
// backend's own success flag so it does not shadow ours.
func payloadResult(key string, p poznote.Payload) (*mcp.CallToolResult, error) {
	body := make(map[string]any, len(p))
	for k, v := range p {
		if k == "success" {
			continue
		}
		body[k] = v
	}

	return successResult(fields{key: body})
}
