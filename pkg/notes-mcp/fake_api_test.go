package notes

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"github.com/timothepoznanski/poznote-mcp/pkg/poznote"
)

// fakeAPI is a NotesAPI whose behaviour is set per test. Unset methods
// return empty values. Every call is counted by method name.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	listNotes    func(opts poznote.ListNotesOptions) ([]poznote.Note, error)
	getNote      func(id int, workspace, userID string) (*poznote.Note, error)
	searchNotes  func(query string, limit int, workspace, userID string) ([]poznote.Note, error)
	createNote   func(in poznote.CreateNoteInput) (*poznote.Note, error)
	updateNote   func(id int, in poznote.UpdateNoteInput) (*poznote.Note, error)
	deleteNote   func(id int) (bool, error)
	noteAction   func(method string, id int) (bool, error)
	noteCopy     func(method string, id int) (*poznote.Note, error)
	favorite     func(id int) (*bool, error)
	moveNote     func(id, folderID int) (bool, error)
	attachments  func(id int) ([]poznote.Attachment, error)
	listFolders  func(workspace string) ([]poznote.Folder, error)
	createFolder func(in poznote.CreateFolderInput) (*poznote.Folder, error)
	workspaces   func() ([]poznote.Workspace, error)
	tags         func(workspace string) ([]string, error)
	trash        func() ([]poznote.Note, error)
	emptyTrash   func() (bool, error)
	share        func(method string, id int) (*poznote.ShareStatus, error)
	unshare      func(id int) (bool, error)
	payload      func(method string) (poznote.Payload, error)
	backups      func() ([]poznote.Backup, error)
	setting      func(key string) (poznote.Payload, error)
}

func (f *fakeAPI) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[method]++
}

// total returns the number of backend calls made through the fake.
func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeAPI) ListNotes(ctx context.Context, opts poznote.ListNotesOptions) ([]poznote.Note, error) {
	f.record("ListNotes")
	if f.listNotes == nil {
		return []poznote.Note{}, nil
	}
	return f.listNotes(opts)
}

func (f *fakeAPI) GetNote(ctx context.Context, id int, workspace, userID string) (*poznote.Note, error) {
	f.record("GetNote")
	if f.getNote == nil {
		return nil, nil
	}
	return f.getNote(id, workspace, userID)
}

func (f *fakeAPI) SearchNotes(ctx context.Context, query string, limit int, workspace, userID string) ([]poznote.Note, error) {
	f.record("SearchNotes")
	if f.searchNotes == nil {
		return []poznote.Note{}, nil
	}
	return f.searchNotes(query, limit, workspace, userID)
}

func (f *fakeAPI) CreateNote(ctx context.Context, in poznote.CreateNoteInput) (*poznote.Note, error) {
	f.record("CreateNote")
	if f.createNote == nil {
		return &poznote.Note{ID: 1, Heading: in.Title}, nil
	}
	return f.createNote(in)
}

func (f *fakeAPI) UpdateNote(ctx context.Context, id int, in poznote.UpdateNoteInput) (*poznote.Note, error) {
	f.record("UpdateNote")
	if f.updateNote == nil {
		return nil, nil
	}
	return f.updateNote(id, in)
}

func (f *fakeAPI) DeleteNote(ctx context.Context, id int, workspace, userID string) (bool, error) {
	f.record("DeleteNote")
	if f.deleteNote == nil {
		return false, nil
	}
	return f.deleteNote(id)
}

func (f *fakeAPI) action(method string, id int) (bool, error) {
	f.record(method)
	if f.noteAction == nil {
		return false, nil
	}
	return f.noteAction(method, id)
}

func (f *fakeAPI) RestoreNote(ctx context.Context, id int, userID string) (bool, error) {
	return f.action("RestoreNote", id)
}

func (f *fakeAPI) RemoveNoteFromFolder(ctx context.Context, id int, userID string) (bool, error) {
	return f.action("RemoveNoteFromFolder", id)
}

func (f *fakeAPI) copyNote(method string, id int) (*poznote.Note, error) {
	f.record(method)
	if f.noteCopy == nil {
		return nil, nil
	}
	return f.noteCopy(method, id)
}

func (f *fakeAPI) DuplicateNote(ctx context.Context, id int, userID string) (*poznote.Note, error) {
	return f.copyNote("DuplicateNote", id)
}

func (f *fakeAPI) ConvertNote(ctx context.Context, id int, userID string) (*poznote.Note, error) {
	return f.copyNote("ConvertNote", id)
}

func (f *fakeAPI) ToggleFavorite(ctx context.Context, id int, userID string) (*bool, error) {
	f.record("ToggleFavorite")
	if f.favorite == nil {
		return nil, nil
	}
	return f.favorite(id)
}

func (f *fakeAPI) MoveNoteToFolder(ctx context.Context, id, folderID int, userID string) (bool, error) {
	f.record("MoveNoteToFolder")
	if f.moveNote == nil {
		return false, nil
	}
	return f.moveNote(id, folderID)
}

func (f *fakeAPI) ListAttachments(ctx context.Context, id int, userID string) ([]poznote.Attachment, error) {
	f.record("ListAttachments")
	if f.attachments == nil {
		return nil, nil
	}
	return f.attachments(id)
}

func (f *fakeAPI) ListFolders(ctx context.Context, workspace, userID string) ([]poznote.Folder, error) {
	f.record("ListFolders")
	if f.listFolders == nil {
		return []poznote.Folder{}, nil
	}
	return f.listFolders(workspace)
}

func (f *fakeAPI) CreateFolder(ctx context.Context, in poznote.CreateFolderInput) (*poznote.Folder, error) {
	f.record("CreateFolder")
	if f.createFolder == nil {
		return &poznote.Folder{ID: 1, Name: in.Name}, nil
	}
	return f.createFolder(in)
}

func (f *fakeAPI) ListWorkspaces(ctx context.Context, userID string) ([]poznote.Workspace, error) {
	f.record("ListWorkspaces")
	if f.workspaces == nil {
		return []poznote.Workspace{}, nil
	}
	return f.workspaces()
}

func (f *fakeAPI) ListTags(ctx context.Context, workspace, userID string) ([]string, error) {
	f.record("ListTags")
	if f.tags == nil {
		return []string{}, nil
	}
	return f.tags(workspace)
}

func (f *fakeAPI) ListTrash(ctx context.Context, userID string) ([]poznote.Note, error) {
	f.record("ListTrash")
	if f.trash == nil {
		return []poznote.Note{}, nil
	}
	return f.trash()
}

func (f *fakeAPI) EmptyTrash(ctx context.Context, userID string) (bool, error) {
	f.record("EmptyTrash")
	if f.emptyTrash == nil {
		return true, nil
	}
	return f.emptyTrash()
}

func (f *fakeAPI) shareStatus(method string, id int) (*poznote.ShareStatus, error) {
	f.record(method)
	if f.share == nil {
		return nil, nil
	}
	return f.share(method, id)
}

func (f *fakeAPI) GetNoteShare(ctx context.Context, id int, userID string) (*poznote.ShareStatus, error) {
	return f.shareStatus("GetNoteShare", id)
}

func (f *fakeAPI) CreateNoteShare(ctx context.Context, id int, userID string) (*poznote.ShareStatus, error) {
	return f.shareStatus("CreateNoteShare", id)
}

func (f *fakeAPI) GetFolderShare(ctx context.Context, folderID int, userID string) (*poznote.ShareStatus, error) {
	return f.shareStatus("GetFolderShare", folderID)
}

func (f *fakeAPI) DeleteNoteShare(ctx context.Context, id int, userID string) (bool, error) {
	f.record("DeleteNoteShare")
	if f.unshare == nil {
		return false, nil
	}
	return f.unshare(id)
}

func (f *fakeAPI) passThrough(method string) (poznote.Payload, error) {
	f.record(method)
	if f.payload == nil {
		return poznote.Payload{"success": true}, nil
	}
	return f.payload(method)
}

func (f *fakeAPI) GitHubStatus(ctx context.Context, userID string) (poznote.Payload, error) {
	return f.passThrough("GitHubStatus")
}

func (f *fakeAPI) GitHubPush(ctx context.Context, userID string) (poznote.Payload, error) {
	return f.passThrough("GitHubPush")
}

func (f *fakeAPI) GitHubPull(ctx context.Context, userID string) (poznote.Payload, error) {
	return f.passThrough("GitHubPull")
}

func (f *fakeAPI) SystemVersion(ctx context.Context) (poznote.Payload, error) {
	return f.passThrough("SystemVersion")
}

func (f *fakeAPI) CreateBackup(ctx context.Context) (poznote.Payload, error) {
	return f.passThrough("CreateBackup")
}

func (f *fakeAPI) ListBackups(ctx context.Context) ([]poznote.Backup, error) {
	f.record("ListBackups")
	if f.backups == nil {
		return []poznote.Backup{}, nil
	}
	return f.backups()
}

func (f *fakeAPI) GetSetting(ctx context.Context, key, userID string) (poznote.Payload, error) {
	f.record("GetSetting")
	if f.setting == nil {
		return nil, nil
	}
	return f.setting(key)
}

var testConfig = poznote.Config{
	BaseURL:          "http://poznote.test/api/v1",
	Username:         "admin",
	Password:         "secret",
	DefaultWorkspace: "Poznote",
	DefaultUserID:    "1",
}

func newTestServer(t *testing.T, api *fakeAPI) *NotesServer {
	t.Helper()

	ns := NewNotesServer(api, testConfig)
	require.NotNil(t, ns)
	require.NotNil(t, ns.McpServer)

	return ns
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// call runs handler the way the server would and returns the decoded
// envelope together with the error flag.
func call[T any](t *testing.T, ns *NotesServer, fn TypedToolHandlerFunc[T], args map[string]any) (map[string]any, bool) {
	t.Helper()

	result, err := typedHandler(ns, fn)(context.Background(), toolRequest("test", args))
	require.NoError(t, err, "tool handlers report failures in the result")
	require.NotNil(t, result)

	return decodeResult(t, result), result.IsError
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &body), "result should be JSON: %s", text.Text)

	return body
}

func ptr[T any](v T) *T {
	return &v
}
