package poznote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ListFolders returns the folders of a workspace.
func (c *Client) ListFolders(ctx context.Context, workspace, userID string) ([]Folder, error) {
	var resp struct {
		envelope
		Folders []Folder `json:"folders"`
	}

	_, err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/folders",
		query:  c.workspaceQuery(workspace),
		userID: c.resolveUserID(ctx, userID),
	}, &resp)
	if err != nil {
		return nil, err
	}

	if !bool(resp.Success) || resp.Folders == nil {
		return []Folder{}, nil
	}

	return resp.Folders, nil
}

// CreateFolder creates a folder, optionally under a parent folder.
func (c *Client) CreateFolder(ctx context.Context, in CreateFolderInput) (*Folder, error) {
	payload := map[string]any{
		"folder_name": in.Name,
	}
	if ws := c.resolveWorkspace(in.Workspace); ws != "" {
		payload["workspace"] = ws
	}
	if in.ParentFolderID != nil {
		payload["parent_folder_id"] = *in.ParentFolderID
	}

	var resp struct {
		envelope
		Folder *Folder `json:"folder"`
	}

	_, err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/folders",
		body:   payload,
		userID: c.resolveUserID(ctx, in.UserID),
	}, &resp)
	if err != nil || !bool(resp.Success) {
		return nil, err
	}

	return resp.Folder, nil
}

// ListWorkspaces returns every workspace visible to the caller.
func (c *Client) ListWorkspaces(ctx context.Context, userID string) ([]Workspace, error) {
	var resp struct {
		envelope
		Workspaces []Workspace `json:"workspaces"`
	}

	_, err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/workspaces",
		userID: c.resolveUserID(ctx, userID),
	}, &resp)
	if err != nil {
		return nil, err
	}

	if !bool(resp.Success) || resp.Workspaces == nil {
		return []Workspace{}, nil
	}

	return resp.Workspaces, nil
}

// ListTags returns the distinct tags, restricted to a workspace when one is
// given explicitly.
func (c *Client) ListTags(ctx context.Context, workspace, userID string) ([]string, error) {
	q := url.Values{}
	if workspace != "" {
		q.Set("workspace", workspace)
	}

	var resp struct {
		envelope
		Tags []string `json:"tags"`
	}

	_, err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/tags",
		query:  q,
		userID: c.resolveUserID(ctx, userID),
	}, &resp)
	if err != nil {
		return nil, err
	}

	if !bool(resp.Success) || resp.Tags == nil {
		return []string{}, nil
	}

	return resp.Tags, nil
}

// ListTrash returns the notes in the trash.
func (c *Client) ListTrash(ctx context.Context, userID string) ([]Note, error) {
	var resp struct {
		envelope
		Notes []Note `json:"notes"`
	}

	_, err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/trash",
		userID: c.resolveUserID(ctx, userID),
	}, &resp)
	if err != nil {
		return nil, err
	}

	if !bool(resp.Success) || resp.Notes == nil {
		return []Note{}, nil
	}

	return resp.Notes, nil
}

// EmptyTrash permanently deletes every note in the trash.
func (c *Client) EmptyTrash(ctx context.Context, userID string) (bool, error) {
	return c.action(ctx, request{
		method: http.MethodDelete,
		path:   "/trash",
		userID: c.resolveUserID(ctx, userID),
	})
}

// GetNoteShare returns the public sharing state of a note.
func (c *Client) GetNoteShare(ctx context.Context, id int, userID string) (*ShareStatus, error) {
	return c.share(ctx, request{
		method:     http.MethodGet,
		path:       fmt.Sprintf("/notes/%d/share", id),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	})
}

// CreateNoteShare enables public sharing of a note and returns the link.
func (c *Client) CreateNoteShare(ctx context.Context, id int, userID string) (*ShareStatus, error) {
	return c.share(ctx, request{
		method:     http.MethodPost,
		path:       fmt.Sprintf("/notes/%d/share", id),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	})
}

// DeleteNoteShare disables public sharing of a note.
func (c *Client) DeleteNoteShare(ctx context.Context, id int, userID string) (bool, error) {
	return c.action(ctx, request{
		method:     http.MethodDelete,
		path:       fmt.Sprintf("/notes/%d/share", id),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	})
}

// GetFolderShare returns the public sharing state of a folder.
func (c *Client) GetFolderShare(ctx context.Context, folderID int, userID string) (*ShareStatus, error) {
	return c.share(ctx, request{
		method:     http.MethodGet,
		path:       fmt.Sprintf("/folders/%d/share", folderID),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	})
}

// share decodes a share reply. The backend either nests the status under
// "share" or spreads it over the envelope.
func (c *Client) share(ctx context.Context, req request) (*ShareStatus, error) {
	var raw json.RawMessage

	found, err := c.call(ctx, req, &raw)
	if err != nil || !found {
		return nil, err
	}

	var resp struct {
		envelope
		Share *ShareStatus `json:"share"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &BackendError{Method: req.method, Path: req.path, StatusCode: http.StatusOK, Body: string(raw), Err: err}
	}

	if !bool(resp.Success) {
		return nil, nil
	}

	if resp.Share != nil {
		return resp.Share, nil
	}

	var flat ShareStatus
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, &BackendError{Method: req.method, Path: req.path, StatusCode: http.StatusOK, Body: string(raw), Err: err}
	}

	return &flat, nil
}
