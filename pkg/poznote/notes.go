package poznote

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// ListNotes returns the notes of a workspace.
func (c *Client) ListNotes(ctx context.Context, opts ListNotesOptions) ([]Note, error) {
	q := c.workspaceQuery(opts.Workspace)
	if opts.FolderID > 0 {
		q.Set("folder_id", strconv.Itoa(opts.FolderID))
	}
	if opts.Tag != "" {
		q.Set("tag", opts.Tag)
	}
	if opts.Favorite {
		q.Set("favorite", "1")
	}

	var resp struct {
		envelope
		Notes []Note `json:"notes"`
	}

	_, err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/notes",
		query:  q,
		userID: c.resolveUserID(ctx, opts.UserID),
	}, &resp)
	if err != nil {
		return nil, err
	}

	if !bool(resp.Success) {
		return []Note{}, nil
	}

	return resp.Notes, nil
}

// GetNote returns a note with its content, or nil when it does not exist.
func (c *Client) GetNote(ctx context.Context, id int, workspace, userID string) (*Note, error) {
	var resp struct {
		envelope
		Note *Note `json:"note"`
	}

	found, err := c.call(ctx, request{
		method:     http.MethodGet,
		path:       fmt.Sprintf("/notes/%d", id),
		query:      c.workspaceQuery(workspace),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	}, &resp)
	if err != nil || !found || !bool(resp.Success) {
		return nil, err
	}

	return resp.Note, nil
}

// SearchNotes runs a text search. Results carry a backend excerpt when the
// backend provides one.
func (c *Client) SearchNotes(ctx context.Context, query string, limit int, workspace, userID string) ([]Note, error) {
	q := c.workspaceQuery(workspace)
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	var resp struct {
		envelope
		Results []Note `json:"results"`
	}

	_, err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/notes/search",
		query:  q,
		userID: c.resolveUserID(ctx, userID),
	}, &resp)
	if err != nil {
		return nil, err
	}

	if !bool(resp.Success) {
		return []Note{}, nil
	}

	return resp.Results, nil
}

// CreateNote creates a note and returns it. Only the id is guaranteed to be
// set when the backend answers with a bare id.
func (c *Client) CreateNote(ctx context.Context, in CreateNoteInput) (*Note, error) {
	payload := map[string]any{
		"heading": in.Title,
		"content": in.Content,
	}
	if ws := c.resolveWorkspace(in.Workspace); ws != "" {
		payload["workspace"] = ws
	}
	if in.Tags != "" {
		payload["tags"] = in.Tags
	}
	if in.FolderName != "" {
		payload["folder_name"] = in.FolderName
	}
	if in.Type != "" {
		payload["type"] = in.Type
	}

	var resp struct {
		envelope
		ID   FlexInt `json:"id"`
		Note *Note   `json:"note"`
	}

	_, err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/notes",
		body:   payload,
		userID: c.resolveUserID(ctx, in.UserID),
	}, &resp)
	if err != nil || !bool(resp.Success) {
		return nil, err
	}

	if resp.Note == nil {
		return &Note{ID: resp.ID, Heading: in.Title}, nil
	}

	return resp.Note, nil
}

// UpdateNote changes the supplied fields of a note. It returns nil without
// contacting the backend when no field is supplied, and nil when the note
// does not exist.
func (c *Client) UpdateNote(ctx context.Context, id int, in UpdateNoteInput) (*Note, error) {
	if in.Empty() {
		return nil, nil
	}

	payload := map[string]any{}
	if in.Content != nil {
		payload["content"] = *in.Content
	}
	if in.Title != nil {
		payload["heading"] = *in.Title
	}
	if in.Tags != nil {
		payload["tags"] = *in.Tags
	}

	var resp struct {
		envelope
		Note *Note `json:"note"`
	}

	found, err := c.call(ctx, request{
		method:     http.MethodPatch,
		path:       fmt.Sprintf("/notes/%d", id),
		query:      c.workspaceQuery(in.Workspace),
		body:       payload,
		userID:     c.resolveUserID(ctx, in.UserID),
		notFoundOK: true,
	}, &resp)
	if err != nil || !found || !bool(resp.Success) {
		return nil, err
	}

	if resp.Note == nil {
		return &Note{ID: FlexInt(id)}, nil
	}

	return resp.Note, nil
}

// DeleteNote moves a note to the trash. It reports false when the note does
// not exist or the backend declined.
func (c *Client) DeleteNote(ctx context.Context, id int, workspace, userID string) (bool, error) {
	return c.action(ctx, request{
		method:     http.MethodDelete,
		path:       fmt.Sprintf("/notes/%d", id),
		query:      c.workspaceQuery(workspace),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	})
}

// RestoreNote brings a note back from the trash.
func (c *Client) RestoreNote(ctx context.Context, id int, userID string) (bool, error) {
	return c.action(ctx, request{
		method:     http.MethodPost,
		path:       fmt.Sprintf("/notes/%d/restore", id),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	})
}

// DuplicateNote copies a note and returns the copy.
func (c *Client) DuplicateNote(ctx context.Context, id int, userID string) (*Note, error) {
	return c.noteAction(ctx, request{
		method:     http.MethodPost,
		path:       fmt.Sprintf("/notes/%d/duplicate", id),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	})
}

// ConvertNote switches a note between Markdown and HTML.
func (c *Client) ConvertNote(ctx context.Context, id int, userID string) (*Note, error) {
	return c.noteAction(ctx, request{
		method:     http.MethodPost,
		path:       fmt.Sprintf("/notes/%d/convert", id),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	})
}

// ToggleFavorite flips the favorite flag. It returns the new state, or nil
// when the note does not exist.
func (c *Client) ToggleFavorite(ctx context.Context, id int, userID string) (*bool, error) {
	var resp struct {
		envelope
		IsFavorite Truthy `json:"is_favorite"`
	}

	found, err := c.call(ctx, request{
		method:     http.MethodPost,
		path:       fmt.Sprintf("/notes/%d/favorite", id),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	}, &resp)
	if err != nil || !found || !bool(resp.Success) {
		return nil, err
	}

	favorite := bool(resp.IsFavorite)
	return &favorite, nil
}

// MoveNoteToFolder files a note under a folder.
func (c *Client) MoveNoteToFolder(ctx context.Context, id, folderID int, userID string) (bool, error) {
	return c.action(ctx, request{
		method:     http.MethodPost,
		path:       fmt.Sprintf("/notes/%d/folder", id),
		body:       map[string]any{"folder_id": folderID},
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	})
}

// RemoveNoteFromFolder moves a note back to the workspace root.
func (c *Client) RemoveNoteFromFolder(ctx context.Context, id int, userID string) (bool, error) {
	return c.action(ctx, request{
		method:     http.MethodPost,
		path:       fmt.Sprintf("/notes/%d/remove-folder", id),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	})
}

// ListAttachments returns the attachments of a note, or nil when the note
// does not exist.
func (c *Client) ListAttachments(ctx context.Context, id int, userID string) ([]Attachment, error) {
	var resp struct {
		envelope
		Attachments []Attachment `json:"attachments"`
	}

	found, err := c.call(ctx, request{
		method:     http.MethodGet,
		path:       fmt.Sprintf("/notes/%d/attachments", id),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	}, &resp)
	if err != nil || !found {
		return nil, err
	}

	if !bool(resp.Success) || resp.Attachments == nil {
		return []Attachment{}, nil
	}

	return resp.Attachments, nil
}

// action performs a request whose only result is the success flag.
func (c *Client) action(ctx context.Context, req request) (bool, error) {
	var resp envelope

	found, err := c.call(ctx, req, &resp)
	if err != nil || !found {
		return false, err
	}

	return bool(resp.Success), nil
}

// noteAction performs a request that answers with a note.
func (c *Client) noteAction(ctx context.Context, req request) (*Note, error) {
	var resp struct {
		envelope
		Note *Note `json:"note"`
	}

	found, err := c.call(ctx, req, &resp)
	if err != nil || !found || !bool(resp.Success) {
		return nil, err
	}

	return resp.Note, nil
}
