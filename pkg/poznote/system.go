package poznote

import (
	"context"
	"net/http"
	"net/url"
)

// GitHubStatus returns the GitHub synchronisation status as reported.
func (c *Client) GitHubStatus(ctx context.Context, userID string) (Payload, error) {
	return c.payload(ctx, request{
		method: http.MethodGet,
		path:   "/github-sync/status",
		userID: c.resolveUserID(ctx, userID),
	})
}

// GitHubPush forces a push of the notes to GitHub.
func (c *Client) GitHubPush(ctx context.Context, userID string) (Payload, error) {
	return c.payload(ctx, request{
		method: http.MethodPost,
		path:   "/github-sync/push",
		userID: c.resolveUserID(ctx, userID),
	})
}

// GitHubPull forces a pull of the notes from GitHub.
func (c *Client) GitHubPull(ctx context.Context, userID string) (Payload, error) {
	return c.payload(ctx, request{
		method: http.MethodPost,
		path:   "/github-sync/pull",
		userID: c.resolveUserID(ctx, userID),
	})
}

// SystemVersion returns the backend version information.
func (c *Client) SystemVersion(ctx context.Context) (Payload, error) {
	return c.payload(ctx, request{
		method: http.MethodGet,
		path:   "/system/version",
	})
}

// ListBackups returns the available backup archives, most recent first.
func (c *Client) ListBackups(ctx context.Context) ([]Backup, error) {
	var resp struct {
		envelope
		Backups []Backup `json:"backups"`
	}

	_, err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/backups",
	}, &resp)
	if err != nil {
		return nil, err
	}

	if !bool(resp.Success) || resp.Backups == nil {
		return []Backup{}, nil
	}

	return resp.Backups, nil
}

// CreateBackup triggers a full backup.
func (c *Client) CreateBackup(ctx context.Context) (Payload, error) {
	return c.payload(ctx, request{
		method: http.MethodPost,
		path:   "/backups",
	})
}

// GetSetting reads one application setting.
func (c *Client) GetSetting(ctx context.Context, key, userID string) (Payload, error) {
	return c.payload(ctx, request{
		method:     http.MethodGet,
		path:       "/settings/" + url.PathEscape(key),
		userID:     c.resolveUserID(ctx, userID),
		notFoundOK: true,
	})
}

func (c *Client) payload(ctx context.Context, req request) (Payload, error) {
	var out Payload

	found, err := c.call(ctx, req, &out)
	if err != nil || !found {
		return nil, err
	}

	if out == nil {
		out = Payload{}
	}

	return out, nil
}
