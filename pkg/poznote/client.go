// Package poznote is an HTTP client for the Poznote REST API v1.
package poznote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// UserIDHeader selects the Poznote user profile a request acts on.
const UserIDHeader = "X-User-ID"

type Client struct {
	cfg        Config
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The configured timeout
// is not applied to a client supplied this way.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the backend described by cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg: cfg.withDefaults(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.cfg.Timeout}
	}

	return c
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

type userIDKey struct{}

// ContextWithUserID attaches a caller identity to ctx. It is used when a call
// does not name a user explicitly.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the caller identity attached to ctx, if any.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey{}).(string)
	return v
}

func (c *Client) resolveWorkspace(workspace string) string {
	if ws := strings.TrimSpace(workspace); ws != "" {
		return ws
	}
	return c.cfg.DefaultWorkspace
}

func (c *Client) resolveUserID(ctx context.Context, userID string) string {
	if id := strings.TrimSpace(userID); id != "" {
		return id
	}
	if id := UserIDFromContext(ctx); id != "" {
		return id
	}
	return c.cfg.DefaultUserID
}

// workspaceQuery returns the query for a workspace scoped request. An empty
// workspace is omitted so the backend applies its own default.
func (c *Client) workspaceQuery(workspace string) url.Values {
	q := url.Values{}
	if ws := c.resolveWorkspace(workspace); ws != "" {
		q.Set("workspace", ws)
	}
	return q
}

// request describes one round trip to the backend.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	userID string

	// notFoundOK turns a 404 into an absence result instead of an error.
	notFoundOK bool
}

// call performs req and decodes the JSON reply into out. It reports false
// when the resource was not found and req.notFoundOK is set.
func (c *Client) call(ctx context.Context, req request, out any) (bool, error) {
	endpoint := c.cfg.BaseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return false, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Username != "" || c.cfg.Password != "" {
		httpReq.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
	if req.userID != "" {
		httpReq.Header.Set(UserIDHeader, req.userID)
	}

	slog.Debug("poznote request", "method", req.method, "path", req.path, "query", req.query.Encode(), "user_id", req.userID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false, &BackendError{Method: req.method, Path: req.path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, &BackendError{Method: req.method, Path: req.path, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode == http.StatusNotFound && req.notFoundOK {
		slog.Debug("poznote resource not found", "method", req.method, "path", req.path)
		return false, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("poznote request failed", "method", req.method, "path", req.path, "status", resp.StatusCode)
		return false, &BackendError{Method: req.method, Path: req.path, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return true, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, &BackendError{
			Method:     req.method,
			Path:       req.path,
			StatusCode: resp.StatusCode,
			Body:       string(data),
			Err:        fmt.Errorf("malformed response: %w", err),
		}
	}

	return true, nil
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.StatusCode == http.StatusNotFound
}
