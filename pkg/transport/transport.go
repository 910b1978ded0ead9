// Package transport serves the MCP server over stdio, SSE or streamable HTTP.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/timothepoznanski/poznote-mcp/pkg/config"
	"github.com/timothepoznanski/poznote-mcp/pkg/poznote"
)

// ShutdownGrace bounds how long in-flight HTTP calls may run after an
// interrupt.
const ShutdownGrace = 10 * time.Second

var (
	ErrAddressInUse     = errors.New("address already in use")
	ErrPermissionDenied = errors.New("permission denied")
)

// Transport runs the MCP server until ctx is cancelled or a fatal fault
// occurs. A clean shutdown returns nil.
type Transport interface {
	Serve(ctx context.Context) error
}

// Fault is a fatal transport failure together with what the operator can do
// about it.
type Fault struct {
	Op          string
	Addr        string
	Err         error
	Remediation string
}

func (f *Fault) Error() string {
	if f.Addr == "" {
		return fmt.Sprintf("%s: %v", f.Op, f.Err)
	}
	return fmt.Sprintf("%s %s: %v", f.Op, f.Addr, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// New returns the transport selected by cfg.Transport.
func New(mcpServer *server.MCPServer, cfg *config.Config) (Transport, error) {
	switch cfg.Transport {
	case config.TransportStdio:
		return NewStdio(mcpServer, os.Stdin, os.Stdout), nil
	case config.TransportSSE:
		auth, err := NewBearerAuth(cfg.AuthToken, cfg.AuthTokenHash)
		if err != nil {
			return nil, err
		}
		return NewSSE(mcpServer, cfg.Addr(), auth), nil
	case config.TransportHTTP:
		return NewStreamable(mcpServer, cfg.Addr()), nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
}

// userIDFromHeader carries the caller's X-User-ID header into the call
// context, where the REST client picks it up.
func userIDFromHeader(ctx context.Context, r *http.Request) context.Context {
	if id := r.Header.Get(poznote.UserIDHeader); id != "" {
		return poznote.ContextWithUserID(ctx, id)
	}
	return ctx
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
