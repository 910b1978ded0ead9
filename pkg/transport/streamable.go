package transport

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
)

const StreamablePath = "/mcp"

// Streamable serves MCP over stateless streamable HTTP: every POST to /mcp
// is handled on its own, with no session kept between requests.
type Streamable struct {
	addr    string
	httpSrv *http.Server
}

func NewStreamable(mcpServer *server.MCPServer, addr string) *Streamable {
	streamable := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
		server.WithEndpointPath(StreamablePath),
		server.WithHTTPContextFunc(userIDFromHeader),
	)

	return &Streamable{
		addr: addr,
		httpSrv: &http.Server{
			Addr:    addr,
			Handler: newStreamableHandler(streamable),
		},
	}
}

func newStreamableHandler(streamable http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthz)
	mux.Handle(StreamablePath, streamable)
	return mux
}

// Serve binds the address first so a busy port or a privileged one is
// reported as a Fault, then serves on that same listener.
func (s *Streamable) Serve(ctx context.Context) error {
	ln, err := Listen(s.addr)
	if err != nil {
		return err
	}

	return serveHTTP(ctx, "http", s.httpSrv, ln, nil)
}
