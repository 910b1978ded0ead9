package transport

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
)

// SSE serves MCP over Server-Sent Events (GET /sse plus POST /message),
// behind bearer authentication. Each client connection is its own session.
type SSE struct {
	addr    string
	httpSrv *http.Server
	sse     *server.SSEServer
}

func NewSSE(mcpServer *server.MCPServer, addr string, auth *BearerAuth) *SSE {
	httpSrv := &http.Server{Addr: addr}

	sse := server.NewSSEServer(mcpServer,
		server.WithHTTPServer(httpSrv),
		server.WithSSEContextFunc(userIDFromHeader),
		server.WithKeepAlive(true),
	)

	httpSrv.Handler = newSSEHandler(sse, auth)

	return &SSE{addr: addr, httpSrv: httpSrv, sse: sse}
}

func newSSEHandler(sse http.Handler, auth *BearerAuth) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthz)
	mux.Handle("/", auth.Middleware(sse))
	return mux
}

func (s *SSE) Serve(ctx context.Context) error {
	ln, err := Listen(s.addr)
	if err != nil {
		return err
	}

	// SSEServer.Shutdown closes the open event streams before stopping the
	// HTTP server, which would otherwise wait on them.
	return serveHTTP(ctx, "sse", s.httpSrv, ln, s.sse.Shutdown)
}
