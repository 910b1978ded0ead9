package transport

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// Stdio serves one MCP session over a pair of pipes.
type Stdio struct {
	stdio *server.StdioServer
	in    io.Reader
	out   io.Writer
}

func NewStdio(mcpServer *server.MCPServer, in io.Reader, out io.Writer) *Stdio {
	s := server.NewStdioServer(mcpServer)
	// stdout carries the protocol, keep library logs on the slog destination
	s.SetErrorLogger(log.New(slogWriter{}, "", 0))

	return &Stdio{stdio: s, in: in, out: out}
}

func (s *Stdio) Serve(ctx context.Context) error {
	slog.Info("serving MCP over stdio")

	err := s.stdio.Listen(ctx, s.in, s.out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		slog.Info("stdio transport closed")
		return nil
	}

	return &Fault{Op: "stdio", Err: err}
}

// slogWriter forwards standard log output to slog at ERROR level.
type slogWriter struct{}

func (slogWriter) Write(p []byte) (int, error) {
	slog.Error("mcp stdio", "message", string(p))
	return len(p), nil
}
