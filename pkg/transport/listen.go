package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"syscall"
)

// Listen binds addr, turning the common bind failures into a Fault that
// says what to change.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err == nil {
		return ln, nil
	}

	switch {
	case errors.Is(err, syscall.EADDRINUSE):
		return nil, &Fault{
			Op:          "listen",
			Addr:        addr,
			Err:         fmt.Errorf("%w: %v", ErrAddressInUse, err),
			Remediation: "another process is listening on this port; stop it or set MCP_PORT (or --port) to a free port",
		}
	case errors.Is(err, syscall.EACCES), errors.Is(err, os.ErrPermission):
		return nil, &Fault{
			Op:          "listen",
			Addr:        addr,
			Err:         fmt.Errorf("%w: %v", ErrPermissionDenied, err),
			Remediation: "ports below 1024 need elevated privileges; choose a port above 1024 with MCP_PORT (or --port)",
		}
	default:
		return nil, &Fault{
			Op:          "listen",
			Addr:        addr,
			Err:         err,
			Remediation: "check MCP_HOST and MCP_PORT",
		}
	}
}

// serveHTTP runs srv on ln until ctx is cancelled, then gives in-flight
// requests ShutdownGrace to finish. shutdown is called in place of
// srv.Shutdown when set.
func serveHTTP(ctx context.Context, name string, srv *http.Server, ln net.Listener, shutdown func(context.Context) error) error {
	if shutdown == nil {
		shutdown = srv.Shutdown
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	slog.Info("serving MCP", "transport", name, "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return &Fault{Op: name, Addr: ln.Addr().String(), Err: err}

	case <-ctx.Done():
		slog.Info("shutting down", "transport", name)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownGrace)
		defer cancel()

		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown incomplete", "transport", name, "error", err)
			_ = srv.Close()
		}

		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return &Fault{Op: name, Addr: ln.Addr().String(), Err: err}
		}
		return nil
	}
}
