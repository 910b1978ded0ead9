package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/timothepoznanski/poznote-mcp/pkg/config"
	"github.com/timothepoznanski/poznote-mcp/pkg/notes-mcp"
	"github.com/timothepoznanski/poznote-mcp/pkg/poznote"
	"github.com/timothepoznanski/poznote-mcp/pkg/transport"
	"github.com/timothepoznanski/poznote-mcp/pkg/utils"
)

type options struct {
	configFile string
	logLevel   string
	transport  string
	host       string
	port       int
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "poznote-mcp",
		Short: "MCP server for a Poznote instance",
		Long: `Expose the notes, folders and workspaces of a Poznote instance to an AI assistant
over the Model Context Protocol.

Without a subcommand the server is configured from the environment (or a .env file):

  POZNOTE_API_URL            Poznote REST API base URL (default http://localhost:8040/api/v1)
  POZNOTE_USERNAME           Basic Auth user
  POZNOTE_PASSWORD           Basic Auth password
  POZNOTE_DEFAULT_WORKSPACE  workspace used when a tool call names none (default Poznote)
  POZNOTE_USER_ID            profile sent as X-User-ID (default 1)
  MCP_TRANSPORT              stdio, sse or http (default stdio)
  MCP_HOST, MCP_PORT         listen address of the HTTP transports (default 127.0.0.1:8045)
  MCP_AUTH_TOKEN             bearer token required by the sse transport`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server. Flags override the environment and the configuration file.

Claude Desktop (stdio):
{
  "mcpServers": {
    "poznote": {
      "command": "poznote-mcp",
      "args": ["serve"]
    }
  }
}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	serve.Flags().StringVar(&opts.transport, "transport", config.TransportStdio, "transport: stdio, sse or http")
	serve.Flags().StringVar(&opts.host, "host", config.DefaultHost, "listen host for the sse and http transports")
	serve.Flags().IntVar(&opts.port, "port", config.DefaultPort, "listen port for the sse and http transports")

	root.AddCommand(serve)

	return root
}

// loadConfig applies the flags the user actually set on top of config.Load.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("transport") {
		cfg.Transport = config.NormalizeTransport(opts.transport)
	}
	if flags.Changed("host") {
		cfg.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logOut, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	utils.ConfigureLogging(cfg.EffectiveLogLevel(), logOut)

	if err := cfg.Poznote.Validate(); err != nil {
		slog.Warn("Poznote backend not fully configured, tool calls will report it", "error", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := poznote.NewClient(cfg.Poznote)
	ns := notes.NewNotesServer(client, cfg.Poznote)

	tr, err := transport.New(ns.McpServer, cfg)
	if err != nil {
		return err
	}

	slog.Info("Starting Poznote MCP server",
		"version", notes.ServerVersion,
		"transport", cfg.Transport,
		"api_url", client.BaseURL(),
		"workspace", cfg.Poznote.DefaultWorkspace,
		"log_level", cfg.EffectiveLogLevel())

	if err := tr.Serve(ctx); err != nil {
		slog.Error("Poznote MCP server failed", "error", err)
		return err
	}

	slog.Info("Poznote MCP server stopped")
	return nil
}

// openLog returns the log destination: the named file, or stderr since
// stdout carries the stdio protocol.
func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening log file: %w", err)
	}

	return f, func() { f.Close() }, nil
}
