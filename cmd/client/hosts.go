package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"
)

const hostsFileName = ".mcphost.yml"

// MCPHostsConfig lists the MCP servers a host can launch, in the layout
// used by mcphost.
type MCPHostsConfig struct {
	MCPServers map[string]MCPServer `yaml:"mcpServers"`
}

type MCPServer struct {
	Type    string            `yaml:"type"`
	Command []string          `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"environment"`
}

// loadMCPHostsConfig reads path, or when path is empty the first
// .mcphost.yml found in the working directory and then the home directory.
func loadMCPHostsConfig(path string) (*MCPHostsConfig, error) {
	if path == "" {
		found, err := findHostsFile()
		if err != nil {
			return nil, err
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config MCPHostsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
	}

	slog.Debug("loaded MCP hosts config", "path", path, "servers", len(config.MCPServers))
	return &config, nil
}

func findHostsFile() (string, error) {
	candidates := []string{hostsFileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, hostsFileName))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}

	return "", errors.New("no .mcphost.yml file found in the current or home directory")
}

// validateServer checks that name is a local server with a command.
func validateServer(config *MCPHostsConfig, name string) error {
	server, ok := config.MCPServers[name]
	if !ok {
		return fmt.Errorf("required server '%s' not found in config", name)
	}
	if server.Type != "local" {
		return fmt.Errorf("server '%s' must have type 'local', got '%s'", name, server.Type)
	}
	if len(server.Command) == 0 {
		return fmt.Errorf("server '%s' must have a command specified", name)
	}
	return nil
}

// commandLine splits the server invocation into the executable and its
// arguments.
func commandLine(server MCPServer) (string, []string, error) {
	full := append(append([]string{}, server.Command...), server.Args...)
	if len(full) == 0 {
		return "", nil, errors.New("no command specified")
	}
	return full[0], full[1:], nil
}

func environment(server MCPServer) []string {
	env := make([]string, 0, len(server.Env))
	for k, v := range server.Env {
		env = append(env, k+"="+v)
	}
	return env
}

// initializeMCPClient starts the named server over stdio and completes the
// MCP handshake.
func initializeMCPClient(ctx context.Context, config *MCPHostsConfig, name, clientName string) (*client.Client, error) {
	server, ok := config.MCPServers[name]
	if !ok {
		return nil, fmt.Errorf("server '%s' not found in config", name)
	}

	command, args, err := commandLine(server)
	if err != nil {
		return nil, fmt.Errorf("server '%s': %w", name, err)
	}

	c, err := client.NewStdioMCPClient(command, environment(server), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to start server '%s': %w", name, err)
	}

	if err := initialize(ctx, c, clientName); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

func initialize(ctx context.Context, c *client.Client, clientName string) error {
	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    clientName,
		Version: "1.0.0",
	}

	initResult, err := c.Initialize(ctx, initRequest)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	slog.Info("initialized", "server", initResult.ServerInfo.Name, "version", initResult.ServerInfo.Version)
	return nil
}
