// Command client is a smoke test for a Poznote MCP server: it launches the
// server over stdio, lists its tools and runs one search.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"github.com/timothepoznanski/poznote-mcp/pkg/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		serverName string
		query      string
		limit      int
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "client",
		Short:         "Smoke test a Poznote MCP server over stdio",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			utils.ConfigureLogging(logLevel, os.Stderr)

			config, err := loadMCPHostsConfig(configPath)
			if err != nil {
				return err
			}
			if err := validateServer(config, serverName); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			c, err := initializeMCPClient(ctx, config, serverName, "poznote-smoke-client")
			if err != nil {
				return err
			}
			defer c.Close()

			return smokeTest(ctx, c, cmd.OutOrStdout(), query, limit)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "mcphost config file (default ./.mcphost.yml, then ~/.mcphost.yml)")
	cmd.Flags().StringVar(&serverName, "server", "poznote", "server entry to launch")
	cmd.Flags().StringVar(&query, "query", "API", "search query")
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of search results")
	cmd.Flags().StringVar(&logLevel, "log-level", "WARN", "log level (DEBUG, INFO, WARN, ERROR)")

	return cmd
}

// smokeTest lists the tools of an initialized client and runs search_notes.
func smokeTest(ctx context.Context, c *client.Client, out io.Writer, query string, limit int) error {
	fmt.Fprintln(out, "Listing available tools...")
	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}

	found := false
	for _, tool := range tools.Tools {
		fmt.Fprintf(out, "- %s: %s\n", tool.Name, tool.Description)
		found = found || tool.Name == "search_notes"
	}
	fmt.Fprintln(out)

	if !found {
		return fmt.Errorf("server does not expose search_notes")
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = "search_notes"
	req.Params.Arguments = map[string]any{"query": query, "limit": limit}

	result, err := c.CallTool(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to call search_notes: %w", err)
	}

	printToolResult(out, result)

	if result.IsError {
		return fmt.Errorf("search_notes returned an error")
	}
	return nil
}

func printToolResult(out io.Writer, result *mcp.CallToolResult) {
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			fmt.Fprintln(out, textContent.Text)
		} else {
			jsonBytes, _ := json.MarshalIndent(content, "", "  ")
			fmt.Fprintln(out, string(jsonBytes))
		}
	}
}
