package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdullah-sah/brain-assistant/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can capture
text and manage your tasks.

By default, the server communicates over stdio using JSON-RPC. Use --port
to serve streamable HTTP instead.

Tools:     capture_text, list_tasks, complete_task
Resources: brain://tasks, brain://notes/{noteId}

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "brain": {
        "command": "/path/to/brain",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func newMCPServer() (*mcp.Server, error) {
	if captureService == nil || taskService == nil {
		return nil, errors.New("capture and task services not configured")
	}
	return mcp.NewServer(&mcp.Ports{
		Capture: captureService,
		Tasks:   taskService,
		Notes:   noteService,
	})
}

func runMCP(cmd *cobra.Command, _ []string) error {
	server, err := newMCPServer()
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
