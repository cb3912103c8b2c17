package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server exposing the encyclopedia to AI assistants.

Tools:
  search   scored passages for a query
  ask      a grounded answer with its sources

Resources:
  insectopedia://index     the loaded index manifest
  insectopedia://history   recent questions

By default the server speaks JSON-RPC over stdio. Use --port to serve the
streamable HTTP transport instead.

Examples:
  insectopedia mcp serve
  insectopedia mcp serve --port 8090

Client configuration:
  {
    "mcpServers": {
      "insectopedia": {
        "command": "/path/to/insectopedia",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	session, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession(cmd, session)

	server, err := mcp.NewServer(&mcp.Ports{
		Retrieval: session.Retrieval,
		Answer:    session.Answer,
		History:   session.History,
	})
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		// stdout is free in HTTP mode; in stdio mode it carries the protocol.
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}
