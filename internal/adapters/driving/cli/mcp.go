package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/faqrag/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
grounded medical questions and fetch FAQ passages.

Tools:
  ask       answer a question, citing [FAQ-n] sources
  retrieve  return the nearest passages for a query

By default the server speaks JSON-RPC over stdio. Use --port to serve
over HTTP instead, e.g. for the MCP Inspector.

Examples:
  faqrag mcp serve
  faqrag mcp serve --port 8081`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	assistant, err := requireAssistant()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Assistant: assistant,
		Retriever: services.Retriever,
		Index:     services.Index,
		Retrieval: currentSettings().Retrieval,
	})
	if err != nil {
		return err
	}

	watchPrompts(cmd.Context())

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
