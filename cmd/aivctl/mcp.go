package main

import (
	"os"

	"github.com/aiverify/aivctl/pkg/guide"
	"github.com/aiverify/aivctl/pkg/mcpserver"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve presets, validation and the plugin catalog over MCP (stdio)",
	Long: `Runs an MCP server on stdin/stdout. Tools: guide_presets, guide_plan,
modelapi_validate and catalog_search. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

// newMCPServer registers every tool on a fresh server.
func newMCPServer() *mcpserver.MCPServer {
	srv := mcpserver.New("aivctl", version, logger)
	srv.Register(mcpserver.GuideTools(guide.NewInterpreter())...)
	srv.Register(mcpserver.ValidateTool())
	srv.Register(mcpserver.CatalogTool(catalogSource))
	return srv
}

func runMCP(cmd *cobra.Command, args []string) error {
	logger.Info("mcp server starting", zap.String("portal", settings.PortalURL))
	return newMCPServer().Serve(cmd.Context(), os.Stdin, os.Stdout)
}
