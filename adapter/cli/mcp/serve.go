package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	mcpinternal "github.com/maccam912/vikunja-ai/internal/mcp"
	"github.com/maccam912/vikunja-ai/pkg/config"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over HTTP",
	Long: `Start the MCP server over HTTP. Set MCP_AUTH_TOKEN to require a bearer token.

Examples:
  vikunja-ai mcp serve
  vikunja-ai mcp serve --addr 127.0.0.1:9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil {
			return cli.ErrNotInitialized
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if addr != "" {
			cfg.MCPAddr = addr
		}

		err = mcpinternal.Serve(cmd.Context(), cfg, app, cli.Version, cli.Logger())
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to MCP_ADDR)")
}
