package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CodMac/go-treesitter-coupling-analyzer/mcpserver"
	"github.com/CodMac/go-treesitter-coupling-analyzer/server"
	"github.com/CodMac/go-treesitter-coupling-analyzer/store"
	"github.com/spf13/cobra"
)

// newServeCmd creates the serve command
func newServeCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes analysis and stored snapshots over HTTP:

  GET  /health
  POST /analyze                               {"path": "...", "language": "java"}
  GET  /snapshots
  GET  /snapshots/{id}
  GET  /snapshots/{id}/classes/{class}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.setup(cmd); err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				g.cfg.Server.Addr = addr
			}

			st, err := store.Open(g.cfg.StoreOptions())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g.logger.Info("using store", "backend", g.cfg.Store.Backend)
			return server.New(g.cfg.AnalyzerOptions(), st, g.logger).ListenAndServe(ctx, g.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

// newMCPCmd creates the mcp command
func newMCPCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP server on stdio",
		Long:  `Serves the analyze_coupling and class_coupling tools over the Model Context Protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.setup(cmd); err != nil {
				return err
			}
			return mcpserver.ServeStdio(mcpserver.New(g.cfg.AnalyzerOptions(), g.logger))
		},
	}
}
