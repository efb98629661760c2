// Package commands 定义 coupling 命令行。
package commands

import (
	"fmt"
	"log/slog"

	"github.com/CodMac/go-treesitter-coupling-analyzer/config"
	"github.com/CodMac/go-treesitter-coupling-analyzer/logging"
	"github.com/spf13/cobra"
)

var Version = "0.3.0"

// globals 所有子命令共享的全局参数与加载后的配置
type globals struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

// setup 读取配置并创建日志器，日志写到 stderr
func (g *globals) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if g.verbose {
		level = "debug"
	}
	g.cfg = cfg
	g.logger = logging.New(level, cfg.Log.Format, cmd.ErrOrStderr())
	return nil
}

// RootCmd creates and returns the root command for the coupling CLI
func RootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "coupling",
		Short: "Class-level coupling analysis for Java and Go repositories",
		Long: `coupling parses a repository with tree-sitter, builds a class dependency graph
and computes coupling metrics for every class and every pair of classes.

Examples:
  coupling analyze ./my-repo                 # summary table + coupling.jsonl
  coupling analyze --lang go --format mermaid -o graph.html .
  coupling serve --addr :8080                # HTTP API
  coupling mcp                               # MCP server on stdio
  coupling init                              # write coupling.yml`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", fmt.Sprintf("Config file (default: ./%s)", config.FileName))
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newAnalyzeCmd(g))
	cmd.AddCommand(newServeCmd(g))
	cmd.AddCommand(newMCPCmd(g))
	cmd.AddCommand(newInitCmd(g))

	return cmd
}
