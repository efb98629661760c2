package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CodMac/go-treesitter-coupling-analyzer/analyzer"
	"github.com/CodMac/go-treesitter-coupling-analyzer/output"
	"github.com/CodMac/go-treesitter-coupling-analyzer/store"
	"github.com/spf13/cobra"
)

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(g *globals) *cobra.Command {
	var (
		lang    string
		workers int
		format  string
		outPath string
		top     int
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Analyze one or more repositories",
		Long: `Analyze parses every source file under each path, prints the most coupled
class pairs and writes the full per-class document.

With several paths the analyses run in parallel and each output file is
prefixed with the repository directory name.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.setup(cmd); err != nil {
				return err
			}
			cfg := g.cfg

			flags := cmd.Flags()
			if flags.Changed("lang") {
				cfg.Analysis.Language = strings.ToLower(lang)
			}
			if flags.Changed("workers") {
				cfg.Analysis.Workers = workers
			}
			if flags.Changed("format") {
				cfg.Output.Format = format
			}
			if flags.Changed("output") {
				cfg.Output.Path = outPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			roots := args
			if len(roots) == 0 {
				roots = []string{"."}
			}

			results, err := analyzer.New(cfg.AnalyzerOptions(), g.logger).AnalyzeAll(cmd.Context(), roots)
			if err != nil {
				return err
			}

			var st store.Store
			if save {
				if st, err = store.Open(cfg.StoreOptions()); err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				defer st.Close()
			}

			out := cmd.OutOrStdout()
			for _, res := range results {
				doc := output.BuildDocument(res.Graph)

				fmt.Fprintf(out, "%s (%s, %d files, %s)\n", res.Root, res.Language, res.Files, res.Duration.Round(time.Millisecond))
				fmt.Fprintln(out, output.RenderSummary(doc, top))

				path := outputPath(cfg.Output.Path, res.Root, len(results) > 1)
				if path == "-" {
					if err := output.Write(out, cfg.Output.Format, doc); err != nil {
						return err
					}
				} else if path != "" {
					if dir := filepath.Dir(path); dir != "." {
						if err := os.MkdirAll(dir, 0o755); err != nil {
							return err
						}
					}
					if err := output.Export(path, cfg.Output.Format, doc); err != nil {
						return err
					}
					g.logger.Info("output written", "path", path, "format", cfg.Output.Format, "classes", len(doc))
				}

				if st != nil {
					snap := store.NewSnapshot(res.Root, string(res.Language), doc)
					if err := st.Save(cmd.Context(), snap); err != nil {
						return fmt.Errorf("save snapshot: %w", err)
					}
					fmt.Fprintf(out, "snapshot %s saved\n", snap.ID)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Source language: java or go (default from config)")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Number of concurrent workers (default: CPU count)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: jsonl, json or mermaid")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", `Output file, "-" for stdout, "" to skip`)
	cmd.Flags().IntVar(&top, "top", 10, "Number of relations in the summary table")
	cmd.Flags().BoolVar(&save, "save", false, "Save the result as a snapshot in the configured store")

	return cmd
}

// outputPath 多个仓库时在文件名前加上仓库目录名
func outputPath(path, root string, multi bool) string {
	if !multi || path == "" || path == "-" {
		return path
	}
	name := filepath.Base(filepath.Clean(root))
	if abs, err := filepath.Abs(root); err == nil {
		name = filepath.Base(abs)
	}
	return filepath.Join(filepath.Dir(path), name+"-"+filepath.Base(path))
}
