// Package analyzer 串联一次完整的分析：发现文件、提取事实、构建依赖图并计算度量。
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/CodMac/go-treesitter-coupling-analyzer/graph"
	"github.com/CodMac/go-treesitter-coupling-analyzer/metric"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/CodMac/go-treesitter-coupling-analyzer/noisefilter"
	"github.com/CodMac/go-treesitter-coupling-analyzer/processor"
	"github.com/CodMac/go-treesitter-coupling-analyzer/transformer"
	"golang.org/x/sync/errgroup"

	// 导入所有语言的实现，以触发其 init() 函数注册
	_ "github.com/CodMac/go-treesitter-coupling-analyzer/x/golang"
	_ "github.com/CodMac/go-treesitter-coupling-analyzer/x/java"
)

// ErrUnsupportedLanguage 语言没有注册事实源
var ErrUnsupportedLanguage = errors.New("unsupported language")

type Options struct {
	Language      model.Language
	Workers       int
	NoisePrefixes []string // 追加到语言默认过滤器之后
}

// Result 一次分析的产出
type Result struct {
	Root     string
	Language model.Language
	Graph    *graph.ProjectGraph
	Files    int
	Duration time.Duration
}

type Analyzer struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Analyzer {
	if opts.Language == "" {
		opts.Language = model.LangJava
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{opts: opts, logger: logger}
}

// Analyze 分析 root 下的仓库。目录中没有源文件时返回空图。
func (a *Analyzer) Analyze(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	lang := a.opts.Language

	ext, err := model.FileExtension(lang)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	// 1. 查找所有要分析的文件
	files, err := discoverFiles(root, ext)
	if err != nil {
		return nil, fmt.Errorf("discover files in %s: %w", root, err)
	}
	logger := a.logger.With("root", root, "language", lang)
	logger.Info("starting analysis", "files", len(files), "workers", a.opts.Workers)

	// 2. 两阶段提取事实
	project, err := processor.DetectProject(root)
	if err != nil {
		return nil, err
	}
	proc := processor.NewFileProcessor(lang, a.opts.Workers, project, logger)
	processed, err := proc.ProcessFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	// 3. 写入依赖图并计算度量
	t := transformer.New(noisefilter.ForLanguage(lang, a.opts.NoisePrefixes...), logger)
	g := t.TransformWithUniverse(processed.Facts, processed.Context.Universe())
	metric.ComputeAll(g)

	result := &Result{
		Root:     root,
		Language: lang,
		Graph:    g,
		Files:    len(files),
		Duration: time.Since(start),
	}
	logger.Info("analysis complete", "classes", g.Len(), "duration", result.Duration)
	return result, nil
}

// AnalyzeAll 并行分析多个互不相关的仓库，结果与 roots 顺序一致
func (a *Analyzer) AnalyzeAll(ctx context.Context, roots []string) ([]*Result, error) {
	results := make([]*Result, len(roots))
	g, gCtx := errgroup.WithContext(ctx)
	for i, root := range roots {
		g.Go(func() error {
			res, err := a.Analyze(gCtx, root)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", root, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// discoverFiles 递归查找目录下所有符合语言要求的文件路径。
// root 本身是文件时直接返回；子目录中的隐藏目录、vendor 与 testdata 以及 _test 文件被忽略。
func discoverFiles(root, ext string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(root) == ext {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ext && !strings.HasSuffix(path, "_test"+ext) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata" || name == "node_modules"
}
