package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/CodMac/go-treesitter-coupling-analyzer/collector"
	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"github.com/CodMac/go-treesitter-coupling-analyzer/extractor"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/CodMac/go-treesitter-coupling-analyzer/parser"
	sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/sync/errgroup"
)

// FileProcessor 负责并发处理文件列表，两阶段产出全部类的 ClassFacts。
type FileProcessor struct {
	Language model.Language
	Workers  int // 并发协程数量
	Project  *core.Project
	logger   *slog.Logger
}

// NewFileProcessor 创建 FileProcessor 实例
func NewFileProcessor(lang model.Language, workers int, project *core.Project, logger *slog.Logger) *FileProcessor {
	if workers <= 0 {
		workers = 4 // 默认并发数
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileProcessor{
		Language: lang,
		Workers:  workers,
		Project:  project,
		logger:   logger,
	}
}

// Result 一次处理的产出。Facts 按类名排序。
type Result struct {
	Facts   []*model.ClassFacts
	Context *core.GlobalContext
}

// ProcessFiles 实现了两阶段处理逻辑：
// 阶段 1 解析全部文件并收集类型定义；阶段 2 借助全局上下文提取每个类的事实。
// 语法树在阶段 2 结束后统一释放。
func (fp *FileProcessor) ProcessFiles(ctx context.Context, filePaths []string) (*Result, error) {
	resolver, err := core.GetSymbolResolver(fp.Language)
	if err != nil {
		return nil, err
	}
	coll, err := collector.GetCollector(fp.Language)
	if err != nil {
		return nil, err
	}
	ext, err := extractor.GetExtractor(fp.Language)
	if err != nil {
		return nil, err
	}

	gc := core.NewGlobalContext(fp.Project, resolver)
	if len(filePaths) == 0 {
		return &Result{Context: gc}, nil
	}

	var trees treeSet
	defer trees.closeAll()

	// --- 阶段 1: 收集定义 (Collect Definitions) ---
	fp.logger.Info("phase 1: collecting definitions", "files", len(filePaths), "workers", fp.Workers)
	if err := fp.collect(ctx, filePaths, coll, gc, &trees); err != nil {
		return nil, fmt.Errorf("phase 1 (definition collection) failed: %w", err)
	}

	// --- 阶段 2: 提取事实 (Extract Facts) ---
	fp.logger.Info("phase 2: extracting class facts", "types", len(gc.TypesByQN))
	facts, err := fp.extract(ctx, gc, ext)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (fact extraction) failed: %w", err)
	}

	return &Result{Facts: facts, Context: gc}, nil
}

func (fp *FileProcessor) collect(ctx context.Context, filePaths []string, coll collector.Collector, gc *core.GlobalContext, trees *treeSet) error {
	paths := make(chan string)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(paths)
		for _, path := range filePaths {
			select {
			case paths <- path:
			case <-gCtx.Done():
				return gCtx.Err()
			}
		}
		return nil
	})

	for i := 0; i < fp.Workers; i++ {
		g.Go(func() error {
			// 确保每个 worker 都有自己的 parser
			p, err := parser.NewParser(fp.Language)
			if err != nil {
				return err
			}
			defer p.Close()

			for path := range paths {
				tree, src, err := p.ParseFile(path)
				if err != nil {
					return err
				}
				trees.add(tree)
				if tree.RootNode().HasError() {
					fp.logger.Warn("syntax errors in file, continuing", "file", path)
				}

				fileContext, err := coll.CollectDefinitions(tree.RootNode(), path, src, gc.Project)
				if err != nil {
					fp.logger.Warn("failed to collect definitions", "file", path, "error", err)
					continue
				}
				// 注册到全局上下文 (带锁)
				gc.RegisterFileContext(fileContext)
			}
			return nil
		})
	}

	return g.Wait()
}

func (fp *FileProcessor) extract(ctx context.Context, gc *core.GlobalContext, ext extractor.Extractor) ([]*model.ClassFacts, error) {
	files := gc.SortedFiles()
	perFile := make([][]*model.ClassFacts, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fp.Workers)
	for i, fc := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			facts, err := ext.Extract(fc, gc)
			if err != nil {
				fp.logger.Warn("failed to extract class facts", "file", fc.FilePath, "error", err)
				return nil
			}
			perFile[i] = facts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*model.ClassFacts
	for _, facts := range perFile {
		all = append(all, facts...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].ClassName < all[j].ClassName })
	return all, nil
}

// treeSet 阶段 1 产出的语法树，节点在阶段 2 仍被引用
type treeSet struct {
	mu    sync.Mutex
	trees []*sitter.Tree
}

func (s *treeSet) add(t *sitter.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees = append(s.trees, t)
}

func (s *treeSet) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.trees {
		t.Close()
	}
	s.trees = nil
}
