package golang

import (
	"github.com/CodMac/go-treesitter-coupling-analyzer/collector"
	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"github.com/CodMac/go-treesitter-coupling-analyzer/extractor"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/CodMac/go-treesitter-coupling-analyzer/noisefilter"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

func init() {
	// 注册 Tree-sitter Go 语言对象
	model.RegisterLanguage(model.LangGo, sitter.NewLanguage(tree_sitter_go.Language()), ".go")
	collector.RegisterCollector(model.LangGo, NewGoCollector())
	extractor.RegisterExtractor(model.LangGo, NewGoExtractor())
	// Go 没有保留前缀，标准库调用在项目之外，自然成为外部调用
	noisefilter.RegisterNoiseFilter(model.LangGo, &noisefilter.DefaultNoiseFilter{})
	core.RegisterSymbolResolver(model.LangGo, NewGoSymbolResolver())
}
