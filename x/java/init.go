package java

import (
	"github.com/CodMac/go-treesitter-coupling-analyzer/collector"
	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"github.com/CodMac/go-treesitter-coupling-analyzer/extractor"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/CodMac/go-treesitter-coupling-analyzer/noisefilter"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// ReservedPrefix JDK 类型的保留前缀，构造与方法调用目标以此开头时直接忽略
const ReservedPrefix = "java"

func init() {
	// 注册 Tree-sitter Java 语言对象
	model.RegisterLanguage(model.LangJava, sitter.NewLanguage(tree_sitter_java.Language()), ".java")
	// 注册 Collector
	collector.RegisterCollector(model.LangJava, NewJavaCollector())
	// 注册 Extractor
	extractor.RegisterExtractor(model.LangJava, NewJavaExtractor())
	// 注册 NoiseFilter(噪音过滤)
	noisefilter.RegisterNoiseFilter(model.LangJava, noisefilter.NewPrefixFilter(ReservedPrefix))
	// 注册 SymbolResolver(符号解析)
	core.RegisterSymbolResolver(model.LangJava, NewJavaSymbolResolver())
}
