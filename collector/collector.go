// Package collector 定义第一阶段的定义收集器及其按语言的注册表。
package collector

import (
	"fmt"
	"sync"

	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Collector 第一阶段：读取包名、导入与类型声明，不解析任何类型引用。
type Collector interface {
	// CollectDefinitions 遍历 AST，返回该文件的 FileContext。project 可以为 nil。
	CollectDefinitions(rootNode *sitter.Node, filePath string, sourceBytes []byte, project *core.Project) (*core.FileContext, error)
}

var (
	mu           sync.RWMutex
	collectorMap = make(map[model.Language]Collector)
)

// RegisterCollector 在语言包的 init() 中调用，同一语言重复注册会 panic
func RegisterCollector(lang model.Language, c Collector) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := collectorMap[lang]; dup {
		panic("collector: RegisterCollector called twice for " + string(lang))
	}
	collectorMap[lang] = c
}

func GetCollector(lang model.Language) (Collector, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := collectorMap[lang]
	if !ok {
		return nil, fmt.Errorf("%w: no collector for %s", model.ErrLanguageNotRegistered, lang)
	}
	return c, nil
}
