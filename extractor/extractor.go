package extractor

import (
	"fmt"
	"sync"

	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
)

// Extractor 第二阶段：在全局上下文的帮助下，为文件中声明的每个类型生成 ClassFacts。
// 实现必须可以被多个协程同时调用。
type Extractor interface {
	Extract(fc *core.FileContext, gc *core.GlobalContext) ([]*model.ClassFacts, error)
}

var (
	mu           sync.RWMutex
	extractorMap = make(map[model.Language]Extractor)
)

// RegisterExtractor 同一语言重复注册会 panic
func RegisterExtractor(lang model.Language, e Extractor) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := extractorMap[lang]; dup {
		panic("extractor: RegisterExtractor called twice for " + string(lang))
	}
	extractorMap[lang] = e
}

func GetExtractor(lang model.Language) (Extractor, error) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := extractorMap[lang]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %s", model.ErrLanguageNotRegistered, lang)
	}
	return e, nil
}
