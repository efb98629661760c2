package core

import (
	"fmt"

	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
)

// --- 语言特有的符号解析接口 ---

type SymbolResolver interface {
	// BuildQualifiedName 根据父节点和当前名构建 QN
	BuildQualifiedName(parentQN, name string) string

	// ResolveType 将源码中的类型名解析为全限定名。
	// internal 表示结果属于项目内已收集的类型；qn 非空但 internal 为 false 时表示
	// 通过导入得知的外部全限定名；两者皆空表示无法解析。
	ResolveType(gc *GlobalContext, fc *FileContext, typeName string) (qn string, internal bool)
}

var symbolResolverMap = make(map[model.Language]SymbolResolver)

// RegisterSymbolResolver 注册一个语言与其对应的 SymbolResolver
func RegisterSymbolResolver(lang model.Language, resolver SymbolResolver) {
	symbolResolverMap[lang] = resolver
}

// GetSymbolResolver 根据语言类型获取对应的 SymbolResolver 实例。
func GetSymbolResolver(lang model.Language) (SymbolResolver, error) {
	resolver, ok := symbolResolverMap[lang]
	if !ok {
		return nil, fmt.Errorf("%w: no symbol resolver for %s", model.ErrLanguageNotRegistered, lang)
	}

	return resolver, nil
}
