package golang

import (
	"strings"

	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
)

type SymbolResolver struct{}

func NewGoSymbolResolver() *SymbolResolver {
	return &SymbolResolver{}
}

func (g *SymbolResolver) BuildQualifiedName(parentQN, name string) string {
	if parentQN == "" {
		return name
	}
	return parentQN + "." + name
}

// ResolveType 将 pkg.Type 或同包的 Type 解析为 <导入路径>.<Type>
func (g *SymbolResolver) ResolveType(gc *core.GlobalContext, fc *core.FileContext, typeName string) (string, bool) {
	name := normalizeTypeName(typeName)
	if name == "" || builtinTypes[name] {
		return "", false
	}

	// 1. pkg.Type：按文件中的导入别名查找
	if alias, typ, ok := strings.Cut(name, "."); ok {
		imp, found := fc.ImportsBySN[alias]
		if !found {
			return "", false
		}
		qn := g.BuildQualifiedName(imp.RawImportPath, typ)
		return qn, gc.HasType(qn)
	}

	// 2. 同包类型
	if qn := g.BuildQualifiedName(fc.PackageName, name); gc.HasType(qn) {
		return qn, true
	}

	// 3. 点导入
	for _, imp := range fc.Imports {
		if imp.IsWildcard {
			if qn := g.BuildQualifiedName(imp.RawImportPath, name); gc.HasType(qn) {
				return qn, true
			}
		}
	}

	return "", false
}

// normalizeTypeName 去除指针、切片、数组、可变参数、通道与泛型实参；map 取值类型，函数与匿名类型不解析
func normalizeTypeName(typeName string) string {
	name := strings.TrimSpace(typeName)
	for {
		switch {
		case strings.HasPrefix(name, "*"):
			name = name[1:]
		case strings.HasPrefix(name, "..."):
			name = name[3:]
		case strings.HasPrefix(name, "<-chan "):
			name = name[len("<-chan "):]
		case strings.HasPrefix(name, "chan "):
			name = strings.TrimPrefix(name[len("chan "):], "<-")
		case strings.HasPrefix(name, "map["), strings.HasPrefix(name, "["):
			end := closingBracket(name, strings.Index(name, "["))
			if end < 0 {
				return ""
			}
			name = name[end+1:]
		default:
			for _, prefix := range []string{"func(", "struct{", "struct {", "interface{", "interface {", "("} {
				if strings.HasPrefix(name, prefix) {
					return ""
				}
			}
			if i := strings.Index(name, "["); i >= 0 {
				name = name[:i]
			}
			return strings.TrimSpace(name)
		}
		name = strings.TrimSpace(name)
	}
}

// closingBracket 返回与 open 处 '[' 匹配的 ']' 下标
func closingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

var builtinTypes = map[string]bool{
	"bool": true, "string": true, "error": true, "any": true, "byte": true, "rune": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true, "comparable": true,
}
