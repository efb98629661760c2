package java

import (
	"strings"
	"unicode"

	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
)

type SymbolResolver struct{}

func NewJavaSymbolResolver() *SymbolResolver {
	return &SymbolResolver{}
}

func (j *SymbolResolver) BuildQualifiedName(parentQN, name string) string {
	if parentQN == "" || parentQN == "." {
		return name
	}
	return parentQN + "." + name
}

func (j *SymbolResolver) ResolveType(gc *core.GlobalContext, fc *core.FileContext, typeName string) (string, bool) {
	name := normalizeTypeName(typeName)
	if name == "" || primitiveTypes[name] {
		return "", false
	}

	// 1. 文件内定义 (含嵌套类型)
	if entry, ok := fc.LocalType(name); ok {
		return entry.QualifiedName, true
	}

	// 2. 精确导入，支持 Outer.Inner 形式
	head, rest, _ := strings.Cut(name, ".")
	if imp, ok := fc.ImportsBySN[head]; ok && !imp.IsStatic {
		qn := imp.RawImportPath
		if rest != "" {
			qn += "." + rest
		}
		return qn, gc.HasType(qn)
	}

	// 3. 同包前缀
	if qn := j.BuildQualifiedName(fc.PackageName, name); gc.HasType(qn) {
		return qn, true
	}

	// 4. Java 特有的通配符导入
	for _, imp := range fc.Imports {
		if imp.IsWildcard && !imp.IsStatic {
			basePath := strings.TrimSuffix(imp.RawImportPath, "*")
			if gc.HasType(basePath + name) {
				return basePath + name, true
			}
		}
	}

	// 5. 兜底：直接按 QN 查找 (处理代码中使用全限定名的情况)
	if gc.HasType(name) {
		return name, true
	}
	if looksQualified(name) {
		return name, false
	}

	return "", false
}

// normalizeTypeName 去除泛型参数、数组与可变参数标记
func normalizeTypeName(typeName string) string {
	name := strings.TrimSpace(typeName)
	if i := strings.Index(name, "<"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(name, "...")
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSuffix(name, "[]")
	}
	return strings.TrimSpace(name)
}

// looksQualified 以小写包名开头的点分名称视为全限定名
func looksQualified(name string) bool {
	if !strings.Contains(name, ".") {
		return false
	}
	first := []rune(name)[0]
	return unicode.IsLower(first)
}

var primitiveTypes = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true, "int": true,
	"long": true, "float": true, "double": true, "void": true, "var": true,
}
