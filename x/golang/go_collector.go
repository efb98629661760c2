package golang

import (
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Collector struct{}

func NewGoCollector() *Collector {
	return &Collector{}
}

// CollectDefinitions 以导入路径作为包名，登记文件中的导入与顶级类型声明
func (c *Collector) CollectDefinitions(rootNode *sitter.Node, filePath string, sourceBytes []byte, project *core.Project) (*core.FileContext, error) {
	fCtx := core.NewFileContext(filePath, rootNode, sourceBytes)

	var pkgIdent string
	for i := 0; i < int(rootNode.NamedChildCount()); i++ {
		child := rootNode.NamedChild(uint(i))
		switch child.Kind() {
		case "package_clause":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if sub := child.NamedChild(uint(j)); sub.Kind() == "package_identifier" {
					pkgIdent = getNodeContent(sub, sourceBytes)
				}
			}
		case "import_declaration":
			c.handleImports(child, fCtx)
		}
	}
	fCtx.PackageName = packagePath(project, filePath, pkgIdent)

	for i := 0; i < int(rootNode.NamedChildCount()); i++ {
		child := rootNode.NamedChild(uint(i))
		if child.Kind() != "type_declaration" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			spec := child.NamedChild(uint(j))
			if spec.Kind() != "type_spec" && spec.Kind() != "type_alias" {
				continue
			}
			name := getNodeContent(spec.ChildByFieldName("name"), sourceBytes)
			if name == "" {
				continue
			}
			fCtx.AddType(&core.TypeEntry{
				Name:          name,
				QualifiedName: fCtx.PackageName + "." + name,
				Kind:          typeKind(spec.ChildByFieldName("type")),
				Location:      extractLocation(spec, filePath),
				Node:          spec,
			})
		}
	}

	return fCtx, nil
}

// handleImports 同时处理单行导入与分组导入
func (c *Collector) handleImports(node *sitter.Node, fCtx *core.FileContext) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(uint(i))
		switch child.Kind() {
		case "import_spec":
			c.handleImportSpec(child, fCtx)
		case "import_spec_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if spec := child.NamedChild(uint(j)); spec.Kind() == "import_spec" {
					c.handleImportSpec(spec, fCtx)
				}
			}
		}
	}
}

func (c *Collector) handleImportSpec(spec *sitter.Node, fCtx *core.FileContext) {
	raw := getNodeContent(spec.ChildByFieldName("path"), fCtx.SourceBytes)
	importPath, err := strconv.Unquote(raw)
	if err != nil || importPath == "" {
		return
	}

	alias := defaultAlias(importPath)
	isWildcard := false
	if nameNode := spec.ChildByFieldName("name"); nameNode != nil {
		switch nameNode.Kind() {
		case "dot":
			// 点导入把包内名称并入当前文件，等价于通配符导入
			isWildcard = true
			alias = "."
		case "blank_identifier":
			alias = "_"
		default:
			alias = getNodeContent(nameNode, fCtx.SourceBytes)
		}
	}

	fCtx.AddImport(&core.ImportEntry{
		RawImportPath: importPath,
		Alias:         alias,
		IsWildcard:    isWildcard,
		Location:      extractLocation(spec, fCtx.FilePath),
	})
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// defaultAlias 推断未命名导入的包名：取最后一段，跳过 /vN 主版本后缀
func defaultAlias(importPath string) string {
	base := path.Base(importPath)
	if majorVersion.MatchString(base) {
		if dir := path.Dir(importPath); dir != "." {
			base = path.Base(dir)
		}
	}
	return base
}

// packagePath 计算文件所在包的导入路径。
// 有 module 路径时为 <module>/<相对目录>，否则退化为相对目录或 package 子句中的名称。
func packagePath(project *core.Project, filePath, pkgIdent string) string {
	if project == nil || project.RootDir == "" {
		return pkgIdent
	}
	rel, err := filepath.Rel(project.RootDir, filepath.Dir(filePath))
	if err != nil || strings.HasPrefix(rel, "..") {
		return pkgIdent
	}
	rel = filepath.ToSlash(rel)

	switch {
	case project.ModulePath == "" && rel == ".":
		return pkgIdent
	case project.ModulePath == "":
		return rel
	case rel == ".":
		return project.ModulePath
	default:
		return project.ModulePath + "/" + rel
	}
}

func typeKind(typeNode *sitter.Node) model.ElementKind {
	if typeNode == nil {
		return model.Unknown
	}
	switch typeNode.Kind() {
	case "struct_type":
		return model.Struct
	case "interface_type":
		return model.Interface
	default:
		return model.NamedType
	}
}

func extractLocation(n *sitter.Node, filePath string) *model.Location {
	if n == nil {
		return nil
	}
	return &model.Location{
		FilePath:    filePath,
		StartLine:   int(n.StartPosition().Row) + 1,
		EndLine:     int(n.EndPosition().Row) + 1,
		StartColumn: int(n.StartPosition().Column),
		EndColumn:   int(n.EndPosition().Column),
	}
}

func getNodeContent(n *sitter.Node, sourceBytes []byte) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(sourceBytes)
}
