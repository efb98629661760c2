package java

import (
	"strings"

	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Collector struct{}

func NewJavaCollector() *Collector {
	return &Collector{}
}

func (c *Collector) CollectDefinitions(rootNode *sitter.Node, filePath string, sourceBytes []byte, _ *core.Project) (*core.FileContext, error) {
	fCtx := core.NewFileContext(filePath, rootNode, sourceBytes)

	// 1. 处理顶级声明 (Package & Imports)
	c.processTopLevelDeclarations(fCtx)

	// 2. 递归收集类型定义 (含嵌套类型)
	for i := 0; i < int(rootNode.NamedChildCount()); i++ {
		c.collectTypes(rootNode.NamedChild(uint(i)), fCtx, fCtx.PackageName, "")
	}

	return fCtx, nil
}

func (c *Collector) processTopLevelDeclarations(fCtx *core.FileContext) {
	for i := 0; i < int(fCtx.RootNode.ChildCount()); i++ {
		child := fCtx.RootNode.Child(uint(i))
		if child == nil {
			continue
		}

		switch child.Kind() {
		case "package_declaration":
			for j := 0; j < int(child.ChildCount()); j++ {
				sub := child.Child(uint(j))
				if sub.Kind() == "scoped_identifier" || sub.Kind() == "identifier" {
					fCtx.PackageName = getNodeContent(sub, fCtx.SourceBytes)
					break
				}
			}
		case "import_declaration":
			c.handleImport(child, fCtx)
		}
	}
}

func (c *Collector) handleImport(node *sitter.Node, fCtx *core.FileContext) {
	isStatic := false
	var pathParts []string

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		kind := child.Kind()

		if kind == "static" {
			isStatic = true
			continue
		}

		if kind == "scoped_identifier" || kind == "identifier" || kind == "asterisk" {
			pathParts = append(pathParts, getNodeContent(child, fCtx.SourceBytes))
		}
	}

	if len(pathParts) == 0 {
		return
	}

	fullPath := strings.Join(pathParts, ".")
	isWildcard := strings.HasSuffix(fullPath, ".*")

	entry := &core.ImportEntry{
		RawImportPath: fullPath,
		IsWildcard:    isWildcard,
		IsStatic:      isStatic,
		Location:      extractLocation(node, fCtx.FilePath),
	}
	if isWildcard {
		entry.Alias = "*"
	} else {
		entry.Alias = core.SimpleName(fullPath)
	}
	fCtx.AddImport(entry)
}

// collectTypes 登记类型声明，并进入其类体收集嵌套类型。方法体中的局部类不登记。
func (c *Collector) collectTypes(node *sitter.Node, fCtx *core.FileContext, parentQN, parentLocal string) {
	kind, ok := typeKinds[node.Kind()]
	if !ok {
		return
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := getNodeContent(nameNode, fCtx.SourceBytes)

	qn := name
	if parentQN != "" {
		qn = parentQN + "." + name
	}
	local := name
	if parentLocal != "" {
		local = parentLocal + "." + name
	}

	entry := &core.TypeEntry{
		Name:          local,
		QualifiedName: qn,
		Kind:          kind,
		Location:      extractLocation(node, fCtx.FilePath),
		Node:          node,
	}
	if local != name {
		fCtx.AddType(entry, name)
	} else {
		fCtx.AddType(entry)
	}

	for _, member := range bodyMembers(node) {
		c.collectTypes(member, fCtx, qn, local)
	}
}

var typeKinds = map[string]model.ElementKind{
	"class_declaration":           model.Class,
	"interface_declaration":       model.Interface,
	"enum_declaration":            model.Enum,
	"record_declaration":          model.Record,
	"annotation_type_declaration": model.Annotation,
}

// bodyMembers 返回类型声明类体中的成员节点；枚举的成员位于 enum_body_declarations 中
func bodyMembers(typeNode *sitter.Node) []*sitter.Node {
	body := typeNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var members []*sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(uint(i))
		if child.Kind() == "enum_body_declarations" {
			for j := 0; j < int(child.NamedChildCount()); j++ {
				members = append(members, child.NamedChild(uint(j)))
			}
			continue
		}
		members = append(members, child)
	}
	return members
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

func extractModifiers(n *sitter.Node, sourceBytes []byte) []string {
	var mods []string
	var mNode *sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(uint(i)).Kind() == "modifiers" {
			mNode = n.Child(uint(i))
			break
		}
	}
	if mNode == nil {
		return nil
	}
	for i := 0; i < int(mNode.ChildCount()); i++ {
		child := mNode.Child(uint(i))
		if child.Kind() == "marker_annotation" || child.Kind() == "annotation" {
			continue
		}
		if txt := getNodeContent(child, sourceBytes); txt != "" {
			mods = append(mods, txt)
		}
	}
	return mods
}
