package java

import (
	"log/slog"
	"strings"

	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Extractor struct{}

func NewJavaExtractor() *Extractor {
	return &Extractor{}
}

// Extract 为文件中声明的每个类型生成一份 ClassFacts，顺序与源码一致
func (e *Extractor) Extract(fc *core.FileContext, gc *core.GlobalContext) ([]*model.ClassFacts, error) {
	imports := make([]string, 0, len(fc.Imports))
	for _, imp := range fc.Imports {
		if !imp.IsStatic {
			imports = append(imports, imp.RawImportPath)
		}
	}

	results := make([]*model.ClassFacts, 0, len(fc.Types))
	for _, entry := range fc.Types {
		if gc.Shadowed(entry) {
			slog.Warn("duplicate type declaration skipped", "class", entry.QualifiedName, "file", fc.FilePath)
			continue
		}
		facts := &model.ClassFacts{
			ClassName:   entry.QualifiedName,
			PackageName: fc.PackageName,
			Kind:        entry.Kind,
			Location:    entry.Location,
			Imports:     imports,
		}
		v := &classVisitor{fc: fc, gc: gc, facts: facts, fields: make(map[string]string)}
		v.visit(entry.Node)
		results = append(results, facts)
	}
	return results, nil
}

// classVisitor 提取单个类型的事实，不进入嵌套类型
type classVisitor struct {
	fc     *core.FileContext
	gc     *core.GlobalContext
	facts  *model.ClassFacts
	fields map[string]string // 属性名 -> 源码类型
}

// callScope 构造函数或方法体内的可见变量
type callScope struct {
	callable *model.CallableFact
	vars     map[string]string
}

func (v *classVisitor) visit(typeNode *sitter.Node) {
	src := v.fc.SourceBytes
	members := bodyMembers(typeNode)

	// 1. record 组件视为 private final 属性
	if typeNode.Kind() == "record_declaration" {
		if params := typeNode.ChildByFieldName("parameters"); params != nil {
			for _, p := range v.parameters(params) {
				v.addAttribute(model.AttributeFact{
					Name: p.Name, Type: p.Type, QualifiedType: p.QualifiedType,
					Modifiers: []string{"private", "final"},
				})
			}
		}
	}

	// 2. 先收集全部属性，保证方法体中能解析后声明的属性
	for _, m := range members {
		if m.Kind() != "field_declaration" && m.Kind() != "constant_declaration" {
			continue
		}
		typ := getNodeContent(m.ChildByFieldName("type"), src)
		mods := extractModifiers(m, src)
		for i := 0; i < int(m.NamedChildCount()); i++ {
			decl := m.NamedChild(uint(i))
			if decl.Kind() != "variable_declarator" {
				continue
			}
			qn, _ := v.resolve(typ)
			v.addAttribute(model.AttributeFact{
				Name:          getNodeContent(decl.ChildByFieldName("name"), src),
				Type:          typ,
				QualifiedType: qn,
				Value:         getNodeContent(decl.ChildByFieldName("value"), src),
				Modifiers:     mods,
			})
		}
	}

	// 3. 构造函数、方法与初始化块
	for _, m := range members {
		switch m.Kind() {
		case "field_declaration", "constant_declaration":
			for i := 0; i < int(m.NamedChildCount()); i++ {
				decl := m.NamedChild(uint(i))
				if decl.Kind() == "variable_declarator" {
					v.walk(decl.ChildByFieldName("value"), &callScope{vars: map[string]string{}})
				}
			}
		case "constructor_declaration", "compact_constructor_declaration":
			v.facts.Constructors = append(v.facts.Constructors, v.callable(m, ""))
			idx := len(v.facts.Constructors) - 1
			v.walkCallable(m, &v.facts.Constructors[idx])
		case "method_declaration":
			v.facts.Methods = append(v.facts.Methods, v.callable(m, getNodeContent(m.ChildByFieldName("type"), src)))
			idx := len(v.facts.Methods) - 1
			v.walkCallable(m, &v.facts.Methods[idx])
		case "static_initializer", "block":
			v.walk(m, &callScope{vars: map[string]string{}})
		case "enum_constant":
			v.walk(m.ChildByFieldName("arguments"), &callScope{vars: map[string]string{}})
		}
	}
}

func (v *classVisitor) addAttribute(a model.AttributeFact) {
	v.facts.Attributes = append(v.facts.Attributes, a)
	v.fields[a.Name] = a.Type
}

func (v *classVisitor) callable(node *sitter.Node, returnType string) model.CallableFact {
	src := v.fc.SourceBytes
	fact := model.CallableFact{
		Name:       getNodeContent(node.ChildByFieldName("name"), src),
		ReturnType: returnType,
		Modifiers:  extractModifiers(node, src),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fact.Parameters = v.parameters(params)
	}
	return fact
}

func (v *classVisitor) walkCallable(node *sitter.Node, fact *model.CallableFact) {
	scope := &callScope{callable: fact, vars: make(map[string]string)}
	for _, p := range fact.Parameters {
		scope.vars[p.Name] = p.Type
	}
	v.walk(node.ChildByFieldName("body"), scope)
}

func (v *classVisitor) parameters(params *sitter.Node) []model.VariableFact {
	src := v.fc.SourceBytes
	var out []model.VariableFact
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(uint(i))
		var name, typ string
		switch p.Kind() {
		case "formal_parameter":
			name = getNodeContent(p.ChildByFieldName("name"), src)
			typ = getNodeContent(p.ChildByFieldName("type"), src)
		case "spread_parameter":
			for j := 0; j < int(p.NamedChildCount()); j++ {
				child := p.NamedChild(uint(j))
				switch child.Kind() {
				case "variable_declarator":
					name = getNodeContent(child.ChildByFieldName("name"), src)
				case "modifiers":
				default:
					if typ == "" {
						typ = getNodeContent(child, src) + "..."
					}
				}
			}
		default:
			continue
		}
		qn, _ := v.resolve(typ)
		out = append(out, model.VariableFact{Name: name, Type: typ, QualifiedType: qn})
	}
	return out
}

// walk 遍历语句与表达式，收集局部变量与调用点。嵌套类型声明由其自身的 visitor 处理。
func (v *classVisitor) walk(node *sitter.Node, scope *callScope) {
	if node == nil {
		return
	}
	if _, isType := typeKinds[node.Kind()]; isType {
		return
	}

	switch node.Kind() {
	case "local_variable_declaration":
		typ := getNodeContent(node.ChildByFieldName("type"), v.fc.SourceBytes)
		for i := 0; i < int(node.NamedChildCount()); i++ {
			decl := node.NamedChild(uint(i))
			if decl.Kind() == "variable_declarator" {
				v.addLocal(scope, getNodeContent(decl.ChildByFieldName("name"), v.fc.SourceBytes), v.declaredType(typ, decl))
			}
		}
	case "enhanced_for_statement":
		v.addLocal(scope,
			getNodeContent(node.ChildByFieldName("name"), v.fc.SourceBytes),
			getNodeContent(node.ChildByFieldName("type"), v.fc.SourceBytes))
	case "object_creation_expression":
		v.constructorCall(node)
	case "method_invocation":
		v.methodCall(node, scope)
	case "field_access":
		v.fieldAccess(node, scope)
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		v.walk(node.NamedChild(uint(i)), scope)
	}
}

// declaredType 推断 var 声明的类型，只识别 new T(...) 初始化
func (v *classVisitor) declaredType(typ string, decl *sitter.Node) string {
	if typ != "var" {
		return typ
	}
	if value := decl.ChildByFieldName("value"); value != nil && value.Kind() == "object_creation_expression" {
		return getNodeContent(value.ChildByFieldName("type"), v.fc.SourceBytes)
	}
	return typ
}

func (v *classVisitor) addLocal(scope *callScope, name, typ string) {
	if name == "" {
		return
	}
	scope.vars[name] = typ
	if scope.callable != nil {
		qn, _ := v.resolve(typ)
		scope.callable.LocalVariables = append(scope.callable.LocalVariables, model.VariableFact{Name: name, Type: typ, QualifiedType: qn})
	}
}

func (v *classVisitor) constructorCall(node *sitter.Node) {
	typ := getNodeContent(node.ChildByFieldName("type"), v.fc.SourceBytes)
	args := v.arguments(node.ChildByFieldName("arguments"))
	if qn, _ := v.resolve(typ); qn != "" {
		v.facts.ConstructorCalls = append(v.facts.ConstructorCalls, model.ConstructorCallFact{ClassName: qn, Arguments: args})
		return
	}
	v.facts.ExternalConstructors = append(v.facts.ExternalConstructors, normalizeTypeName(typ))
}

func (v *classVisitor) methodCall(node *sitter.Node, scope *callScope) {
	object := node.ChildByFieldName("object")
	if object == nil || object.Kind() == "this" || object.Kind() == "super" {
		// 本类或继承的方法
		return
	}
	name := getNodeContent(node.ChildByFieldName("name"), v.fc.SourceBytes)
	args := v.arguments(node.ChildByFieldName("arguments"))

	if qn, display := v.receiverType(object, scope); qn != "" {
		v.facts.MethodCalls = append(v.facts.MethodCalls, model.MethodCallFact{CalleeName: qn, MethodName: name, Arguments: args})
	} else {
		v.facts.ExternalMethods = append(v.facts.ExternalMethods, display+"."+name)
	}
}

// fieldAccess 只记录以未知标识符开头的访问 (如 System.out)
func (v *classVisitor) fieldAccess(node *sitter.Node, scope *callScope) {
	object := node.ChildByFieldName("object")
	if object == nil || object.Kind() != "identifier" {
		return
	}
	name := getNodeContent(object, v.fc.SourceBytes)
	if _, ok := v.variableType(name, scope); ok {
		return
	}
	if _, internal := v.resolve(name); internal {
		return
	}
	v.facts.ExternalAttributes = append(v.facts.ExternalAttributes, getNodeContent(node, v.fc.SourceBytes))
}

// receiverType 推断方法调用接收者的全限定类型；无法推断时返回用于展示的名称
func (v *classVisitor) receiverType(object *sitter.Node, scope *callScope) (qn string, display string) {
	src := v.fc.SourceBytes
	text := getNodeContent(object, src)

	switch object.Kind() {
	case "identifier":
		if typ, ok := v.variableType(text, scope); ok {
			qn, _ := v.resolve(typ)
			if qn == "" {
				return "", normalizeTypeName(typ)
			}
			return qn, ""
		}
		// 静态调用：标识符本身是类型名
		if qn, _ := v.resolve(text); qn != "" {
			return qn, ""
		}
	case "field_access":
		if inner := object.ChildByFieldName("object"); inner != nil && inner.Kind() == "this" {
			field := getNodeContent(object.ChildByFieldName("field"), src)
			if typ, ok := v.fields[field]; ok {
				if qn, _ := v.resolve(typ); qn != "" {
					return qn, ""
				}
				return "", normalizeTypeName(typ)
			}
		}
		// 全限定的静态调用，如 com.example.Util.run()
		if qn, internal := v.resolve(text); internal {
			return qn, ""
		}
	case "object_creation_expression":
		typ := getNodeContent(object.ChildByFieldName("type"), src)
		if qn, _ := v.resolve(typ); qn != "" {
			return qn, ""
		}
		return "", normalizeTypeName(typ)
	case "method_invocation":
		return v.returnType(object, scope)
	}
	return "", text
}

// returnType 由被调方法的声明推断链式调用的类型，如 x.next().foo() 中的 x.next()
func (v *classVisitor) returnType(call *sitter.Node, scope *callScope) (qn string, display string) {
	src := v.fc.SourceBytes
	name := getNodeContent(call.ChildByFieldName("name"), src)

	var owner, ownerDisplay string
	switch inner := call.ChildByFieldName("object"); {
	case inner == nil || inner.Kind() == "this":
		owner = v.facts.ClassName
	case inner.Kind() == "super":
		return "", "super." + name + "()"
	default:
		owner, ownerDisplay = v.receiverType(inner, scope)
	}
	if owner == "" {
		return "", ownerDisplay + "." + name + "()"
	}

	entry, fc, ok := v.gc.Declaration(owner)
	if !ok || fc == nil {
		return "", simpleName(owner) + "." + name + "()"
	}
	for _, member := range bodyMembers(entry.Node) {
		if member.Kind() != "method_declaration" || getNodeContent(member.ChildByFieldName("name"), fc.SourceBytes) != name {
			continue
		}
		ret := getNodeContent(member.ChildByFieldName("type"), fc.SourceBytes)
		if ret == "" || ret == "void" {
			break
		}
		if retQN, _ := v.gc.ResolveType(fc, ret); retQN != "" {
			return retQN, ""
		}
		return "", normalizeTypeName(ret)
	}
	return "", simpleName(owner) + "." + name + "()"
}

func simpleName(qn string) string {
	return qn[strings.LastIndex(qn, ".")+1:]
}

func (v *classVisitor) variableType(name string, scope *callScope) (string, bool) {
	if scope != nil {
		if typ, ok := scope.vars[name]; ok {
			return typ, true
		}
	}
	typ, ok := v.fields[name]
	return typ, ok
}

func (v *classVisitor) resolve(typ string) (string, bool) {
	if typ == "" {
		return "", false
	}
	return v.gc.ResolveType(v.fc, typ)
}

func (v *classVisitor) arguments(argList *sitter.Node) []string {
	if argList == nil {
		return nil
	}
	var args []string
	for i := 0; i < int(argList.NamedChildCount()); i++ {
		args = append(args, getNodeContent(argList.NamedChild(uint(i)), v.fc.SourceBytes))
	}
	return args
}
