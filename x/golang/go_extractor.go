package golang

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Extractor 以具名类型为类：结构体字段为属性，接收者方法为方法，NewT 函数为构造函数。
// 方法可以声明在同一个包的任何文件中。
type Extractor struct{}

func NewGoExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(fc *core.FileContext, gc *core.GlobalContext) ([]*model.ClassFacts, error) {
	imports := make([]string, 0, len(fc.Imports))
	for _, imp := range fc.Imports {
		imports = append(imports, imp.RawImportPath+".*")
	}

	var siblings []*core.FileContext
	for _, other := range gc.SortedFiles() {
		if other.PackageName == fc.PackageName {
			siblings = append(siblings, other)
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
		v := &typeVisitor{gc: gc, fc: fc, entry: entry, facts: facts, fields: make(map[string]binding)}
		v.visitType()
		for _, file := range siblings {
			v.visitFuncs(file)
		}
		results = append(results, facts)
	}
	return results, nil
}

// binding 变量的源码类型及其全限定名
type binding struct {
	typ string
	qn  string
}

type typeVisitor struct {
	gc     *core.GlobalContext
	fc     *core.FileContext // 当前遍历的文件
	entry  *core.TypeEntry
	facts  *model.ClassFacts
	fields map[string]binding
}

type callScope struct {
	callable *model.CallableFact
	receiver string
	vars     map[string]binding
}

func (v *typeVisitor) visitType() {
	typeNode := v.entry.Node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	src := v.fc.SourceBytes

	switch typeNode.Kind() {
	case "struct_type":
		list := firstNamedChild(typeNode, "field_declaration_list")
		if list == nil {
			return
		}
		for i := 0; i < int(list.NamedChildCount()); i++ {
			decl := list.NamedChild(uint(i))
			if decl.Kind() != "field_declaration" {
				continue
			}
			typ := getNodeContent(decl.ChildByFieldName("type"), src)
			names := identifiers(decl, "field_identifier", src)
			if len(names) == 0 {
				// 嵌入字段以类型名作为字段名
				names = []string{core.SimpleName(normalizeTypeName(typ))}
			}
			for _, name := range names {
				b := v.bind(typ)
				v.fields[name] = b
				v.facts.Attributes = append(v.facts.Attributes, model.AttributeFact{
					Name:          name,
					Type:          typ,
					QualifiedType: b.qn,
					Modifiers:     visibility(name),
				})
			}
		}
	case "interface_type":
		for i := 0; i < int(typeNode.NamedChildCount()); i++ {
			elem := typeNode.NamedChild(uint(i))
			if elem.Kind() != "method_elem" && elem.Kind() != "method_spec" {
				continue
			}
			v.facts.Methods = append(v.facts.Methods, v.callable(elem))
		}
	}
}

// visitFuncs 在一个文件中查找属于当前类型的方法与构造函数
func (v *typeVisitor) visitFuncs(file *core.FileContext) {
	v.fc = file
	root := file.RootNode
	for i := 0; i < int(root.NamedChildCount()); i++ {
		decl := root.NamedChild(uint(i))
		switch decl.Kind() {
		case "method_declaration":
			recvName, recvType := v.receiver(decl.ChildByFieldName("receiver"))
			if recvType != v.entry.Name {
				continue
			}
			v.facts.Methods = append(v.facts.Methods, v.callable(decl))
			fact := &v.facts.Methods[len(v.facts.Methods)-1]
			scope := v.newScope(fact)
			if recvName != "" {
				scope.receiver = recvName
				scope.vars[recvName] = binding{typ: v.entry.Name, qn: v.entry.QualifiedName}
			}
			v.walk(decl.ChildByFieldName("body"), scope)
		case "function_declaration":
			if v.constructs(decl) != v.entry.Name {
				continue
			}
			v.facts.Constructors = append(v.facts.Constructors, v.callable(decl))
			fact := &v.facts.Constructors[len(v.facts.Constructors)-1]
			v.walk(decl.ChildByFieldName("body"), v.newScope(fact))
		}
	}
	v.fc = nil
}

func (v *typeVisitor) newScope(fact *model.CallableFact) *callScope {
	scope := &callScope{callable: fact, vars: make(map[string]binding)}
	for _, p := range fact.Parameters {
		if p.Name != "" {
			scope.vars[p.Name] = binding{typ: p.Type, qn: p.QualifiedType}
		}
	}
	return scope
}

// receiver 返回接收者变量名与去掉指针和类型参数后的类型名
func (v *typeVisitor) receiver(params *sitter.Node) (string, string) {
	if params == nil {
		return "", ""
	}
	decl := firstNamedChild(params, "parameter_declaration")
	if decl == nil {
		return "", ""
	}
	var name string
	if names := identifiers(decl, "identifier", v.fc.SourceBytes); len(names) > 0 {
		name = names[0]
	}
	return name, normalizeTypeName(getNodeContent(decl.ChildByFieldName("type"), v.fc.SourceBytes))
}

// constructs 判断函数是否为 NewT 形式的构造函数，返回 T；首个返回值必须是 T 或 *T
func (v *typeVisitor) constructs(fn *sitter.Node) string {
	name := getNodeContent(fn.ChildByFieldName("name"), v.fc.SourceBytes)
	if !strings.HasPrefix(name, "New") {
		return ""
	}
	result := fn.ChildByFieldName("result")
	if result == nil {
		return ""
	}
	if result.Kind() == "parameter_list" {
		first := firstNamedChild(result, "parameter_declaration")
		if first == nil {
			return ""
		}
		result = first.ChildByFieldName("type")
	}
	typ := normalizeTypeName(getNodeContent(result, v.fc.SourceBytes))
	if strings.Contains(typ, ".") {
		return ""
	}
	return typ
}

func (v *typeVisitor) callable(node *sitter.Node) model.CallableFact {
	src := v.fc.SourceBytes
	name := getNodeContent(node.ChildByFieldName("name"), src)
	fact := model.CallableFact{
		Name:       name,
		ReturnType: getNodeContent(node.ChildByFieldName("result"), src),
		Modifiers:  visibility(name),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fact.Parameters = v.parameters(params)
	}
	return fact
}

func (v *typeVisitor) parameters(params *sitter.Node) []model.VariableFact {
	src := v.fc.SourceBytes
	var out []model.VariableFact
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(uint(i))
		var typ string
		switch p.Kind() {
		case "parameter_declaration":
			typ = getNodeContent(p.ChildByFieldName("type"), src)
		case "variadic_parameter_declaration":
			typ = "..." + getNodeContent(p.ChildByFieldName("type"), src)
		default:
			continue
		}
		b := v.bind(typ)
		names := identifiers(p, "identifier", src)
		if len(names) == 0 {
			names = []string{""}
		}
		for _, name := range names {
			out = append(out, model.VariableFact{Name: name, Type: typ, QualifiedType: b.qn})
		}
	}
	return out
}

// walk 遍历函数体，收集局部变量与调用点
func (v *typeVisitor) walk(node *sitter.Node, scope *callScope) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "short_var_declaration":
		v.declareAll(node.ChildByFieldName("left"), node.ChildByFieldName("right"), scope)
	case "var_spec":
		typ := getNodeContent(node.ChildByFieldName("type"), v.fc.SourceBytes)
		var names []*sitter.Node
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if child := node.NamedChild(uint(i)); child.Kind() == "identifier" {
				names = append(names, child)
			}
		}
		values := node.ChildByFieldName("value")
		for i, name := range names {
			b := v.bind(typ)
			if typ == "" {
				b = v.inferAt(values, i, len(names), scope)
			}
			v.declare(getNodeContent(name, v.fc.SourceBytes), b, scope)
		}
	case "range_clause":
		v.rangeVars(node, scope)
	case "composite_literal":
		v.compositeLiteral(node)
	case "call_expression":
		v.call(node, scope)
		fn := node.ChildByFieldName("function")
		if fn != nil && fn.Kind() == "selector_expression" {
			v.walk(fn.ChildByFieldName("operand"), scope)
		} else {
			v.walk(fn, scope)
		}
		v.walk(node.ChildByFieldName("arguments"), scope)
		return
	case "selector_expression":
		v.packageVariable(node, scope)
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		v.walk(node.NamedChild(uint(i)), scope)
	}
}

// declareAll 处理 a, b := x, y 与 a, err := f() 两种形式
func (v *typeVisitor) declareAll(left, right *sitter.Node, scope *callScope) {
	if left == nil {
		return
	}
	count := int(left.NamedChildCount())
	for i := 0; i < count; i++ {
		name := left.NamedChild(uint(i))
		if name.Kind() != "identifier" {
			continue
		}
		v.declare(getNodeContent(name, v.fc.SourceBytes), v.inferAt(right, i, count, scope), scope)
	}
}

// inferAt 推断第 i 个左值的类型；右侧只有一个多返回值调用时只推断第一个左值
func (v *typeVisitor) inferAt(values *sitter.Node, i, count int, scope *callScope) binding {
	if values == nil {
		return binding{}
	}
	n := int(values.NamedChildCount())
	switch {
	case n == count:
		return v.infer(values.NamedChild(uint(i)), scope)
	case n == 1 && i == 0:
		return v.infer(values.NamedChild(0), scope)
	}
	return binding{}
}

func (v *typeVisitor) declare(name string, b binding, scope *callScope) {
	if name == "" || name == "_" {
		return
	}
	if b.typ == "" {
		delete(scope.vars, name)
		return
	}
	scope.vars[name] = b
	if scope.callable != nil {
		scope.callable.LocalVariables = append(scope.callable.LocalVariables,
			model.VariableFact{Name: name, Type: b.typ, QualifiedType: b.qn})
	}
}

// rangeVars 遍历切片、数组、map 或可变参数时，值变量取元素类型
func (v *typeVisitor) rangeVars(node *sitter.Node, scope *callScope) {
	left := node.ChildByFieldName("left")
	if left == nil || left.NamedChildCount() < 2 {
		return
	}
	collection := v.infer(node.ChildByFieldName("right"), scope)
	elem := strings.TrimSpace(collection.typ)
	if rest, ok := strings.CutPrefix(elem, "..."); ok {
		elem = "[]" + rest
	}
	if !strings.HasPrefix(elem, "[") && !strings.HasPrefix(elem, "map[") {
		return
	}
	end := closingBracket(elem, strings.Index(elem, "["))
	if end < 0 {
		return
	}
	elem = elem[end+1:]
	value := left.NamedChild(1)
	if value.Kind() == "identifier" {
		v.declare(getNodeContent(value, v.fc.SourceBytes), v.bind(elem), scope)
	}
}

// infer 推断表达式的静态类型，只覆盖字面量、取址、构造函数调用、变量与接收者字段
func (v *typeVisitor) infer(expr *sitter.Node, scope *callScope) binding {
	if expr == nil {
		return binding{}
	}
	src := v.fc.SourceBytes

	switch expr.Kind() {
	case "composite_literal":
		return v.bind(getNodeContent(expr.ChildByFieldName("type"), src))
	case "unary_expression":
		if op := expr.ChildByFieldName("operator"); op != nil && getNodeContent(op, src) == "&" {
			return v.infer(expr.ChildByFieldName("operand"), scope)
		}
	case "parenthesized_expression":
		if expr.NamedChildCount() > 0 {
			return v.infer(expr.NamedChild(0), scope)
		}
	case "identifier":
		return scope.vars[getNodeContent(expr, src)]
	case "selector_expression":
		return v.fieldOf(expr, scope)
	case "call_expression":
		fn := expr.ChildByFieldName("function")
		if fn == nil {
			break
		}
		switch fn.Kind() {
		case "identifier":
			if t, ok := strings.CutPrefix(getNodeContent(fn, src), "New"); ok && t != "" {
				if b := v.bind(t); b.qn != "" {
					return b
				}
			}
		case "selector_expression":
			operand := fn.ChildByFieldName("operand")
			name := getNodeContent(fn.ChildByFieldName("field"), src)
			if t, ok := strings.CutPrefix(name, "New"); ok && t != "" && v.importAlias(operand, scope) != nil {
				return v.bind(getNodeContent(operand, src) + "." + t)
			}
		}
	}
	return binding{}
}

// fieldOf 推断 x.f 的类型：x 为接收者时查字段表
func (v *typeVisitor) fieldOf(sel *sitter.Node, scope *callScope) binding {
	operand := sel.ChildByFieldName("operand")
	if operand == nil || operand.Kind() != "identifier" {
		return binding{}
	}
	if getNodeContent(operand, v.fc.SourceBytes) != scope.receiver || scope.receiver == "" {
		return binding{}
	}
	return v.fields[getNodeContent(sel.ChildByFieldName("field"), v.fc.SourceBytes)]
}

// importAlias 标识符未被局部变量遮蔽且是导入别名时返回对应导入
func (v *typeVisitor) importAlias(node *sitter.Node, scope *callScope) *core.ImportEntry {
	if node == nil || node.Kind() != "identifier" {
		return nil
	}
	name := getNodeContent(node, v.fc.SourceBytes)
	if _, shadowed := scope.vars[name]; shadowed {
		return nil
	}
	return v.fc.ImportsBySN[name]
}

func (v *typeVisitor) compositeLiteral(node *sitter.Node) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	switch typeNode.Kind() {
	case "type_identifier", "qualified_type", "generic_type":
	default:
		return
	}
	typ := getNodeContent(typeNode, v.fc.SourceBytes)
	qn, _ := v.gc.ResolveType(v.fc, typ)
	switch {
	case qn == v.entry.QualifiedName:
		// 构造函数中的自身字面量
	case qn != "":
		v.facts.ConstructorCalls = append(v.facts.ConstructorCalls, model.ConstructorCallFact{ClassName: qn})
	default:
		v.facts.ExternalConstructors = append(v.facts.ExternalConstructors, normalizeTypeName(typ))
	}
}

func (v *typeVisitor) call(node *sitter.Node, scope *callScope) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	src := v.fc.SourceBytes
	args := v.arguments(node.ChildByFieldName("arguments"))

	switch fn.Kind() {
	case "identifier":
		// 同包函数：只有 NewT 构造其他类型时才计入
		t, ok := strings.CutPrefix(getNodeContent(fn, src), "New")
		if !ok || t == "" || t == v.entry.Name {
			return
		}
		if qn := v.gc.BuildQualifiedName(v.fc.PackageName, t); v.gc.HasType(qn) {
			v.facts.ConstructorCalls = append(v.facts.ConstructorCalls, model.ConstructorCallFact{ClassName: qn, Arguments: args})
		}
	case "selector_expression":
		operand := fn.ChildByFieldName("operand")
		name := getNodeContent(fn.ChildByFieldName("field"), src)

		if imp := v.importAlias(operand, scope); imp != nil {
			v.packageCall(imp, getNodeContent(operand, src), name, args)
			return
		}
		if operand.Kind() == "identifier" && getNodeContent(operand, src) == scope.receiver {
			// 本类型的方法
			return
		}
		b := v.infer(operand, scope)
		switch {
		case b.qn != "":
			v.facts.MethodCalls = append(v.facts.MethodCalls, model.MethodCallFact{CalleeName: b.qn, MethodName: name, Arguments: args})
		case b.typ != "":
			v.facts.ExternalMethods = append(v.facts.ExternalMethods, normalizeTypeName(b.typ)+"."+name)
		}
	}
}

// packageCall 处理 pkg.F(...)：项目内的 pkg.NewT 视为构造调用，项目外的包函数视为外部方法
func (v *typeVisitor) packageCall(imp *core.ImportEntry, alias, name string, args []string) {
	if t, ok := strings.CutPrefix(name, "New"); ok && t != "" {
		if qn := v.gc.BuildQualifiedName(imp.RawImportPath, t); v.gc.HasType(qn) {
			v.facts.ConstructorCalls = append(v.facts.ConstructorCalls, model.ConstructorCallFact{ClassName: qn, Arguments: args})
			return
		}
	}
	if !v.gc.HasPackage(imp.RawImportPath) {
		v.facts.ExternalMethods = append(v.facts.ExternalMethods, alias+"."+name)
	}
}

// packageVariable 记录对项目外包级变量或常量的访问，如 os.Args
func (v *typeVisitor) packageVariable(node *sitter.Node, scope *callScope) {
	imp := v.importAlias(node.ChildByFieldName("operand"), scope)
	if imp == nil || v.gc.HasPackage(imp.RawImportPath) {
		return
	}
	v.facts.ExternalAttributes = append(v.facts.ExternalAttributes, getNodeContent(node, v.fc.SourceBytes))
}

func (v *typeVisitor) bind(typ string) binding {
	if typ == "" {
		return binding{}
	}
	qn, _ := v.gc.ResolveType(v.fc, typ)
	return binding{typ: typ, qn: qn}
}

func (v *typeVisitor) arguments(argList *sitter.Node) []string {
	if argList == nil {
		return nil
	}
	var args []string
	for i := 0; i < int(argList.NamedChildCount()); i++ {
		args = append(args, getNodeContent(argList.NamedChild(uint(i)), v.fc.SourceBytes))
	}
	return args
}

func firstNamedChild(n *sitter.Node, kind string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(uint(i)); child.Kind() == kind {
			return child
		}
	}
	return nil
}

func identifiers(n *sitter.Node, kind string, src []byte) []string {
	var names []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(uint(i)); child.Kind() == kind {
			names = append(names, getNodeContent(child, src))
		}
	}
	return names
}

// visibility 导出名为 public，其余为 private
func visibility(name string) []string {
	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return []string{"public"}
	}
	return []string{"private"}
}
