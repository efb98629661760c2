// Package transformer 将事实源提供的 ClassFacts 写入依赖图。
//
// 每个类依次经过：包声明、成员声明、包导入、属性调用、构造/方法调用、外部调用。
// 目标不在 Universe 内的调用一律归为外部调用，只写入调用方一侧。
package transformer

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"github.com/CodMac/go-treesitter-coupling-analyzer/graph"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/CodMac/go-treesitter-coupling-analyzer/noisefilter"
)

type Transformer struct {
	filter noisefilter.NoiseFilter
	logger *slog.Logger
}

func New(filter noisefilter.NoiseFilter, logger *slog.Logger) *Transformer {
	if filter == nil {
		filter = &noisefilter.DefaultNoiseFilter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{filter: filter, logger: logger}
}

// Transform 以 facts 中的类名构建 Universe 并生成依赖图
func (t *Transformer) Transform(facts []*model.ClassFacts) *graph.ProjectGraph {
	names := make([]string, 0, len(facts))
	for _, f := range facts {
		if f != nil && f.ClassName != "" {
			names = append(names, f.ClassName)
		}
	}
	return t.TransformWithUniverse(facts, core.NewUniverse(names))
}

// TransformWithUniverse 使用给定的 Universe 生成依赖图。facts 按类名排序后依次处理。
func (t *Transformer) TransformWithUniverse(facts []*model.ClassFacts, universe *core.Universe) *graph.ProjectGraph {
	ordered := make([]*model.ClassFacts, 0, len(facts))
	for _, f := range facts {
		if f == nil || strings.TrimSpace(f.ClassName) == "" {
			t.logger.Warn("dropping class facts without a class name")
			continue
		}
		ordered = append(ordered, f)
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ClassName < ordered[j].ClassName })

	g := graph.New()
	for _, f := range ordered {
		t.transformClass(g, universe, f)
	}
	return g
}

func (t *Transformer) transformClass(g *graph.ProjectGraph, u *core.Universe, f *model.ClassFacts) {
	class := f.ClassName
	g.GetOrInsert(class)
	if f.Kind != "" || f.Location != nil {
		g.Describe(class, f.Kind, f.Location)
	}

	// 1. 包声明
	pkg := f.PackageName
	if pkg == "" {
		pkg = model.DefaultPackage
	}
	g.AddDeclaration(class, model.PackageDeclaration{Name: pkg})

	// 2. 成员声明
	t.addDeclarations(g, f)

	// 3. 包导入
	t.addImports(g, u, f)

	// 4. 属性调用 (成员属性 + 局部变量)
	t.addAttributeInvocations(g, u, f)

	// 5. 构造函数与方法调用
	t.addConstructorInvocations(g, u, f)
	t.addMethodInvocations(g, u, f)

	// 6. 事实源已判定的外部调用
	t.addExternalInvocations(g, f)
}

func (t *Transformer) addDeclarations(g *graph.ProjectGraph, f *model.ClassFacts) {
	for _, a := range f.Attributes {
		if a.Name == "" {
			t.logger.Warn("dropping attribute without a name", "class", f.ClassName)
			continue
		}
		g.AddDeclaration(f.ClassName, model.AttributeDeclaration{
			Name:      a.Name,
			Type:      a.Type,
			Value:     a.Value,
			Modifiers: model.ParseModifiers(a.Modifiers),
		})
	}
	for _, c := range f.Constructors {
		if c.Name == "" {
			t.logger.Warn("dropping constructor without a name", "class", f.ClassName)
			continue
		}
		g.AddDeclaration(f.ClassName, model.ConstructorDeclaration{
			Name:       c.Name,
			Modifiers:  model.ParseModifiers(c.Modifiers),
			Parameters: parameters(c.Parameters),
		})
	}
	for _, m := range f.Methods {
		if m.Name == "" {
			t.logger.Warn("dropping method without a name", "class", f.ClassName)
			continue
		}
		g.AddDeclaration(f.ClassName, model.MethodDeclaration{
			Name:       m.Name,
			ReturnType: m.ReturnType,
			Modifiers:  model.ParseModifiers(m.Modifiers),
			Parameters: parameters(m.Parameters),
		})
	}
}

func parameters(vars []model.VariableFact) []model.ParameterDeclaration {
	params := make([]model.ParameterDeclaration, 0, len(vars))
	for _, v := range vars {
		params = append(params, model.ParameterDeclaration{Name: v.Name, Type: v.Type})
	}
	return params
}

func (t *Transformer) addImports(g *graph.ProjectGraph, u *core.Universe, f *model.ClassFacts) {
	for _, imp := range f.Imports {
		imp = strings.TrimSpace(imp)
		if imp == "" {
			t.logger.Warn("dropping empty import", "class", f.ClassName)
			continue
		}
		targets, internal := u.ResolveImport(imp)
		if !internal {
			g.AddExternalInvocation(f.ClassName, model.NewPackageInvocation(imp), model.PackageInvocation)
			continue
		}
		for _, target := range targets {
			g.AddInvocation(f.ClassName, target, model.NewPackageInvocation(target), model.PackageInvocation)
		}
	}
}

func (t *Transformer) addAttributeInvocations(g *graph.ProjectGraph, u *core.Universe, f *model.ClassFacts) {
	for _, a := range f.Attributes {
		if a.Name == "" {
			continue
		}
		if typ := a.EffectiveType(); u.Contains(typ) {
			g.AddInvocation(f.ClassName, typ, model.NewAttributeInvocation(a.Name), model.AttributeInvocation)
		}
	}
	for _, callables := range [][]model.CallableFact{f.Constructors, f.Methods} {
		for _, c := range callables {
			for _, v := range c.LocalVariables {
				if v.Name == "" {
					continue
				}
				if typ := v.EffectiveType(); u.Contains(typ) {
					g.AddInvocation(f.ClassName, typ, model.NewAttributeInvocation(v.Name), model.AttributeInvocation)
				}
			}
		}
	}
}

func (t *Transformer) addConstructorInvocations(g *graph.ProjectGraph, u *core.Universe, f *model.ClassFacts) {
	for _, call := range f.ConstructorCalls {
		if call.ClassName == "" {
			t.logger.Warn("dropping constructor call without a target", "class", f.ClassName)
			continue
		}
		if t.filter.IsNoise(call.ClassName) {
			continue
		}
		inv := model.NewConstructorInvocation(core.SimpleName(call.ClassName), call.Arguments)
		if u.Contains(call.ClassName) {
			g.AddInvocation(f.ClassName, call.ClassName, inv, model.ConstructorInvocation)
		} else {
			g.AddExternalInvocation(f.ClassName, inv, model.ConstructorInvocation)
		}
	}
}

func (t *Transformer) addMethodInvocations(g *graph.ProjectGraph, u *core.Universe, f *model.ClassFacts) {
	for _, call := range f.MethodCalls {
		if call.CalleeName == "" || call.MethodName == "" {
			t.logger.Warn("dropping malformed method call", "class", f.ClassName, "callee", call.CalleeName, "method", call.MethodName)
			continue
		}
		if t.filter.IsNoise(call.CalleeName) {
			continue
		}
		inv := model.NewMethodInvocation(core.SimpleName(call.MethodName), call.Arguments)
		if u.Contains(call.CalleeName) {
			g.AddInvocation(f.ClassName, call.CalleeName, inv, model.MethodInvocation)
		} else {
			g.AddExternalInvocation(f.ClassName, inv, model.MethodInvocation)
		}
	}
}

func (t *Transformer) addExternalInvocations(g *graph.ProjectGraph, f *model.ClassFacts) {
	placeholder := []string{model.ParameterPlaceholder}
	for _, name := range f.ExternalAttributes {
		if name != "" {
			g.AddExternalInvocation(f.ClassName, model.NewAttributeInvocation(name), model.AttributeInvocation)
		}
	}
	for _, name := range f.ExternalMethods {
		if name != "" {
			g.AddExternalInvocation(f.ClassName, model.NewMethodInvocation(name, placeholder), model.MethodInvocation)
		}
	}
	for _, name := range f.ExternalConstructors {
		if name != "" {
			g.AddExternalInvocation(f.ClassName, model.NewConstructorInvocation(name, placeholder), model.ConstructorInvocation)
		}
	}
}
