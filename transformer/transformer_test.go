package transformer_test

import (
	"testing"

	"github.com/CodMac/go-treesitter-coupling-analyzer/graph"
	"github.com/CodMac/go-treesitter-coupling-analyzer/metric"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/CodMac/go-treesitter-coupling-analyzer/noisefilter"
	"github.com/CodMac/go-treesitter-coupling-analyzer/transformer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransformer() *transformer.Transformer {
	return transformer.New(noisefilter.NewPrefixFilter("java"), nil)
}

func TestTransform_EndToEndScenario(t *testing.T) {
	facts := []*model.ClassFacts{
		{
			ClassName: "B",
			Methods:   []model.CallableFact{{Name: "foo", ReturnType: "void"}},
		},
		{
			ClassName:  "A",
			Attributes: []model.AttributeFact{{Name: "b", Type: "B", Modifiers: []string{"private"}}},
			Methods: []model.CallableFact{{
				Name:       "run",
				ReturnType: "void",
				Modifiers:  []string{"public", "@Override"},
			}},
			ConstructorCalls: []model.ConstructorCallFact{{ClassName: "B"}},
			MethodCalls:      []model.MethodCallFact{{CalleeName: "B", MethodName: "foo"}},
		},
	}

	g := newTransformer().Transform(facts)
	metric.ComputeAll(g)

	out, ok := g.Outgoing("A", "B")
	require.True(t, ok)
	assert.Equal(t, 1, out.Count(model.AttributeInvocation))
	assert.Equal(t, 1, out.Count(model.ConstructorInvocation))
	assert.Equal(t, 1, out.Count(model.MethodInvocation))
	assert.Equal(t, 0, out.Count(model.PackageInvocation))

	in, ok := g.Incoming("B", "A")
	require.True(t, ok)
	for _, kind := range model.InvocationKinds {
		assert.Equal(t, out.Invocations(kind), in.Invocations(kind))
	}

	a, _ := g.Class("A")
	cm := a.ClassMetrics()
	assert.Equal(t, 1.0, cm.NumberOfAttributeInvocationsOutgoing)
	assert.Equal(t, 1.0, cm.NumberOfConstructorInvocationsOutgoing)
	assert.Equal(t, 1.0, cm.NumberOfMethodInvocationsOutgoing)
	assert.Equal(t, 0.0, cm.NumberOfPackageImportsOutgoing)

	ab, ok := g.RelationMetrics("A", "B")
	require.True(t, ok)
	assert.InDelta(t, 0.8, ab.CumulativeNormalisedCoupling, 1e-12)

	// 包占位符与修饰符规范化
	assert.Equal(t, model.DefaultPackage, a.Package().Name)
	require.Len(t, a.Methods(), 1)
	assert.Equal(t, model.ModifierSet{model.Public}, a.Methods()[0].Modifiers)
}

func TestTransform_Imports(t *testing.T) {
	facts := []*model.ClassFacts{
		{ClassName: "com.x.A", PackageName: "com.x", Imports: []string{"com.y.*", "com.z.D", "java.util.List", "org.lib.*"}},
		{ClassName: "com.y.B", PackageName: "com.y"},
		{ClassName: "com.y.C", PackageName: "com.y"},
		{ClassName: "com.z.D", PackageName: "com.z"},
	}
	g := newTransformer().Transform(facts)

	assert.Equal(t, []string{"com.y.B", "com.y.C", "com.z.D"}, g.OutgoingClasses("com.x.A"))
	out, _ := g.Outgoing("com.x.A", "com.y.C")
	require.Equal(t, 1, out.Count(model.PackageInvocation))
	assert.Equal(t, "com.y.C", out.Invocations(model.PackageInvocation)[0].Name)

	a, _ := g.Class("com.x.A")
	ext := a.External().Invocations(model.PackageInvocation)
	require.Len(t, ext, 2)
	assert.Equal(t, "java.util.List", ext[0].Name)
	assert.Equal(t, "org.lib.*", ext[1].Name)
	assert.Equal(t, "com.x", a.Package().Name)
}

func TestTransform_ExternalTargetsNeverCreateIncoming(t *testing.T) {
	facts := []*model.ClassFacts{{
		ClassName:        "A",
		Attributes:       []model.AttributeFact{{Name: "lib", Type: "org.lib.Client"}},
		ConstructorCalls: []model.ConstructorCallFact{{ClassName: "org.lib.Client", Arguments: []string{"cfg"}}},
		MethodCalls:      []model.MethodCallFact{{CalleeName: "org.lib.Client", MethodName: "send", Arguments: []string{"msg"}}},
	}}
	g := newTransformer().Transform(facts)

	assert.Equal(t, []string{"A"}, g.Classes())
	_, ok := g.Class("org.lib.Client")
	assert.False(t, ok)

	a, _ := g.Class("A")
	ext := a.External()
	require.Equal(t, 1, ext.Count(model.ConstructorInvocation))
	assert.Equal(t, model.Invocation{Name: "Client", PassedParameters: []string{"cfg"}}, ext.Invocations(model.ConstructorInvocation)[0])
	require.Equal(t, 1, ext.Count(model.MethodInvocation))
	assert.Equal(t, "send", ext.Invocations(model.MethodInvocation)[0].Name)
	// 不在 Universe 内的属性类型不记录
	assert.Equal(t, 0, ext.Count(model.AttributeInvocation))
}

func TestTransform_ReservedPrefixSkipped(t *testing.T) {
	facts := []*model.ClassFacts{{
		ClassName:        "A",
		ConstructorCalls: []model.ConstructorCallFact{{ClassName: "java.util.ArrayList"}},
		MethodCalls:      []model.MethodCallFact{{CalleeName: "java.io.PrintStream", MethodName: "println"}},
	}}
	g := newTransformer().Transform(facts)

	a, _ := g.Class("A")
	assert.True(t, a.External().Empty())
	assert.Empty(t, g.OutgoingClasses("A"))
}

func TestTransform_PreClassifiedExternals(t *testing.T) {
	facts := []*model.ClassFacts{{
		ClassName:            "A",
		ExternalAttributes:   []string{"System.out"},
		ExternalMethods:      []string{"helper.doWork"},
		ExternalConstructors: []string{"Widget"},
	}}
	g := newTransformer().Transform(facts)

	a, _ := g.Class("A")
	ext := a.External()
	assert.Equal(t, []model.Invocation{{Name: "System.out"}}, ext.Invocations(model.AttributeInvocation))
	assert.Equal(t, []model.Invocation{{Name: "helper.doWork", PassedParameters: []string{model.ParameterPlaceholder}}}, ext.Invocations(model.MethodInvocation))
	assert.Equal(t, []model.Invocation{{Name: "Widget", PassedParameters: []string{model.ParameterPlaceholder}}}, ext.Invocations(model.ConstructorInvocation))
}

func TestTransform_LocalVariablesAndQualifiedTypes(t *testing.T) {
	facts := []*model.ClassFacts{
		{
			ClassName: "p.A",
			Methods: []model.CallableFact{{
				Name: "run",
				LocalVariables: []model.VariableFact{
					{Name: "b", Type: "B", QualifiedType: "p.B"},
					{Name: "n", Type: "int"},
				},
			}},
		},
		{ClassName: "p.B"},
	}
	g := newTransformer().Transform(facts)

	out, ok := g.Outgoing("p.A", "p.B")
	require.True(t, ok)
	assert.Equal(t, []model.Invocation{{Name: "b"}}, out.Invocations(model.AttributeInvocation))
}

func TestTransform_DropsMalformedFacts(t *testing.T) {
	facts := []*model.ClassFacts{
		nil,
		{ClassName: ""},
		{
			ClassName:        "A",
			Attributes:       []model.AttributeFact{{Name: "", Type: "B"}},
			Methods:          []model.CallableFact{{Name: ""}},
			Imports:          []string{"  "},
			ConstructorCalls: []model.ConstructorCallFact{{ClassName: ""}},
			MethodCalls:      []model.MethodCallFact{{CalleeName: "B", MethodName: ""}},
		},
		{ClassName: "B"},
	}
	g := newTransformer().Transform(facts)

	assert.Equal(t, []string{"A", "B"}, g.Classes())
	a, _ := g.Class("A")
	assert.Empty(t, a.Attributes())
	assert.Empty(t, a.Methods())
	assert.Empty(t, g.OutgoingClasses("A"))
	assert.True(t, a.External().Empty())
}

func TestTransform_Deterministic(t *testing.T) {
	build := func(order []int) *graph.ProjectGraph {
		all := []*model.ClassFacts{
			{ClassName: "p.A", Imports: []string{"p.*"}, MethodCalls: []model.MethodCallFact{{CalleeName: "p.B", MethodName: "x"}}},
			{ClassName: "p.B", Attributes: []model.AttributeFact{{Name: "c", Type: "p.C"}}},
			{ClassName: "p.C", ConstructorCalls: []model.ConstructorCallFact{{ClassName: "p.A"}}},
		}
		facts := make([]*model.ClassFacts, len(order))
		for i, idx := range order {
			facts[i] = all[idx]
		}
		g := newTransformer().Transform(facts)
		metric.ComputeAll(g)
		return g
	}

	g1 := build([]int{0, 1, 2})
	g2 := build([]int{2, 0, 1})
	require.Equal(t, g1.Classes(), g2.Classes())
	for _, name := range g1.Classes() {
		for _, related := range g1.OutgoingClasses(name) {
			o1, _ := g1.Outgoing(name, related)
			o2, _ := g2.Outgoing(name, related)
			for _, kind := range model.InvocationKinds {
				assert.Equal(t, o1.Invocations(kind), o2.Invocations(kind))
			}
		}
		for _, related := range g1.RelatedClasses(name) {
			v1, _ := g1.RelationMetrics(name, related)
			v2, _ := g2.RelationMetrics(name, related)
			assert.Equal(t, v1, v2)
		}
	}
}
