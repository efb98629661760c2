package metric_test

import (
	"testing"

	"github.com/CodMac/go-treesitter-coupling-analyzer/graph"
	"github.com/CodMac/go-treesitter-coupling-analyzer/metric"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGraph() *graph.ProjectGraph {
	g := graph.New()
	g.AddInvocation("A", "B", model.NewPackageInvocation("B"), model.PackageInvocation)
	g.AddInvocation("A", "B", model.NewAttributeInvocation("b"), model.AttributeInvocation)
	g.AddInvocation("A", "B", model.NewConstructorInvocation("B", nil), model.ConstructorInvocation)
	g.AddInvocation("A", "B", model.NewMethodInvocation("foo", nil), model.MethodInvocation)
	g.AddInvocation("A", "B", model.NewMethodInvocation("bar", nil), model.MethodInvocation)
	g.AddInvocation("B", "A", model.NewMethodInvocation("callback", nil), model.MethodInvocation)
	g.AddInvocation("C", "A", model.NewAttributeInvocation("a"), model.AttributeInvocation)
	g.AddExternalInvocation("A", model.NewMethodInvocation("println", []string{model.ParameterPlaceholder}), model.MethodInvocation)
	return g
}

func TestMetricTypes_FixedOrder(t *testing.T) {
	classNames := make([]string, 0)
	for _, ct := range metric.ClassMetricTypes() {
		classNames = append(classNames, ct.String())
	}
	assert.Equal(t, []string{
		"NUMBER_OF_CLASS_ATTRIBUTE_INVOCATIONS_INCOMING",
		"NUMBER_OF_CLASS_ATTRIBUTE_INVOCATIONS_OUTGOING",
		"NUMBER_OF_CLASS_METHOD_INVOCATIONS_INCOMING",
		"NUMBER_OF_CLASS_METHOD_INVOCATIONS_OUTGOING",
		"NUMBER_OF_CLASS_PACKAGE_IMPORTS_INCOMING",
		"NUMBER_OF_CLASS_PACKAGE_IMPORTS_OUTGOING",
		"NUMBER_OF_CLASS_CONSTRUCTOR_INVOCATIONS_INCOMING",
		"NUMBER_OF_CLASS_CONSTRUCTOR_INVOCATIONS_OUTGOING",
		"BIDIRECTIONAL_NUMBER_OF_CLASS_ATTRIBUTE_INVOCATIONS",
		"BIDIRECTIONAL_NUMBER_OF_CLASS_METHOD_INVOCATIONS",
		"BIDIRECTIONAL_NUMBER_OF_CLASS_PACKAGE_IMPORTS",
		"BIDIRECTIONAL_NUMBER_OF_CLASS_CONSTRUCTOR_INVOCATIONS",
	}, classNames)

	relationTypes := metric.RelationMetricTypes()
	require.Len(t, relationTypes, 13)
	assert.Equal(t, "CUMULATIVE_NORMALISED_RELATION_COUPLING", relationTypes[len(relationTypes)-1].String())
}

func TestClassMetrics_Counting(t *testing.T) {
	g := buildGraph()
	metric.ComputeAll(g)

	a, _ := g.Class("A")
	cm := a.ClassMetrics()
	assert.Equal(t, 1.0, cm.NumberOfPackageImportsOutgoing)
	assert.Equal(t, 1.0, cm.NumberOfAttributeInvocationsOutgoing)
	assert.Equal(t, 1.0, cm.NumberOfAttributeInvocationsIncoming)
	assert.Equal(t, 1.0, cm.NumberOfConstructorInvocationsOutgoing)
	assert.Equal(t, 2.0, cm.NumberOfMethodInvocationsOutgoing)
	assert.Equal(t, 1.0, cm.NumberOfMethodInvocationsIncoming)
	// 外部调用不计入
	assert.Equal(t, 3.0, cm.BidirectionalNumberOfMethodInvocations)
	assert.Equal(t, 2.0, cm.BidirectionalNumberOfAttributeInvocations)

	b, _ := g.Class("B")
	bm := b.ClassMetrics()
	assert.Equal(t, 1.0, bm.NumberOfPackageImportsIncoming)
	assert.Equal(t, 2.0, bm.NumberOfMethodInvocationsIncoming)
	assert.Equal(t, 1.0, bm.NumberOfMethodInvocationsOutgoing)
}

func TestRelationMetrics_BidirectionalAdditivity(t *testing.T) {
	g := buildGraph()
	metric.ComputeAll(g)

	ab, ok := g.RelationMetrics("A", "B")
	require.True(t, ok)
	assert.Equal(t, 2.0, ab.NumberOfMethodInvocationsOutgoing)
	assert.Equal(t, 1.0, ab.NumberOfMethodInvocationsIncoming)
	assert.Equal(t, ab.NumberOfMethodInvocationsOutgoing+ab.NumberOfMethodInvocationsIncoming, ab.BidirectionalNumberOfMethodInvocations)
	assert.Equal(t, ab.NumberOfPackageImportsOutgoing+ab.NumberOfPackageImportsIncoming, ab.BidirectionalNumberOfPackageImports)

	// 只存在于入边的关联类同样得到度量值
	ac, ok := g.RelationMetrics("A", "C")
	require.True(t, ok)
	assert.Equal(t, 1.0, ac.NumberOfAttributeInvocationsIncoming)
	assert.Equal(t, 1.0, ac.BidirectionalNumberOfAttributeInvocations)
}

func TestRelationMetrics_PassOrderIndependent(t *testing.T) {
	forward := buildGraph()
	metric.ComputeAll(forward)

	reversed := buildGraph()
	e := metric.NewEngine(reversed)
	types := metric.RelationMetricTypes()
	counts := types[:len(types)-1]
	for i := len(counts) - 1; i >= 0; i-- {
		e.ComputeRelationMetric(counts[i])
	}
	e.ComputeRelationMetric(metric.CumulativeNormalisedRelationCoupling)

	for _, name := range forward.Classes() {
		for _, related := range forward.RelatedClasses(name) {
			want, _ := forward.RelationMetrics(name, related)
			got, ok := reversed.RelationMetrics(name, related)
			require.True(t, ok)
			assert.Equal(t, want, got, "%s -> %s", name, related)
		}
	}
}

func TestComputeAll_Idempotent(t *testing.T) {
	g := buildGraph()
	metric.ComputeAll(g)

	snapshot := func() map[string]interface{} {
		out := make(map[string]interface{})
		for _, name := range g.Classes() {
			c, _ := g.Class(name)
			out[name] = c.ClassMetrics()
			for _, related := range g.RelatedClasses(name) {
				v, _ := g.RelationMetrics(name, related)
				out[name+"->"+related] = v
			}
		}
		return out
	}
	first := snapshot()
	metric.ComputeAll(g)
	metric.ComputeAll(g)
	assert.Equal(t, first, snapshot())
}

func TestCumulativeCoupling(t *testing.T) {
	v := model.RelationMetricValue{
		NumberOfAttributeInvocationsIncoming:   1,
		NumberOfConstructorInvocationsOutgoing: 1,
		NumberOfMethodInvocationsIncoming:      2,
		NumberOfPackageImportsOutgoing:         1,
	}
	assert.InDelta(t, 0.875, metric.CumulativeCoupling(v), 1e-12)
	assert.Equal(t, 0.0, metric.CumulativeCoupling(model.RelationMetricValue{}))

	one := model.RelationMetricValue{NumberOfAttributeInvocationsOutgoing: 1}
	assert.Equal(t, 0.0, metric.CumulativeCoupling(one))
}

func TestCumulativeCoupling_EndToEndScore(t *testing.T) {
	g := graph.New()
	g.AddInvocation("A", "B", model.NewAttributeInvocation("b"), model.AttributeInvocation)
	g.AddInvocation("A", "B", model.NewConstructorInvocation("B", nil), model.ConstructorInvocation)
	g.AddInvocation("A", "B", model.NewMethodInvocation("foo", nil), model.MethodInvocation)
	metric.ComputeAll(g)

	ab, _ := g.RelationMetrics("A", "B")
	assert.InDelta(t, 0.8, ab.CumulativeNormalisedCoupling, 1e-12)
	ba, _ := g.RelationMetrics("B", "A")
	assert.InDelta(t, 0.8, ba.CumulativeNormalisedCoupling, 1e-12)
}

func TestCumulativeCoupling_PanicsBeforeCounts(t *testing.T) {
	g := buildGraph()
	e := metric.NewEngine(g)
	assert.Panics(t, func() { e.ComputeRelationMetric(metric.CumulativeNormalisedRelationCoupling) })

	e.ComputeAll()
	assert.NotPanics(t, func() { e.ComputeRelationMetric(metric.CumulativeNormalisedRelationCoupling) })

	// 图发生变化后计数不再是最新的
	g.AddInvocation("A", "C", model.NewAttributeInvocation("c"), model.AttributeInvocation)
	assert.Panics(t, func() { e.ComputeRelationMetric(metric.CumulativeNormalisedRelationCoupling) })
}

func TestZeroCoupling(t *testing.T) {
	g := graph.New()
	g.GetOrInsert("Lonely")
	metric.ComputeAll(g)

	c, _ := g.Class("Lonely")
	assert.Equal(t, model.ClassMetricValue{}, c.ClassMetrics())
	assert.Empty(t, g.RelatedClasses("Lonely"))
}
