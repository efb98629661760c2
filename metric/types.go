// Package metric 在依赖图上计算类级别与关系级别的耦合度量。
//
// 每种度量在表中登记一个实现，表的长度与枚举数量在编译期绑定；
// 新增度量类型而不补充实现会导致编译失败。
package metric

import (
	"github.com/CodMac/go-treesitter-coupling-analyzer/graph"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
)

// ClassMetricType 类度量类型，顺序固定
type ClassMetricType int

const (
	NumberOfClassAttributeInvocationsIncoming ClassMetricType = iota
	NumberOfClassAttributeInvocationsOutgoing
	NumberOfClassMethodInvocationsIncoming
	NumberOfClassMethodInvocationsOutgoing
	NumberOfClassPackageImportsIncoming
	NumberOfClassPackageImportsOutgoing
	NumberOfClassConstructorInvocationsIncoming
	NumberOfClassConstructorInvocationsOutgoing
	BidirectionalNumberOfClassAttributeInvocations
	BidirectionalNumberOfClassMethodInvocations
	BidirectionalNumberOfClassPackageImports
	BidirectionalNumberOfClassConstructorInvocations

	numClassMetricTypes
)

// RelationMetricType 关系度量类型，顺序固定；综合得分必须排在其依赖的计数之后
type RelationMetricType int

const (
	NumberOfRelationPackageImportsIncoming RelationMetricType = iota
	NumberOfRelationPackageImportsOutgoing
	NumberOfRelationAttributeInvocationsIncoming
	NumberOfRelationAttributeInvocationsOutgoing
	NumberOfRelationMethodInvocationsIncoming
	NumberOfRelationMethodInvocationsOutgoing
	NumberOfRelationConstructorInvocationsIncoming
	NumberOfRelationConstructorInvocationsOutgoing
	BidirectionalNumberOfRelationPackageImports
	BidirectionalNumberOfRelationAttributeInvocations
	BidirectionalNumberOfRelationMethodInvocations
	BidirectionalNumberOfRelationConstructorInvocations
	CumulativeNormalisedRelationCoupling

	numRelationMetricTypes
)

// ClassMetricTypes 全部类度量类型，按枚举顺序
func ClassMetricTypes() []ClassMetricType {
	types := make([]ClassMetricType, numClassMetricTypes)
	for i := range types {
		types[i] = ClassMetricType(i)
	}
	return types
}

// RelationMetricTypes 全部关系度量类型，按枚举顺序
func RelationMetricTypes() []RelationMetricType {
	types := make([]RelationMetricType, numRelationMetricTypes)
	for i := range types {
		types[i] = RelationMetricType(i)
	}
	return types
}

func (t ClassMetricType) String() string {
	if t < 0 || t >= numClassMetricTypes {
		return "UNKNOWN_CLASS_METRIC"
	}
	return classMetricTable[t].name
}

func (t RelationMetricType) String() string {
	if t < 0 || t >= numRelationMetricTypes {
		return "UNKNOWN_RELATION_METRIC"
	}
	return relationMetricTable[t].name
}

// direction 度量统计的边方向
type direction int

const (
	incoming direction = iota
	outgoing
	both
)

type classMetric struct {
	name  string
	kind  model.InvocationKind
	dir   direction
	store func(v *model.ClassMetricValue, x float64)
}

// relationMetric 计数类度量使用 count；派生类度量使用 derive，并声明其依赖的度量
type relationMetric struct {
	name     string
	dir      direction
	count    func(out, in *graph.DependenceInfo) float64
	derive   func(v *model.RelationMetricValue) float64
	requires []RelationMetricType
	store    func(v *model.RelationMetricValue, x float64)
}

var classMetricTable = [...]classMetric{
	NumberOfClassAttributeInvocationsIncoming: {
		name: "NUMBER_OF_CLASS_ATTRIBUTE_INVOCATIONS_INCOMING", kind: model.AttributeInvocation, dir: incoming,
		store: func(v *model.ClassMetricValue, x float64) { v.NumberOfAttributeInvocationsIncoming = x },
	},
	NumberOfClassAttributeInvocationsOutgoing: {
		name: "NUMBER_OF_CLASS_ATTRIBUTE_INVOCATIONS_OUTGOING", kind: model.AttributeInvocation, dir: outgoing,
		store: func(v *model.ClassMetricValue, x float64) { v.NumberOfAttributeInvocationsOutgoing = x },
	},
	NumberOfClassMethodInvocationsIncoming: {
		name: "NUMBER_OF_CLASS_METHOD_INVOCATIONS_INCOMING", kind: model.MethodInvocation, dir: incoming,
		store: func(v *model.ClassMetricValue, x float64) { v.NumberOfMethodInvocationsIncoming = x },
	},
	NumberOfClassMethodInvocationsOutgoing: {
		name: "NUMBER_OF_CLASS_METHOD_INVOCATIONS_OUTGOING", kind: model.MethodInvocation, dir: outgoing,
		store: func(v *model.ClassMetricValue, x float64) { v.NumberOfMethodInvocationsOutgoing = x },
	},
	NumberOfClassPackageImportsIncoming: {
		name: "NUMBER_OF_CLASS_PACKAGE_IMPORTS_INCOMING", kind: model.PackageInvocation, dir: incoming,
		store: func(v *model.ClassMetricValue, x float64) { v.NumberOfPackageImportsIncoming = x },
	},
	NumberOfClassPackageImportsOutgoing: {
		name: "NUMBER_OF_CLASS_PACKAGE_IMPORTS_OUTGOING", kind: model.PackageInvocation, dir: outgoing,
		store: func(v *model.ClassMetricValue, x float64) { v.NumberOfPackageImportsOutgoing = x },
	},
	NumberOfClassConstructorInvocationsIncoming: {
		name: "NUMBER_OF_CLASS_CONSTRUCTOR_INVOCATIONS_INCOMING", kind: model.ConstructorInvocation, dir: incoming,
		store: func(v *model.ClassMetricValue, x float64) { v.NumberOfConstructorInvocationsIncoming = x },
	},
	NumberOfClassConstructorInvocationsOutgoing: {
		name: "NUMBER_OF_CLASS_CONSTRUCTOR_INVOCATIONS_OUTGOING", kind: model.ConstructorInvocation, dir: outgoing,
		store: func(v *model.ClassMetricValue, x float64) { v.NumberOfConstructorInvocationsOutgoing = x },
	},
	BidirectionalNumberOfClassAttributeInvocations: {
		name: "BIDIRECTIONAL_NUMBER_OF_CLASS_ATTRIBUTE_INVOCATIONS", kind: model.AttributeInvocation, dir: both,
		store: func(v *model.ClassMetricValue, x float64) { v.BidirectionalNumberOfAttributeInvocations = x },
	},
	BidirectionalNumberOfClassMethodInvocations: {
		name: "BIDIRECTIONAL_NUMBER_OF_CLASS_METHOD_INVOCATIONS", kind: model.MethodInvocation, dir: both,
		store: func(v *model.ClassMetricValue, x float64) { v.BidirectionalNumberOfMethodInvocations = x },
	},
	BidirectionalNumberOfClassPackageImports: {
		name: "BIDIRECTIONAL_NUMBER_OF_CLASS_PACKAGE_IMPORTS", kind: model.PackageInvocation, dir: both,
		store: func(v *model.ClassMetricValue, x float64) { v.BidirectionalNumberOfPackageImports = x },
	},
	BidirectionalNumberOfClassConstructorInvocations: {
		name: "BIDIRECTIONAL_NUMBER_OF_CLASS_CONSTRUCTOR_INVOCATIONS", kind: model.ConstructorInvocation, dir: both,
		store: func(v *model.ClassMetricValue, x float64) { v.BidirectionalNumberOfConstructorInvocations = x },
	},
}

var relationMetricTable = [...]relationMetric{
	NumberOfRelationPackageImportsIncoming: {
		name: "NUMBER_OF_RELATION_PACKAGE_IMPORTS_INCOMING", dir: incoming, count: countIn(model.PackageInvocation),
		store: func(v *model.RelationMetricValue, x float64) { v.NumberOfPackageImportsIncoming = x },
	},
	NumberOfRelationPackageImportsOutgoing: {
		name: "NUMBER_OF_RELATION_PACKAGE_IMPORTS_OUTGOING", dir: outgoing, count: countOut(model.PackageInvocation),
		store: func(v *model.RelationMetricValue, x float64) { v.NumberOfPackageImportsOutgoing = x },
	},
	NumberOfRelationAttributeInvocationsIncoming: {
		name: "NUMBER_OF_RELATION_ATTRIBUTE_INVOCATIONS_INCOMING", dir: incoming, count: countIn(model.AttributeInvocation),
		store: func(v *model.RelationMetricValue, x float64) { v.NumberOfAttributeInvocationsIncoming = x },
	},
	NumberOfRelationAttributeInvocationsOutgoing: {
		name: "NUMBER_OF_RELATION_ATTRIBUTE_INVOCATIONS_OUTGOING", dir: outgoing, count: countOut(model.AttributeInvocation),
		store: func(v *model.RelationMetricValue, x float64) { v.NumberOfAttributeInvocationsOutgoing = x },
	},
	NumberOfRelationMethodInvocationsIncoming: {
		name: "NUMBER_OF_RELATION_METHOD_INVOCATIONS_INCOMING", dir: incoming, count: countIn(model.MethodInvocation),
		store: func(v *model.RelationMetricValue, x float64) { v.NumberOfMethodInvocationsIncoming = x },
	},
	NumberOfRelationMethodInvocationsOutgoing: {
		name: "NUMBER_OF_RELATION_METHOD_INVOCATIONS_OUTGOING", dir: outgoing, count: countOut(model.MethodInvocation),
		store: func(v *model.RelationMetricValue, x float64) { v.NumberOfMethodInvocationsOutgoing = x },
	},
	NumberOfRelationConstructorInvocationsIncoming: {
		name: "NUMBER_OF_RELATION_CONSTRUCTOR_INVOCATIONS_INCOMING", dir: incoming, count: countIn(model.ConstructorInvocation),
		store: func(v *model.RelationMetricValue, x float64) { v.NumberOfConstructorInvocationsIncoming = x },
	},
	NumberOfRelationConstructorInvocationsOutgoing: {
		name: "NUMBER_OF_RELATION_CONSTRUCTOR_INVOCATIONS_OUTGOING", dir: outgoing, count: countOut(model.ConstructorInvocation),
		store: func(v *model.RelationMetricValue, x float64) { v.NumberOfConstructorInvocationsOutgoing = x },
	},
	BidirectionalNumberOfRelationPackageImports: {
		name: "BIDIRECTIONAL_NUMBER_OF_RELATION_PACKAGE_IMPORTS", dir: both, count: countBoth(model.PackageInvocation),
		store: func(v *model.RelationMetricValue, x float64) { v.BidirectionalNumberOfPackageImports = x },
	},
	BidirectionalNumberOfRelationAttributeInvocations: {
		name: "BIDIRECTIONAL_NUMBER_OF_RELATION_ATTRIBUTE_INVOCATIONS", dir: both, count: countBoth(model.AttributeInvocation),
		store: func(v *model.RelationMetricValue, x float64) { v.BidirectionalNumberOfAttributeInvocations = x },
	},
	BidirectionalNumberOfRelationMethodInvocations: {
		name: "BIDIRECTIONAL_NUMBER_OF_RELATION_METHOD_INVOCATIONS", dir: both, count: countBoth(model.MethodInvocation),
		store: func(v *model.RelationMetricValue, x float64) { v.BidirectionalNumberOfMethodInvocations = x },
	},
	BidirectionalNumberOfRelationConstructorInvocations: {
		name: "BIDIRECTIONAL_NUMBER_OF_RELATION_CONSTRUCTOR_INVOCATIONS", dir: both, count: countBoth(model.ConstructorInvocation),
		store: func(v *model.RelationMetricValue, x float64) { v.BidirectionalNumberOfConstructorInvocations = x },
	},
	CumulativeNormalisedRelationCoupling: {
		name:   "CUMULATIVE_NORMALISED_RELATION_COUPLING",
		derive: func(v *model.RelationMetricValue) float64 { return CumulativeCoupling(*v) },
		requires: []RelationMetricType{
			NumberOfRelationPackageImportsIncoming, NumberOfRelationPackageImportsOutgoing,
			NumberOfRelationAttributeInvocationsIncoming, NumberOfRelationAttributeInvocationsOutgoing,
			NumberOfRelationMethodInvocationsIncoming, NumberOfRelationMethodInvocationsOutgoing,
			NumberOfRelationConstructorInvocationsIncoming, NumberOfRelationConstructorInvocationsOutgoing,
		},
		store: func(v *model.RelationMetricValue, x float64) { v.CumulativeNormalisedCoupling = x },
	},
}

// 表长度必须与枚举数量一致
var (
	_ = [1]struct{}{}[len(classMetricTable)-int(numClassMetricTypes)]
	_ = [1]struct{}{}[len(relationMetricTable)-int(numRelationMetricTypes)]
)

func countIn(kind model.InvocationKind) func(out, in *graph.DependenceInfo) float64 {
	return func(_, in *graph.DependenceInfo) float64 { return float64(in.Count(kind)) }
}

func countOut(kind model.InvocationKind) func(out, in *graph.DependenceInfo) float64 {
	return func(out, _ *graph.DependenceInfo) float64 { return float64(out.Count(kind)) }
}

func countBoth(kind model.InvocationKind) func(out, in *graph.DependenceInfo) float64 {
	return func(out, in *graph.DependenceInfo) float64 { return float64(out.Count(kind) + in.Count(kind)) }
}

// CumulativeCoupling 加权综合得分：构造函数与方法调用权重为 2，属性与包导入权重为 1
func CumulativeCoupling(v model.RelationMetricValue) float64 {
	weighted := v.NumberOfAttributeInvocationsIncoming + v.NumberOfAttributeInvocationsOutgoing +
		v.NumberOfPackageImportsIncoming + v.NumberOfPackageImportsOutgoing +
		2*(v.NumberOfConstructorInvocationsIncoming+v.NumberOfConstructorInvocationsOutgoing+
			v.NumberOfMethodInvocationsIncoming+v.NumberOfMethodInvocationsOutgoing)
	if weighted <= 0 {
		return 0
	}
	return 1 - 1/weighted
}
