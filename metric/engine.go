package metric

import (
	"fmt"

	"github.com/CodMac/go-treesitter-coupling-analyzer/graph"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
)

// Engine 在一个 ProjectGraph 上计算度量。它只写度量值记录，从不修改声明与边。
type Engine struct {
	g *graph.ProjectGraph

	// computedAt 记录每种关系度量最近一次计算时的图版本，0 表示从未计算
	computedAt [numRelationMetricTypes]uint64
}

func NewEngine(g *graph.ProjectGraph) *Engine {
	return &Engine{g: g}
}

// ComputeAll 先计算全部类度量，再按枚举顺序计算全部关系度量。重复调用结果相同。
func ComputeAll(g *graph.ProjectGraph) {
	NewEngine(g).ComputeAll()
}

func (e *Engine) ComputeAll() {
	for _, t := range ClassMetricTypes() {
		e.ComputeClassMetric(t)
	}
	for _, t := range RelationMetricTypes() {
		e.ComputeRelationMetric(t)
	}
}

// ComputeClassMetric 为图中每个类计算一种类度量
func (e *Engine) ComputeClassMetric(t ClassMetricType) {
	if t < 0 || t >= numClassMetricTypes {
		panic(fmt.Sprintf("metric: unknown class metric %d", int(t)))
	}
	m := classMetricTable[t]
	for _, id := range e.g.IDs() {
		total := 0
		if m.dir == incoming || m.dir == both {
			e.g.EachIncoming(id, func(_ graph.ClassID, info *graph.DependenceInfo) {
				total += info.Count(m.kind)
			})
		}
		if m.dir == outgoing || m.dir == both {
			e.g.EachOutgoing(id, func(_ graph.ClassID, info *graph.DependenceInfo) {
				total += info.Count(m.kind)
			})
		}
		m.store(e.g.ClassMetricValue(id), float64(total))
	}
}

// ComputeRelationMetric 为图中每个类及其每个关联类计算一种关系度量。
// 派生度量在其依赖度量未针对当前图状态计算时调用属于编程错误，会 panic。
func (e *Engine) ComputeRelationMetric(t RelationMetricType) {
	if t < 0 || t >= numRelationMetricTypes {
		panic(fmt.Sprintf("metric: unknown relation metric %d", int(t)))
	}
	m := relationMetricTable[t]

	if m.derive != nil {
		for _, dep := range m.requires {
			if !e.current(dep) {
				panic(fmt.Sprintf("metric: %s computed before %s", m.name, dep))
			}
		}
		for _, id := range e.g.IDs() {
			e.g.EachRelationMetric(id, func(_ graph.ClassID, v *model.RelationMetricValue) {
				m.store(v, m.derive(v))
			})
		}
		e.markComputed(t)
		return
	}

	for _, id := range e.g.IDs() {
		for _, related := range e.relatedIDs(id, m.dir) {
			out := e.g.OutgoingInfo(id, related)
			in := e.g.IncomingInfo(id, related)
			m.store(e.g.RelationMetricValue(id, related), m.count(out, in))
		}
	}
	e.markComputed(t)
}

// relatedIDs 按方向返回关联类：incoming/outgoing 各自的键，both 为两者的并集
func (e *Engine) relatedIDs(id graph.ClassID, dir direction) []graph.ClassID {
	var ids []graph.ClassID
	seen := make(map[graph.ClassID]bool)
	collect := func(related graph.ClassID, _ *graph.DependenceInfo) {
		if !seen[related] {
			seen[related] = true
			ids = append(ids, related)
		}
	}
	if dir == outgoing || dir == both {
		e.g.EachOutgoing(id, collect)
	}
	if dir == incoming || dir == both {
		e.g.EachIncoming(id, collect)
	}
	return ids
}

func (e *Engine) markComputed(t RelationMetricType) {
	e.computedAt[t] = e.g.Version() + 1
}

func (e *Engine) current(t RelationMetricType) bool {
	return e.computedAt[t] == e.g.Version()+1
}
