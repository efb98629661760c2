package graph

import (
	"sort"

	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
)

// 以下方法供度量引擎使用：只读遍历边，只写度量值记录。

// EachOutgoing 按插入顺序遍历类的出边
func (g *ProjectGraph) EachOutgoing(id ClassID, fn func(related ClassID, info *DependenceInfo)) {
	c := g.record(id)
	for _, related := range c.outgoing.order {
		fn(related, c.outgoing.entries[related])
	}
}

// EachIncoming 按插入顺序遍历类的入边
func (g *ProjectGraph) EachIncoming(id ClassID, fn func(related ClassID, info *DependenceInfo)) {
	c := g.record(id)
	for _, related := range c.incoming.order {
		fn(related, c.incoming.entries[related])
	}
}

// OutgoingInfo 返回出边，不存在时为 nil
func (g *ProjectGraph) OutgoingInfo(id, related ClassID) *DependenceInfo {
	info, _ := g.record(id).outgoing.get(related)
	return info
}

// IncomingInfo 返回入边，不存在时为 nil
func (g *ProjectGraph) IncomingInfo(id, related ClassID) *DependenceInfo {
	info, _ := g.record(id).incoming.get(related)
	return info
}

// ClassMetricValue 返回类度量值记录，用于写入
func (g *ProjectGraph) ClassMetricValue(id ClassID) *model.ClassMetricValue {
	return &g.record(id).classMetrics
}

// RelationMetricValue 返回关系度量值记录，不存在时创建
func (g *ProjectGraph) RelationMetricValue(id, related ClassID) *model.RelationMetricValue {
	c := g.record(id)
	if c.relationMetrics == nil {
		c.relationMetrics = make(map[ClassID]*model.RelationMetricValue)
	}
	v, ok := c.relationMetrics[related]
	if !ok {
		v = &model.RelationMetricValue{}
		c.relationMetrics[related] = v
	}
	return v
}

// EachRelationMetric 遍历类已有的关系度量值记录，按关联类 ClassID 升序
func (g *ProjectGraph) EachRelationMetric(id ClassID, fn func(related ClassID, v *model.RelationMetricValue)) {
	c := g.record(id)
	for _, related := range sortedIDs(c.relationMetrics) {
		fn(related, c.relationMetrics[related])
	}
}

func sortedIDs(m map[ClassID]*model.RelationMetricValue) []ClassID {
	ids := make([]ClassID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
