// Package graph 保存项目级依赖图：每个类一个 ClassRecord，类之间的边按方向双侧存储。
//
// ClassRecord 存放在以 ClassID 为下标的 arena 中，边通过 ClassID 引用对端。
// ProjectGraph 不是并发安全的，一次分析只允许一个写入者。
package graph

import (
	"fmt"
	"sort"

	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
)

// ClassID 类在 arena 中的下标
type ClassID int

// edgeMap 关联类 -> DependenceInfo，保留插入顺序
type edgeMap struct {
	order   []ClassID
	entries map[ClassID]*DependenceInfo
}

func (m *edgeMap) getOrInsert(id ClassID) *DependenceInfo {
	if m.entries == nil {
		m.entries = make(map[ClassID]*DependenceInfo)
	}
	if info, ok := m.entries[id]; ok {
		return info
	}
	info := &DependenceInfo{}
	m.entries[id] = info
	m.order = append(m.order, id)
	return info
}

func (m *edgeMap) get(id ClassID) (*DependenceInfo, bool) {
	info, ok := m.entries[id]
	return info, ok
}

// ClassRecord 一个类的声明、双向边、外部调用以及度量值
type ClassRecord struct {
	id       ClassID
	name     string
	kind     model.ElementKind
	location *model.Location

	pkg          *model.PackageDeclaration
	attributes   []model.AttributeDeclaration
	constructors []model.ConstructorDeclaration
	methods      []model.MethodDeclaration

	outgoing edgeMap
	incoming edgeMap
	external DependenceInfo

	relationMetrics map[ClassID]*model.RelationMetricValue
	classMetrics    model.ClassMetricValue
}

func (c *ClassRecord) ID() ClassID { return c.id }

func (c *ClassRecord) Name() string { return c.name }

func (c *ClassRecord) Kind() model.ElementKind { return c.kind }

func (c *ClassRecord) Location() *model.Location { return c.location }

// External 外部调用记录的副本
func (c *ClassRecord) External() *DependenceInfo { return c.external.clone() }

func (c *ClassRecord) ClassMetrics() model.ClassMetricValue { return c.classMetrics }

// Package 类所在的包，未声明时为占位包名
func (c *ClassRecord) Package() model.PackageDeclaration {
	if c.pkg == nil {
		return model.PackageDeclaration{Name: model.DefaultPackage}
	}
	return *c.pkg
}

func (c *ClassRecord) Attributes() []model.AttributeDeclaration {
	return append([]model.AttributeDeclaration(nil), c.attributes...)
}

func (c *ClassRecord) Constructors() []model.ConstructorDeclaration {
	return append([]model.ConstructorDeclaration(nil), c.constructors...)
}

func (c *ClassRecord) Methods() []model.MethodDeclaration {
	return append([]model.MethodDeclaration(nil), c.methods...)
}

// ProjectGraph 类全限定名 -> ClassRecord，是所有记录的唯一所有者
type ProjectGraph struct {
	classes []*ClassRecord
	index   map[string]ClassID
	version uint64
}

func New() *ProjectGraph {
	return &ProjectGraph{index: make(map[string]ClassID)}
}

// GetOrInsert 返回类的 ClassID，不存在时分配新记录
func (g *ProjectGraph) GetOrInsert(name string) ClassID {
	if id, ok := g.index[name]; ok {
		return id
	}
	id := ClassID(len(g.classes))
	g.classes = append(g.classes, &ClassRecord{id: id, name: name})
	g.index[name] = id
	g.version++
	return id
}

// Lookup 查找类的 ClassID，不会创建记录
func (g *ProjectGraph) Lookup(name string) (ClassID, bool) {
	id, ok := g.index[name]
	return id, ok
}

// Name 返回 ClassID 对应的类名
func (g *ProjectGraph) Name(id ClassID) string {
	return g.record(id).name
}

// Len 类的数量
func (g *ProjectGraph) Len() int { return len(g.classes) }

// Version 每次结构性修改 (新记录、声明、调用) 后递增，度量值的写入不计入
func (g *ProjectGraph) Version() uint64 { return g.version }

// IDs 按分配顺序返回所有 ClassID
func (g *ProjectGraph) IDs() []ClassID {
	ids := make([]ClassID, len(g.classes))
	for i := range g.classes {
		ids[i] = ClassID(i)
	}
	return ids
}

// Classes 返回排序后的全部类名
func (g *ProjectGraph) Classes() []string {
	names := make([]string, 0, len(g.classes))
	for _, c := range g.classes {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}

// Class 按名称查找类记录
func (g *ProjectGraph) Class(name string) (*ClassRecord, bool) {
	id, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.classes[id], true
}

func (g *ProjectGraph) record(id ClassID) *ClassRecord {
	if int(id) < 0 || int(id) >= len(g.classes) {
		panic(fmt.Sprintf("graph: class id %d out of range", id))
	}
	return g.classes[id]
}

// Describe 记录类的种类与位置，重复调用时覆盖
func (g *ProjectGraph) Describe(class string, kind model.ElementKind, loc *model.Location) {
	c := g.record(g.GetOrInsert(class))
	c.kind = kind
	c.location = loc
}

// AddDeclaration 向类追加一条声明；包声明直接覆盖
func (g *ProjectGraph) AddDeclaration(class string, decl model.Declaration) {
	c := g.record(g.GetOrInsert(class))
	switch d := decl.(type) {
	case model.PackageDeclaration:
		c.pkg = &d
	case model.AttributeDeclaration:
		c.attributes = append(c.attributes, d)
	case model.ConstructorDeclaration:
		c.constructors = append(c.constructors, d)
	case model.MethodDeclaration:
		c.methods = append(c.methods, d)
	default:
		panic(fmt.Sprintf("graph: unsupported declaration %T", decl))
	}
	g.version++
}

// AddInvocation 记录 consumer 对 declared 的一次调用。
// consumer.outgoing[declared] 与 declared.incoming[consumer] 在同一次调用中同时追加，各自持有副本。
func (g *ProjectGraph) AddInvocation(consumer, declared string, inv model.Invocation, kind model.InvocationKind) {
	if !kind.Valid() {
		panic(fmt.Sprintf("graph: invalid invocation kind %s", kind))
	}
	consumerID := g.GetOrInsert(consumer)
	declaredID := g.GetOrInsert(declared)

	g.classes[consumerID].outgoing.getOrInsert(declaredID).add(kind, inv.Clone())
	g.classes[declaredID].incoming.getOrInsert(consumerID).add(kind, inv.Clone())
	g.version++
}

// AddExternalInvocation 记录 consumer 对项目外部的一次调用，只写入 consumer 一侧
func (g *ProjectGraph) AddExternalInvocation(consumer string, inv model.Invocation, kind model.InvocationKind) {
	if !kind.Valid() {
		panic(fmt.Sprintf("graph: invalid invocation kind %s", kind))
	}
	c := g.record(g.GetOrInsert(consumer))
	c.external.add(kind, inv.Clone())
	g.version++
}

// Outgoing 返回 consumer 对 declared 的出边副本
func (g *ProjectGraph) Outgoing(consumer, declared string) (*DependenceInfo, bool) {
	return g.edge(consumer, declared, func(c *ClassRecord) *edgeMap { return &c.outgoing })
}

// Incoming 返回 declared 上来自 consumer 的入边副本
func (g *ProjectGraph) Incoming(declared, consumer string) (*DependenceInfo, bool) {
	return g.edge(declared, consumer, func(c *ClassRecord) *edgeMap { return &c.incoming })
}

func (g *ProjectGraph) edge(owner, related string, side func(*ClassRecord) *edgeMap) (*DependenceInfo, bool) {
	ownerID, ok := g.index[owner]
	if !ok {
		return nil, false
	}
	relatedID, ok := g.index[related]
	if !ok {
		return nil, false
	}
	info, ok := side(g.classes[ownerID]).get(relatedID)
	if !ok {
		return nil, false
	}
	return info.clone(), true
}

// OutgoingClasses 返回类的所有出边对端，排序后
func (g *ProjectGraph) OutgoingClasses(name string) []string {
	c, ok := g.Class(name)
	if !ok {
		return nil
	}
	return g.sortedNames(c.outgoing.order)
}

// IncomingClasses 返回类的所有入边对端，排序后
func (g *ProjectGraph) IncomingClasses(name string) []string {
	c, ok := g.Class(name)
	if !ok {
		return nil
	}
	return g.sortedNames(c.incoming.order)
}

// RelationMetrics 返回类与关联类之间的度量值
func (g *ProjectGraph) RelationMetrics(name, related string) (model.RelationMetricValue, bool) {
	c, ok := g.Class(name)
	if !ok {
		return model.RelationMetricValue{}, false
	}
	relatedID, ok := g.index[related]
	if !ok {
		return model.RelationMetricValue{}, false
	}
	v, ok := c.relationMetrics[relatedID]
	if !ok {
		return model.RelationMetricValue{}, false
	}
	return *v, true
}

// RelatedClasses 返回拥有度量值的关联类，排序后
func (g *ProjectGraph) RelatedClasses(name string) []string {
	c, ok := g.Class(name)
	if !ok {
		return nil
	}
	ids := make([]ClassID, 0, len(c.relationMetrics))
	for id := range c.relationMetrics {
		ids = append(ids, id)
	}
	return g.sortedNames(ids)
}

func (g *ProjectGraph) sortedNames(ids []ClassID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = g.classes[id].name
	}
	sort.Strings(names)
	return names
}

// Walk 按类名顺序只读遍历全部类，fn 返回错误时停止
func (g *ProjectGraph) Walk(fn func(c *ClassRecord) error) error {
	for _, name := range g.Classes() {
		if err := fn(g.classes[g.index[name]]); err != nil {
			return err
		}
	}
	return nil
}
