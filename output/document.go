package output

import (
	"sort"

	"github.com/CodMac/go-treesitter-coupling-analyzer/graph"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
)

// Document 以类全限定名为键的嵌套文档
type Document map[string]*ClassDocument

// ClassDocument 单个类的完整视图：声明、两侧边、外部调用与度量值
type ClassDocument struct {
	Name            string                               `json:"name"`
	Kind            model.ElementKind                    `json:"kind,omitempty"`
	Location        *model.Location                      `json:"location,omitempty"`
	Package         model.PackageDeclaration             `json:"package"`
	Attributes      []model.AttributeDeclaration         `json:"attributes"`
	Constructors    []model.ConstructorDeclaration       `json:"constructors"`
	Methods         []model.MethodDeclaration            `json:"methods"`
	Outgoing        map[string]EdgeDocument              `json:"outgoing"`
	Incoming        map[string]EdgeDocument              `json:"incoming"`
	External        EdgeDocument                         `json:"external"`
	ClassMetrics    model.ClassMetricValue               `json:"classMetrics"`
	RelationMetrics map[string]model.RelationMetricValue `json:"relationMetrics"`
}

// EdgeDocument 一条边上按种类分开的四个调用序列
type EdgeDocument struct {
	Packages     []model.Invocation `json:"packages"`
	Attributes   []model.Invocation `json:"attributes"`
	Constructors []model.Invocation `json:"constructors"`
	Methods      []model.Invocation `json:"methods"`
}

func edgeDocument(info *graph.DependenceInfo) EdgeDocument {
	return EdgeDocument{
		Packages:     info.Invocations(model.PackageInvocation),
		Attributes:   info.Invocations(model.AttributeInvocation),
		Constructors: info.Invocations(model.ConstructorInvocation),
		Methods:      info.Invocations(model.MethodInvocation),
	}
}

// BuildDocument 只读遍历依赖图生成文档
func BuildDocument(g *graph.ProjectGraph) Document {
	doc := make(Document, g.Len())
	_ = g.Walk(func(c *graph.ClassRecord) error {
		name := c.Name()
		cd := &ClassDocument{
			Name:            name,
			Kind:            c.Kind(),
			Location:        c.Location(),
			Package:         c.Package(),
			Attributes:      c.Attributes(),
			Constructors:    c.Constructors(),
			Methods:         c.Methods(),
			Outgoing:        make(map[string]EdgeDocument),
			Incoming:        make(map[string]EdgeDocument),
			External:        edgeDocument(c.External()),
			ClassMetrics:    c.ClassMetrics(),
			RelationMetrics: make(map[string]model.RelationMetricValue),
		}
		for _, related := range g.OutgoingClasses(name) {
			if info, ok := g.Outgoing(name, related); ok {
				cd.Outgoing[related] = edgeDocument(info)
			}
		}
		for _, related := range g.IncomingClasses(name) {
			if info, ok := g.Incoming(name, related); ok {
				cd.Incoming[related] = edgeDocument(info)
			}
		}
		for _, related := range g.RelatedClasses(name) {
			if v, ok := g.RelationMetrics(name, related); ok {
				cd.RelationMetrics[related] = v
			}
		}
		doc[name] = cd
		return nil
	})
	return doc
}

// Names 文档中的类名，已排序
func (d Document) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Relation 一对类之间的综合耦合得分
type Relation struct {
	Class   string  `json:"class"`
	Related string  `json:"related"`
	Score   float64 `json:"score"`
	model.RelationMetricValue
}

// TopRelations 按综合得分降序返回前 limit 个关系；limit <= 0 时返回全部。
// 同分按类名、关联类名排序。
func (d Document) TopRelations(limit int) []Relation {
	var relations []Relation
	for _, name := range d.Names() {
		cd := d[name]
		for related, v := range cd.RelationMetrics {
			if v.CumulativeNormalisedCoupling <= 0 {
				continue
			}
			relations = append(relations, Relation{
				Class:               name,
				Related:             related,
				Score:               v.CumulativeNormalisedCoupling,
				RelationMetricValue: v,
			})
		}
	}
	sort.Slice(relations, func(i, j int) bool {
		a, b := relations[i], relations[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return a.Related < b.Related
	})
	if limit > 0 && len(relations) > limit {
		relations = relations[:limit]
	}
	return relations
}
