package graph

import (
	"fmt"

	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
)

// DependenceInfo 一个类对另一个类 (或外部世界) 在单一方向上的全部调用记录，只追加不删除
type DependenceInfo struct {
	packages     []model.Invocation
	attributes   []model.Invocation
	constructors []model.Invocation
	methods      []model.Invocation
}

func (d *DependenceInfo) add(kind model.InvocationKind, inv model.Invocation) {
	switch kind {
	case model.PackageInvocation:
		d.packages = append(d.packages, inv)
	case model.AttributeInvocation:
		d.attributes = append(d.attributes, inv)
	case model.ConstructorInvocation:
		d.constructors = append(d.constructors, inv)
	case model.MethodInvocation:
		d.methods = append(d.methods, inv)
	default:
		panic(fmt.Sprintf("graph: invalid invocation kind %s", kind))
	}
}

func (d *DependenceInfo) sequence(kind model.InvocationKind) []model.Invocation {
	if d == nil {
		return nil
	}
	switch kind {
	case model.PackageInvocation:
		return d.packages
	case model.AttributeInvocation:
		return d.attributes
	case model.ConstructorInvocation:
		return d.constructors
	case model.MethodInvocation:
		return d.methods
	default:
		panic(fmt.Sprintf("graph: invalid invocation kind %s", kind))
	}
}

// Count 某一种调用的记录数
func (d *DependenceInfo) Count(kind model.InvocationKind) int {
	return len(d.sequence(kind))
}

// Invocations 返回某一种调用记录的副本
func (d *DependenceInfo) Invocations(kind model.InvocationKind) []model.Invocation {
	seq := d.sequence(kind)
	out := make([]model.Invocation, len(seq))
	for i, inv := range seq {
		out[i] = inv.Clone()
	}
	return out
}

// Empty 四类记录均为空
func (d *DependenceInfo) Empty() bool {
	for _, kind := range model.InvocationKinds {
		if d.Count(kind) > 0 {
			return false
		}
	}
	return true
}

func (d *DependenceInfo) clone() *DependenceInfo {
	if d == nil {
		return &DependenceInfo{}
	}
	c := &DependenceInfo{}
	for _, kind := range model.InvocationKinds {
		for _, inv := range d.sequence(kind) {
			c.add(kind, inv.Clone())
		}
	}
	return c
}
