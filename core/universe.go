package core

import (
	"sort"
	"strings"
)

// Universe 一次分析中发现的全部类名，构建后不可变。
// 同时维护 包 -> 成员类 的索引用于展开通配符导入。
type Universe struct {
	names   map[string]struct{}
	members map[string][]string
}

// NewUniverse 由类全限定名构建 Universe，重复名称只保留一份
func NewUniverse(names []string) *Universe {
	u := &Universe{
		names:   make(map[string]struct{}, len(names)),
		members: make(map[string][]string),
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := u.names[name]; ok {
			continue
		}
		u.names[name] = struct{}{}
		pkg := PackageOf(name)
		u.members[pkg] = append(u.members[pkg], name)
	}
	for pkg := range u.members {
		sort.Strings(u.members[pkg])
	}
	return u
}

// Contains 判断类名是否属于本次分析
func (u *Universe) Contains(name string) bool {
	_, ok := u.names[name]
	return ok
}

// Members 返回包下的全部类，已排序
func (u *Universe) Members(pkg string) []string {
	return append([]string(nil), u.members[pkg]...)
}

// Size 类的数量
func (u *Universe) Size() int { return len(u.names) }

// Names 全部类名，已排序
func (u *Universe) Names() []string {
	names := make([]string, 0, len(u.names))
	for name := range u.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveImport 解析一条导入路径。
// 通配符导入 "p.*" 返回包 p 的全部成员；直接导入返回其自身。
// internal 为 false 时表示导入目标不在本次分析范围内。
func (u *Universe) ResolveImport(path string) (targets []string, internal bool) {
	if IsWildcardImport(path) {
		members := u.Members(strings.TrimSuffix(path, ".*"))
		return members, len(members) > 0
	}
	if u.Contains(path) {
		return []string{path}, true
	}
	return nil, false
}

// IsWildcardImport 判断是否为 "p.*" 形式的导入
func IsWildcardImport(path string) bool {
	return strings.HasSuffix(path, ".*")
}

// PackageOf 返回全限定名中最后一个 "." 之前的部分；没有 "." 时返回空串
func PackageOf(qn string) string {
	if i := strings.LastIndex(qn, "."); i >= 0 {
		return qn[:i]
	}
	return ""
}

// SimpleName 返回全限定名的最后一段
func SimpleName(qn string) string {
	if i := strings.LastIndex(qn, "."); i >= 0 {
		return qn[i+1:]
	}
	return qn
}
