package core

import (
	"sort"
	"sync"

	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Project 被分析仓库的元信息
type Project struct {
	RootDir    string
	ModulePath string // Go 仓库的 module 路径，其他语言为空
}

// TypeEntry 文件中声明的一个类型
type TypeEntry struct {
	Name          string // 文件内可见的名称，嵌套类型形如 Outer.Inner
	QualifiedName string
	Kind          model.ElementKind
	Location      *model.Location
	Node          *sitter.Node // 保留 AST 节点引用用于第二阶段提取
}

type ImportEntry struct {
	RawImportPath string          `json:"RawImportPath"`
	Alias         string          `json:"Alias"`
	IsWildcard    bool            `json:"IsWildcard"`
	IsStatic      bool            `json:"IsStatic"`
	Location      *model.Location `json:"Location,omitempty"`
}

type FileContext struct {
	FilePath    string
	PackageName string
	RootNode    *sitter.Node
	SourceBytes []byte
	Types       []*TypeEntry            // 按源码顺序
	TypesBySN   map[string][]*TypeEntry // 短名 -> 定义
	Imports     []*ImportEntry          // 按源码顺序
	ImportsBySN map[string]*ImportEntry // 别名 -> 非通配符导入
	mutex       sync.RWMutex
}

func NewFileContext(filePath string, rootNode *sitter.Node, sourceBytes []byte) *FileContext {
	return &FileContext{
		FilePath:    filePath,
		RootNode:    rootNode,
		SourceBytes: sourceBytes,
		TypesBySN:   make(map[string][]*TypeEntry),
		ImportsBySN: make(map[string]*ImportEntry),
	}
}

// AddType 登记一个类型定义，可以用多个短名访问 (如 Inner 与 Outer.Inner)
func (fc *FileContext) AddType(entry *TypeEntry, shortNames ...string) {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	fc.Types = append(fc.Types, entry)
	for _, sn := range append([]string{entry.Name}, shortNames...) {
		fc.TypesBySN[sn] = append(fc.TypesBySN[sn], entry)
	}
}

func (fc *FileContext) AddImport(imp *ImportEntry) {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	fc.Imports = append(fc.Imports, imp)
	if !imp.IsWildcard {
		fc.ImportsBySN[imp.Alias] = imp
	}
}

// LocalType 按短名查找本文件中声明的类型
func (fc *FileContext) LocalType(name string) (*TypeEntry, bool) {
	fc.mutex.RLock()
	defer fc.mutex.RUnlock()

	entries := fc.TypesBySN[name]
	if len(entries) == 0 {
		return nil, false
	}
	return entries[0], true
}

// GlobalContext 第一阶段收集的全部文件与类型，第二阶段只读使用
type GlobalContext struct {
	Project      *Project
	FileContexts map[string]*FileContext
	TypesByQN    map[string]*TypeEntry
	Packages     map[string]bool // 含有已收集类型的包
	typeFiles    map[string]*FileContext
	resolver     SymbolResolver  // 持有具体语言的解析器
	mutex        sync.RWMutex
}

func NewGlobalContext(project *Project, resolver SymbolResolver) *GlobalContext {
	if project == nil {
		project = &Project{}
	}
	return &GlobalContext{
		Project:      project,
		FileContexts: make(map[string]*FileContext),
		TypesByQN:    make(map[string]*TypeEntry),
		Packages:     make(map[string]bool),
		typeFiles:    make(map[string]*FileContext),
		resolver:     resolver,
	}
}

// RegisterFileContext 注册文件及其声明的类型；同名类型以先注册者为准
func (gc *GlobalContext) RegisterFileContext(fc *FileContext) {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()

	gc.FileContexts[fc.FilePath] = fc
	if fc.PackageName != "" {
		gc.Packages[fc.PackageName] = true
	}
	for _, entry := range fc.Types {
		if _, exists := gc.TypesByQN[entry.QualifiedName]; !exists {
			gc.TypesByQN[entry.QualifiedName] = entry
			gc.typeFiles[entry.QualifiedName] = fc
		}
	}
}

// Declaration 返回全限定名对应的生效定义及其所在文件
func (gc *GlobalContext) Declaration(qn string) (*TypeEntry, *FileContext, bool) {
	gc.mutex.RLock()
	defer gc.mutex.RUnlock()

	entry, ok := gc.TypesByQN[qn]
	if !ok {
		return nil, nil, false
	}
	return entry, gc.typeFiles[qn], true
}

// Shadowed 同名类型已由其他文件先行注册时返回 true
func (gc *GlobalContext) Shadowed(entry *TypeEntry) bool {
	gc.mutex.RLock()
	defer gc.mutex.RUnlock()

	registered, ok := gc.TypesByQN[entry.QualifiedName]
	return ok && registered != entry
}

// HasType 判断全限定名是否为项目内类型
func (gc *GlobalContext) HasType(qn string) bool {
	gc.mutex.RLock()
	defer gc.mutex.RUnlock()

	_, ok := gc.TypesByQN[qn]
	return ok
}

// HasPackage 判断包是否属于项目
func (gc *GlobalContext) HasPackage(pkg string) bool {
	gc.mutex.RLock()
	defer gc.mutex.RUnlock()

	return gc.Packages[pkg]
}

// ResolveType 由 Resolver 驱动
func (gc *GlobalContext) ResolveType(fc *FileContext, typeName string) (string, bool) {
	return gc.resolver.ResolveType(gc, fc, typeName)
}

func (gc *GlobalContext) BuildQualifiedName(parentQN, name string) string {
	return gc.resolver.BuildQualifiedName(parentQN, name)
}

// Universe 由已收集的类型构建 Universe
func (gc *GlobalContext) Universe() *Universe {
	gc.mutex.RLock()
	defer gc.mutex.RUnlock()

	names := make([]string, 0, len(gc.TypesByQN))
	for qn := range gc.TypesByQN {
		names = append(names, qn)
	}
	return NewUniverse(names)
}

// SortedFiles 按路径排序的文件上下文
func (gc *GlobalContext) SortedFiles() []*FileContext {
	gc.mutex.RLock()
	defer gc.mutex.RUnlock()

	paths := make([]string, 0, len(gc.FileContexts))
	for p := range gc.FileContexts {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	files := make([]*FileContext, len(paths))
	for i, p := range paths {
		files[i] = gc.FileContexts[p]
	}
	return files
}

func (gc *GlobalContext) RLock() { gc.mutex.RLock() }

func (gc *GlobalContext) RUnlock() { gc.mutex.RUnlock() }
