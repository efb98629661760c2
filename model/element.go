package model

// ElementKind 声明类型的种类
type ElementKind string

const (
	Class      ElementKind = "CLASS"
	Interface  ElementKind = "INTERFACE"
	Struct     ElementKind = "STRUCT"
	Enum       ElementKind = "ENUM"
	Record     ElementKind = "RECORD"
	Annotation ElementKind = "ANNOTATION"
	NamedType  ElementKind = "TYPE" // Go 中非 struct/interface 的具名类型
	Unknown    ElementKind = "UNKNOWN"
)

// Location 描述了声明在源码中的位置
type Location struct {
	FilePath    string `json:"filePath"`
	StartLine   int    `json:"startLine"`
	EndLine     int    `json:"endLine"`
	StartColumn int    `json:"startColumn"`
	EndColumn   int    `json:"endColumn"`
}
