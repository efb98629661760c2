package model

// ClassFacts 事实源为单个类提供的原始事实，是 Transformer 的唯一输入
type ClassFacts struct {
	ClassName   string      `json:"className"` // 全限定名
	PackageName string      `json:"packageName,omitempty"`
	Kind        ElementKind `json:"kind,omitempty"`
	Location    *Location   `json:"location,omitempty"`

	Attributes   []AttributeFact `json:"attributes,omitempty"`
	Constructors []CallableFact  `json:"constructors,omitempty"`
	Methods      []CallableFact  `json:"methods,omitempty"`

	// Imports 原样的导入路径，通配符导入以 ".*" 结尾
	Imports []string `json:"imports,omitempty"`

	ConstructorCalls []ConstructorCallFact `json:"constructorCalls,omitempty"`
	MethodCalls      []MethodCallFact      `json:"methodCalls,omitempty"`

	// 事实源已判定为外部的调用
	ExternalAttributes   []string `json:"externalAttributes,omitempty"`
	ExternalConstructors []string `json:"externalConstructors,omitempty"`
	ExternalMethods      []string `json:"externalMethods,omitempty"`
}

// AttributeFact 成员属性。QualifiedType 为事实源解析出的全限定类型，解析失败时为空。
type AttributeFact struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	QualifiedType string   `json:"qualifiedType,omitempty"`
	Value         string   `json:"value,omitempty"`
	Modifiers     []string `json:"modifiers,omitempty"`
}

// VariableFact 形参或局部变量
type VariableFact struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	QualifiedType string `json:"qualifiedType,omitempty"`
}

// CallableFact 构造函数或方法
type CallableFact struct {
	Name           string         `json:"name"`
	ReturnType     string         `json:"returnType,omitempty"`
	Modifiers      []string       `json:"modifiers,omitempty"`
	Parameters     []VariableFact `json:"parameters,omitempty"`
	LocalVariables []VariableFact `json:"localVariables,omitempty"`
}

// ConstructorCallFact 构造调用点，ClassName 为被构造类型的全限定名
type ConstructorCallFact struct {
	ClassName string   `json:"className"`
	Arguments []string `json:"arguments,omitempty"`
}

// MethodCallFact 方法调用点，CalleeName 为方法所属类型的全限定名
type MethodCallFact struct {
	CalleeName string   `json:"calleeName"`
	MethodName string   `json:"methodName"`
	Arguments  []string `json:"arguments,omitempty"`
}

// EffectiveType 优先返回解析后的全限定类型
func (a AttributeFact) EffectiveType() string {
	if a.QualifiedType != "" {
		return a.QualifiedType
	}
	return a.Type
}

// EffectiveType 优先返回解析后的全限定类型
func (v VariableFact) EffectiveType() string {
	if v.QualifiedType != "" {
		return v.QualifiedType
	}
	return v.Type
}
