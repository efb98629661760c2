package model

// DefaultPackage 无包声明的类使用的占位包名
const DefaultPackage = "$"

// Declaration 类上的声明：包、属性、构造函数、方法
type Declaration interface {
	declaration()
}

// PackageDeclaration 类所在的包
type PackageDeclaration struct {
	Name string `json:"name"`
}

// ParameterDeclaration 形参
type ParameterDeclaration struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// AttributeDeclaration 成员属性
type AttributeDeclaration struct {
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Value     string      `json:"value,omitempty"`
	Modifiers ModifierSet `json:"modifiers"`
}

// ConstructorDeclaration 构造函数
type ConstructorDeclaration struct {
	Name       string                 `json:"name"`
	Modifiers  ModifierSet            `json:"modifiers"`
	Parameters []ParameterDeclaration `json:"parameters"`
}

// MethodDeclaration 方法
type MethodDeclaration struct {
	Name       string                 `json:"name"`
	ReturnType string                 `json:"returnType"`
	Modifiers  ModifierSet            `json:"modifiers"`
	Parameters []ParameterDeclaration `json:"parameters"`
}

func (PackageDeclaration) declaration()     {}
func (AttributeDeclaration) declaration()   {}
func (ConstructorDeclaration) declaration() {}
func (MethodDeclaration) declaration()      {}
