package model

import "fmt"

// ParameterPlaceholder 外部构造函数/方法调用的占位实参
const ParameterPlaceholder = "parameter_placeholder"

// InvocationKind 调用记录的种类
type InvocationKind int

const (
	PackageInvocation InvocationKind = iota
	AttributeInvocation
	ConstructorInvocation
	MethodInvocation
)

// InvocationKinds 所有调用种类，按固定顺序
var InvocationKinds = []InvocationKind{PackageInvocation, AttributeInvocation, ConstructorInvocation, MethodInvocation}

func (k InvocationKind) String() string {
	switch k {
	case PackageInvocation:
		return "PACKAGE"
	case AttributeInvocation:
		return "ATTRIBUTE"
	case ConstructorInvocation:
		return "CONSTRUCTOR"
	case MethodInvocation:
		return "METHOD"
	default:
		return fmt.Sprintf("InvocationKind(%d)", int(k))
	}
}

// Valid 判断是否为已定义的种类
func (k InvocationKind) Valid() bool {
	return k >= PackageInvocation && k <= MethodInvocation
}

// Invocation 一次调用记录。只有构造函数与方法调用携带实参。
type Invocation struct {
	Name             string   `json:"name"`
	PassedParameters []string `json:"passedParameters,omitempty"`
}

func NewPackageInvocation(name string) Invocation {
	return Invocation{Name: name}
}

func NewAttributeInvocation(name string) Invocation {
	return Invocation{Name: name}
}

func NewConstructorInvocation(name string, args []string) Invocation {
	return Invocation{Name: name, PassedParameters: cloneStrings(args)}
}

func NewMethodInvocation(name string, args []string) Invocation {
	return Invocation{Name: name, PassedParameters: cloneStrings(args)}
}

// Clone 返回独立副本，两侧边各自持有自己的记录
func (i Invocation) Clone() Invocation {
	return Invocation{Name: i.Name, PassedParameters: cloneStrings(i.PassedParameters)}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
