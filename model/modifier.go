package model

import (
	"sort"
	"strings"
)

// ModifierType 规范化后的修饰符
type ModifierType string

const (
	Public       ModifierType = "PUBLIC"
	Protected    ModifierType = "PROTECTED"
	Private      ModifierType = "PRIVATE"
	Abstract     ModifierType = "ABSTRACT"
	Static       ModifierType = "STATIC"
	Final        ModifierType = "FINAL"
	Sealed       ModifierType = "SEALED"
	NonSealed    ModifierType = "NON_SEALED"
	Transient    ModifierType = "TRANSIENT"
	Volatile     ModifierType = "VOLATILE"
	Synchronized ModifierType = "SYNCHRONIZED"
	Native       ModifierType = "NATIVE"
	Strictfp     ModifierType = "STRICTFP"
	Default      ModifierType = "DEFAULT"
)

// modifierOrder 决定 ModifierSet 的规范顺序
var modifierOrder = []ModifierType{
	Public, Protected, Private, Abstract, Static, Final, Sealed, NonSealed,
	Transient, Volatile, Synchronized, Native, Strictfp, Default,
}

var modifierRank = func() map[ModifierType]int {
	m := make(map[ModifierType]int, len(modifierOrder))
	for i, t := range modifierOrder {
		m[t] = i
	}
	return m
}()

// ModifierSet 去重且有序的修饰符集合
type ModifierSet []ModifierType

// ParseModifiers 将源码中的修饰符 token 规范化。无法识别的 token (注解等) 被丢弃。
func ParseModifiers(tokens []string) ModifierSet {
	seen := make(map[ModifierType]bool, len(tokens))
	set := make(ModifierSet, 0, len(tokens))
	for _, tok := range tokens {
		m := ModifierType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(tok), "-", "_")))
		if _, ok := modifierRank[m]; !ok || seen[m] {
			continue
		}
		seen[m] = true
		set = append(set, m)
	}
	sort.Slice(set, func(i, j int) bool { return modifierRank[set[i]] < modifierRank[set[j]] })
	return set
}

// Has 判断集合中是否包含指定修饰符
func (s ModifierSet) Has(m ModifierType) bool {
	for _, x := range s {
		if x == m {
			return true
		}
	}
	return false
}
