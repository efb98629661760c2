package model

import (
	"errors"
	"fmt"
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Language 标识支持的编程语言
type Language string

const (
	LangGo   Language = "go"
	LangJava Language = "java"
)

// ErrLanguageNotRegistered 语言或其某个组件没有注册
var ErrLanguageNotRegistered = errors.New("language not registered")

// langMap 存储语言标识到 Tree-sitter 语言对象的映射
var langMap = make(map[Language]*sitter.Language)

// extMap 存储语言标识到源文件扩展名的映射
var extMap = make(map[Language]string)

// RegisterLanguage 用于注册 Tree-sitter 语言库及其源文件扩展名
func RegisterLanguage(lang Language, tsLang *sitter.Language, fileExt string) {
	langMap[lang] = tsLang
	extMap[lang] = fileExt
}

// GetLanguage 获取已注册的 Tree-sitter 语言对象
func GetLanguage(lang Language) (*sitter.Language, error) {
	tsLang, ok := langMap[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotRegistered, lang)
	}

	return tsLang, nil
}

// FileExtension 返回语言对应的源文件扩展名，如 ".java"
func FileExtension(lang Language) (string, error) {
	ext, ok := extMap[lang]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrLanguageNotRegistered, lang)
	}

	return ext, nil
}

// Languages 返回所有已注册语言，按名称排序
func Languages() []Language {
	langs := make([]Language, 0, len(langMap))
	for lang := range langMap {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}
