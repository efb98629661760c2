package noisefilter

import (
	"strings"

	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
)

// NoiseFilter 定义了如何识别特定语言中的背景噪音 (标准库等保留前缀)
type NoiseFilter interface {
	IsNoise(qualifiedName string) bool
}

var noiseFilterMap = make(map[model.Language]NoiseFilter)

// RegisterNoiseFilter 注册一个语言与其对应的 NoiseFilter
func RegisterNoiseFilter(lang model.Language, noiseFilter NoiseFilter) {
	noiseFilterMap[lang] = noiseFilter
}

// GetNoiseFilter 根据语言类型获取对应的 NoiseFilter 实例。
func GetNoiseFilter(lang model.Language) NoiseFilter {
	noiseFilter, ok := noiseFilterMap[lang]
	if !ok {
		// 如果没注册，返回一个默认不进行过滤的过滤器
		return &DefaultNoiseFilter{}
	}

	return noiseFilter
}

// DefaultNoiseFilter 默认过滤器：不对任何 QN 进行噪音判定
type DefaultNoiseFilter struct{}

func (d *DefaultNoiseFilter) IsNoise(qn string) bool { return false }

// PrefixFilter 以字符串前缀判定噪音。前缀按原样比较，"java" 同时匹配 "java.util" 与 "javax.swing"。
type PrefixFilter struct {
	prefixes []string
}

func NewPrefixFilter(prefixes ...string) *PrefixFilter {
	var kept []string
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return &PrefixFilter{prefixes: kept}
}

func (f *PrefixFilter) IsNoise(qn string) bool {
	for _, p := range f.prefixes {
		if strings.HasPrefix(qn, p) {
			return true
		}
	}
	return false
}

// Prefixes 返回前缀列表的副本
func (f *PrefixFilter) Prefixes() []string {
	return append([]string(nil), f.prefixes...)
}

// Any 组合多个过滤器，任一判定为噪音即为噪音
type Any []NoiseFilter

func (a Any) IsNoise(qn string) bool {
	for _, f := range a {
		if f != nil && f.IsNoise(qn) {
			return true
		}
	}
	return false
}

// ForLanguage 返回语言注册的过滤器，并追加额外前缀
func ForLanguage(lang model.Language, extraPrefixes ...string) NoiseFilter {
	base := GetNoiseFilter(lang)
	if len(extraPrefixes) == 0 {
		return base
	}
	return Any{base, NewPrefixFilter(extraPrefixes...)}
}
