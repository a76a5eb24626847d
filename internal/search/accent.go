// Package search 提供店铺/商品名的模糊匹配：大小写不敏感，西语重音字母视作等价。
package search

import (
	"regexp"
	"strings"
)

// accentClasses 把元音映射为“带 / 不带重音”等价类；集合很小，直接枚举。
var accentClasses = map[rune]string{
	'a': "[aá]",
	'á': "[aá]",
	'e': "[eé]",
	'é': "[eé]",
	'i': "[ií]",
	'í': "[ií]",
	'o': "[oó]",
	'ó': "[oó]",
	'u': "[uúü]",
	'ú': "[uúü]",
	'ü': "[uúü]",
}

// AccentPattern 把用户输入编译为重音不敏感、大小写不敏感的正则。
// 输入先做字面转义，不给调用方注入正则语法的机会。
func AccentPattern(text string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?i)")
	for _, r := range strings.ToLower(text) {
		if class, ok := accentClasses[r]; ok {
			b.WriteString(class)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return regexp.Compile(b.String())
}

// Matches 报告 name 是否包含 query（重音/大小写不敏感）。query 为空视作全匹配。
func Matches(query string, name string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	re, err := AccentPattern(query)
	if err != nil {
		return false
	}
	return re.MatchString(name)
}
