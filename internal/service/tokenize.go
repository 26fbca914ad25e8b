package service

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TokenSet 小写词集合
type TokenSet map[string]struct{}

// Tokenize 转小写后按非字母数字字符切分
func Tokenize(s string) TokenSet {
	lower := cases.Lower(language.Und).String(s)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(TokenSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Jaccard |A∩B| / |A∪B|，同时返回排序后的交集词；任一为空返回 0
func Jaccard(a, b TokenSet) (float64, []string) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var shared []string
	for tok := range small {
		if _, ok := large[tok]; ok {
			shared = append(shared, tok)
		}
	}
	if len(shared) == 0 {
		return 0, nil
	}
	sort.Strings(shared)
	union := len(a) + len(b) - len(shared)
	return float64(len(shared)) / float64(union), shared
}
