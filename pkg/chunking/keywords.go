package chunking

import (
	"sort"
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {}, "all": {},
	"any": {}, "can": {}, "had": {}, "her": {}, "was": {}, "one": {}, "our": {}, "out": {},
	"has": {}, "have": {}, "him": {}, "his": {}, "how": {}, "its": {}, "may": {}, "new": {},
	"now": {}, "see": {}, "two": {}, "way": {}, "who": {}, "did": {}, "get": {}, "she": {},
	"too": {}, "use": {}, "that": {}, "with": {}, "this": {}, "from": {}, "they": {}, "will": {},
	"would": {}, "there": {}, "their": {}, "what": {}, "about": {}, "which": {}, "when": {},
	"make": {}, "like": {}, "just": {}, "been": {}, "into": {}, "than": {}, "them": {},
	"then": {}, "some": {}, "were": {}, "your": {}, "also": {}, "more": {}, "very": {},
	"only": {}, "other": {}, "these": {}, "those": {}, "because": {}, "while": {}, "where": {},
	"being": {}, "each": {}, "over": {}, "such": {}, "should": {}, "could": {}, "here": {},
}

// Tokenize 小写并按非字母数字切分，丢弃长度不超过 2 的词
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// ExtractKeywords 取出现频率最高的非停用词，频率相同按字母序
func ExtractKeywords(text string, limit int) []string {
	counts := make(map[string]int)
	for _, token := range Tokenize(text) {
		if _, stop := stopWords[token]; stop {
			continue
		}
		counts[token]++
	}
	if len(counts) == 0 {
		return nil
	}

	keywords := make([]string, 0, len(counts))
	for token := range counts {
		keywords = append(keywords, token)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if limit > 0 && len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}
