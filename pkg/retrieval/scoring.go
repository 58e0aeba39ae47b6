package retrieval

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	phraseBonus  = 10.0
	keywordBonus = 5.0
)

// ErrDimensionMismatch 两个向量长度不同
var ErrDimensionMismatch = errors.New("vectors must have the same length")

// QueryTokens 小写后按空白切分，丢弃长度不超过 2 的词
func QueryTokens(query string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(word) > 2 {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// KeywordScore 计算块对查询的关键词得分，按每 100 个字符归一化
func KeywordScore(content string, keywords []string, query string, tokens []string) float64 {
	length := utf8.RuneCountInString(content)
	if length == 0 || len(tokens) == 0 {
		return 0
	}
	lower := strings.ToLower(content)

	score := 0.0
	for _, token := range tokens {
		score += float64(strings.Count(lower, token))
	}

	if strings.Contains(lower, strings.ToLower(query)) {
		score += phraseBonus
	}

	if len(keywords) > 0 {
		wanted := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			wanted[token] = struct{}{}
		}
		for _, keyword := range keywords {
			if _, ok := wanted[keyword]; ok {
				score += keywordBonus
				delete(wanted, keyword)
			}
		}
	}

	return score / (float64(length) / 100)
}

// CosineSimilarity 点积除以两个 L2 范数之积，任一向量为零向量时返回 0
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
