package filter

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Result 过滤结果
type Result struct {
	IsClean  bool   `json:"is_clean"`
	Category string `json:"category,omitempty"` // sensitive_words / pattern_match
	Reason   string `json:"reason,omitempty"`
}

// ContentFilterService 内容过滤服务，检查敏感词和正则规则
type ContentFilterService struct {
	sensitiveWords map[string]struct{}
	regexPatterns  []*regexp.Regexp
	mu             sync.RWMutex
}

// NewContentFilterService 创建新的内容过滤服务
func NewContentFilterService() *ContentFilterService {
	return &ContentFilterService{
		sensitiveWords: make(map[string]struct{}),
		regexPatterns:  make([]*regexp.Regexp, 0),
	}
}

// NewFromConfig 按敏感词和正则列表构建过滤服务
func NewFromConfig(words, patterns []string) (*ContentFilterService, error) {
	s := NewContentFilterService()
	s.LoadSensitiveWords(words)
	for _, pattern := range patterns {
		if err := s.AddRegexPattern(pattern); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadSensitiveWords 加载敏感词列表
func (s *ContentFilterService) LoadSensitiveWords(words []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" {
			s.sensitiveWords[word] = struct{}{}
		}
	}
}

// AddRegexPattern 添加正则表达式模式
func (s *ContentFilterService) AddRegexPattern(pattern string) error {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %v", err)
	}

	s.mu.Lock()
	s.regexPatterns = append(s.regexPatterns, regex)
	s.mu.Unlock()

	return nil
}

// Check 过滤内容
func (s *ContentFilterService) Check(content string) Result {
	if found, word := s.checkSensitiveWords(content); found {
		return Result{
			Category: "sensitive_words",
			Reason:   fmt.Sprintf("Contains sensitive word: %s", word),
		}
	}

	if found, pattern := s.checkRegexPatterns(content); found {
		return Result{
			Category: "pattern_match",
			Reason:   fmt.Sprintf("Matches forbidden pattern: %s", pattern),
		}
	}

	return Result{IsClean: true}
}

// checkSensitiveWords 检查敏感词
func (s *ContentFilterService) checkSensitiveWords(content string) (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content = strings.ToLower(content)
	for word := range s.sensitiveWords {
		if strings.Contains(content, word) {
			return true, word
		}
	}
	return false, ""
}

// checkRegexPatterns 检查正则表达式模式
func (s *ContentFilterService) checkRegexPatterns(content string) (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, pattern := range s.regexPatterns {
		if pattern.MatchString(content) {
			return true, pattern.String()
		}
	}
	return false, ""
}
