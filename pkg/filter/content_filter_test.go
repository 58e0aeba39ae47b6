package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSensitiveWords(t *testing.T) {
	s := NewContentFilterService()
	s.LoadSensitiveWords([]string{"Scam", "  ", "wire me"})

	result := s.Check("This is a SCAM offer")
	assert.False(t, result.IsClean)
	assert.Equal(t, "sensitive_words", result.Category)
	assert.Contains(t, result.Reason, "scam")

	assert.True(t, s.Check("Let's build something together").IsClean)
}

func TestCheckPatterns(t *testing.T) {
	s, err := NewFromConfig(nil, []string{`\b\d{16}\b`})
	require.NoError(t, err)

	result := s.Check("my card is 1234567812345678")
	assert.False(t, result.IsClean)
	assert.Equal(t, "pattern_match", result.Category)

	assert.True(t, s.Check("call me at 5pm").IsClean)
}

func TestNewFromConfigRejectsBadPattern(t *testing.T) {
	_, err := NewFromConfig([]string{"spam"}, []string{"("})
	assert.Error(t, err)
}

func TestEmptyFilterAllowsEverything(t *testing.T) {
	assert.True(t, NewContentFilterService().Check("anything goes").IsClean)
}
