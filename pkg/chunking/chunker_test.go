package chunking

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyContent(t *testing.T) {
	assert.Empty(t, Split(""))
	assert.Empty(t, Split("   \n\n  \n\n\t"))
}

func TestSplitSmallContentIsOneChunk(t *testing.T) {
	content := "First paragraph.\n\nSecond paragraph."

	chunks := Split(content)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, content, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len(content), chunks[0].End)
}

func TestSplitWithoutBlankLinesIsSingleChunk(t *testing.T) {
	content := strings.Repeat("no paragraph breaks here ", 200)

	chunks := Split(content)

	require.Len(t, chunks, 1)
	assert.Greater(t, utf8.RuneCountInString(chunks[0].Content), DefaultMaxChunkSize)
}

func TestSplitFlushesBeforeExceedingLimit(t *testing.T) {
	p1 := strings.Repeat("a", 600)
	p2 := strings.Repeat("b", 600)
	p3 := strings.Repeat("c", 300)
	content := p1 + "\n\n" + p2 + "\n\n" + p3

	chunks := Split(content)

	require.Len(t, chunks, 2)
	assert.Equal(t, p1, chunks[0].Content)
	assert.Equal(t, p2+"\n\n"+p3, chunks[1].Content)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[1].Index)
}

func TestSplitCountsSeparatorTowardsLimit(t *testing.T) {
	// 499 + 2 + 500 = 1001，必须拆开
	content := strings.Repeat("x", 499) + "\n\n" + strings.Repeat("y", 500)

	chunks := Split(content)

	require.Len(t, chunks, 2)
}

func TestSplitOversizedParagraphStaysWhole(t *testing.T) {
	big := strings.Repeat("z", 1500)
	content := "intro\n\n" + big + "\n\noutro"

	chunks := Split(content)

	require.Len(t, chunks, 3)
	assert.Equal(t, "intro", chunks[0].Content)
	assert.Equal(t, big, chunks[1].Content)
	assert.Equal(t, "outro", chunks[2].Content)
}

func TestSplitOffsetsPointIntoOriginal(t *testing.T) {
	content := "  lead\n\n\n\n" + strings.Repeat("m", 995) + "\n\ntail  "

	for _, c := range Split(content) {
		assert.Equal(t, c.Content, content[c.Start:c.End])
	}
}

func TestSplitDropsBlankParagraphs(t *testing.T) {
	content := "alpha\n\n   \n\nbeta"

	chunks := Split(content)

	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha\n\nbeta", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len(content), chunks[0].End)
}

func TestSplitBlankParagraphsDoNotCountTowardsLimit(t *testing.T) {
	// 500 + 2 + 498 = 1000，中间的空白段落不占额度
	content := strings.Repeat("x", 500) + "\n\n" + strings.Repeat(" ", 40) + "\n\n" + strings.Repeat("y", 498)

	chunks := Split(content)

	require.Len(t, chunks, 1)
	assert.Equal(t, strings.Repeat("x", 500)+"\n\n"+strings.Repeat("y", 498), chunks[0].Content)
}

func TestSplitIsDeterministic(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString(strings.Repeat("word ", 10+i*3))
		b.WriteString("\n\n")
	}
	content := b.String()

	assert.Equal(t, Split(content), Split(content))
}

func TestSplitCoverageAndSizeBound(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 30; i++ {
		paragraphs = append(paragraphs, strings.TrimSpace(strings.Repeat("founder story ", 5+i*4)))
	}
	paragraphs = append(paragraphs, strings.Repeat("q", 1200))
	content := strings.Join(paragraphs, "\n\n")

	chunks := Split(content)
	require.NotEmpty(t, chunks)

	var rebuilt []string
	for _, c := range chunks {
		if utf8.RuneCountInString(c.Content) > DefaultMaxChunkSize {
			assert.NotContains(t, c.Content, "\n\n", "only a single paragraph may exceed the limit")
		}
		rebuilt = append(rebuilt, c.Content)
	}
	assert.Equal(t, strings.Join(paragraphs, "\n\n"), strings.Join(rebuilt, "\n\n"))
}

func TestSplitWithCustomSize(t *testing.T) {
	chunks := New(WithMaxChunkSize(10), WithKeywordLimit(0)).Split("aaaa\n\nbbbb\n\ncccc")

	require.Len(t, chunks, 2)
	assert.Equal(t, "aaaa\n\nbbbb", chunks[0].Content)
	assert.Equal(t, "cccc", chunks[1].Content)
	assert.Nil(t, chunks[0].Keywords)
}

func TestSplitAttachesKeywords(t *testing.T) {
	chunks := Split("Machine learning for climate. Learning never stops.")

	require.Len(t, chunks, 1)
	require.NotEmpty(t, chunks[0].Keywords)
	assert.Equal(t, "learning", chunks[0].Keywords[0])
}

func TestExtractKeywords(t *testing.T) {
	text := "Go services and Go tooling. The services handle payments; payments are hard. An ok go."

	keywords := ExtractKeywords(text, 3)

	assert.Equal(t, []string{"payments", "services", "handle"}, keywords)
	assert.Nil(t, ExtractKeywords("a an the of", 5))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"machine", "learning", "rocks"}, Tokenize("Machine-learning, it ROCKS!"))
}
