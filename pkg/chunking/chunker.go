// Package chunking 把文档按段落切分成适合检索的块
package chunking

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxChunkSize 每块的字符上限
const DefaultMaxChunkSize = 1000

// DefaultKeywordLimit 每块提取的关键词数量
const DefaultKeywordLimit = 10

const paragraphSeparator = "\n\n"

// Chunk 切分结果，Start/End 为块在原文中覆盖范围的字节偏移。
// 块内段落以单个空行重新拼接，空白段落被丢弃
type Chunk struct {
	Index    int
	Content  string
	Start    int
	End      int
	Keywords []string
}

// Chunker 段落切分器
type Chunker struct {
	maxChunkSize int
	keywordLimit int
}

// Option 配置切分器
type Option func(*Chunker)

// WithMaxChunkSize 设置每块的字符上限
func WithMaxChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.maxChunkSize = size
		}
	}
}

// WithKeywordLimit 设置每块的关键词数量，0 表示不提取
func WithKeywordLimit(limit int) Option {
	return func(c *Chunker) {
		if limit >= 0 {
			c.keywordLimit = limit
		}
	}
}

// New 创建切分器
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxChunkSize: DefaultMaxChunkSize,
		keywordLimit: DefaultKeywordLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type paragraph struct {
	start int
	end   int
}

// splitParagraphs 按空行切分，跳过空白段落
func splitParagraphs(content string) []paragraph {
	var paragraphs []paragraph
	pos := 0
	for {
		i := strings.Index(content[pos:], paragraphSeparator)
		end := len(content)
		if i >= 0 {
			end = pos + i
		}
		if strings.TrimSpace(content[pos:end]) != "" {
			paragraphs = append(paragraphs, paragraph{start: pos, end: end})
		}
		if i < 0 {
			return paragraphs
		}
		pos = end + len(paragraphSeparator)
	}
}

// Split 贪心地把段落累积进缓冲区，加入下一段会超过上限时先输出当前缓冲。
// 单个超长段落不再细分，原样成为一块。
func (c *Chunker) Split(content string) []Chunk {
	var (
		chunks []Chunk
		buf    []paragraph
		size   int
	)
	for _, p := range splitParagraphs(content) {
		n := utf8.RuneCountInString(content[p.start:p.end])
		if len(buf) > 0 && size+len(paragraphSeparator)+n > c.maxChunkSize {
			chunks = c.appendChunk(chunks, content, buf)
			buf, size = nil, 0
		}
		if len(buf) > 0 {
			size += len(paragraphSeparator)
		}
		size += n
		buf = append(buf, p)
	}
	if len(buf) == 0 {
		return chunks
	}
	return c.appendChunk(chunks, content, buf)
}

func (c *Chunker) appendChunk(chunks []Chunk, content string, buf []paragraph) []Chunk {
	parts := make([]string, len(buf))
	for i, p := range buf {
		parts[i] = content[p.start:p.end]
	}
	text := strings.TrimSpace(strings.Join(parts, paragraphSeparator))

	first, last := parts[0], parts[len(parts)-1]
	chunk := Chunk{
		Index:   len(chunks),
		Content: text,
		Start:   buf[0].start + len(first) - len(strings.TrimLeftFunc(first, unicode.IsSpace)),
		End:     buf[len(buf)-1].end - (len(last) - len(strings.TrimRightFunc(last, unicode.IsSpace))),
	}
	if c.keywordLimit > 0 {
		chunk.Keywords = ExtractKeywords(text, c.keywordLimit)
	}
	return append(chunks, chunk)
}

// Split 使用默认配置切分
func Split(content string) []Chunk {
	return New().Split(content)
}
