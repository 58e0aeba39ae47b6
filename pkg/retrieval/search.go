// Package retrieval 在用户的文档块上做关键词检索，并为AI分身组装上下文
package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/BinLe1988/cofounder-match/models"

	"gorm.io/gorm"
)

// 上下文检索模式
const (
	ModeKeyword = "keyword"
	ModeNone    = "none"
)

// DocumentRef 命中块所属文档
type DocumentRef struct {
	ID         string                  `json:"id"`
	Title      string                  `json:"title"`
	SourceType models.SourceType       `json:"sourceType"`
	SourceURL  string                  `json:"sourceUrl,omitempty"`
	Metadata   models.DocumentMetadata `json:"metadata"`
}

// ChunkMatch 检索命中的块
type ChunkMatch struct {
	ChunkID    string      `json:"chunkId"`
	Content    string      `json:"content"`
	ChunkIndex int         `json:"chunkIndex"`
	Score      float64     `json:"score"`
	Document   DocumentRef `json:"document"`
}

// Options 检索配置
type Options struct {
	Mode       string
	Limit      int
	PublicOnly bool
	// HistoryTopUp 新消息命中不足时用近期用户发言补足
	HistoryTopUp bool
}

// HybridWeights 混合检索的权重
type HybridWeights struct {
	Vector  float64
	Keyword float64
}

// Service 检索服务
type Service struct {
	db   *gorm.DB
	opts Options
}

// NewService 创建检索服务
func NewService(db *gorm.DB, opts Options) *Service {
	if opts.Limit <= 0 {
		opts.Limit = 5
	}
	if opts.Mode == "" {
		opts.Mode = ModeKeyword
	}
	return &Service{db: db, opts: opts}
}

// KeywordSearch 对 ownerID 的全部文档块做关键词打分，丢弃得分不大于 0 的块
func (s *Service) KeywordSearch(ctx context.Context, query, ownerID string, limit int) ([]ChunkMatch, error) {
	return s.keywordSearch(ctx, query, ownerID, limit, false)
}

func (s *Service) keywordSearch(ctx context.Context, query, ownerID string, limit int, publicOnly bool) ([]ChunkMatch, error) {
	tokens := QueryTokens(query)
	if len(tokens) == 0 {
		return []ChunkMatch{}, nil
	}

	q := s.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if publicOnly {
		q = q.Where("document_id IN (?)", s.db.Model(&models.Document{}).
			Select("id").Where("user_id = ? AND is_public = ?", ownerID, true))
	}

	var chunks []models.DocumentChunk
	if err := q.Order("document_id, chunk_index").Find(&chunks).Error; err != nil {
		return nil, err
	}

	type scored struct {
		chunk *models.DocumentChunk
		score float64
	}
	var hits []scored
	docIDs := make(map[string]struct{})
	for i := range chunks {
		score := KeywordScore(chunks[i].Content, chunks[i].Keywords, query, tokens)
		if score <= 0 {
			continue
		}
		hits = append(hits, scored{chunk: &chunks[i], score: score})
		docIDs[chunks[i].DocumentID] = struct{}{}
	}
	if len(hits) == 0 {
		return []ChunkMatch{}, nil
	}

	documents, err := s.loadDocuments(ctx, docIDs)
	if err != nil {
		return nil, err
	}

	results := make([]ChunkMatch, 0, len(hits))
	for _, hit := range hits {
		doc, ok := documents[hit.chunk.DocumentID]
		if !ok {
			continue
		}
		results = append(results, ChunkMatch{
			ChunkID:    hit.chunk.ID,
			Content:    hit.chunk.Content,
			ChunkIndex: hit.chunk.ChunkIndex,
			Score:      hit.score,
			Document: DocumentRef{
				ID:         doc.ID,
				Title:      doc.Title,
				SourceType: doc.SourceType,
				SourceURL:  doc.SourceURL,
				Metadata:   doc.Metadata.Data(),
			},
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Service) loadDocuments(ctx context.Context, ids map[string]struct{}) (map[string]*models.Document, error) {
	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}

	var docs []models.Document
	if err := s.db.WithContext(ctx).Where("id IN ?", list).Find(&docs).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Document, len(docs))
	for i := range docs {
		byID[docs[i].ID] = &docs[i]
	}
	return byID, nil
}

// SemanticSearch 向量检索，尚未接入向量生成，返回空结果
func (s *Service) SemanticSearch(ctx context.Context, query, ownerID string, limit int) ([]ChunkMatch, error) {
	return []ChunkMatch{}, nil
}

// HybridSearch 向量与关键词加权检索，尚未接入向量生成，返回空结果
func (s *Service) HybridSearch(ctx context.Context, query, ownerID string, limit int, weights HybridWeights) ([]ChunkMatch, error) {
	return []ChunkMatch{}, nil
}

// ContextForChat 用新消息为AI分身回复检索上下文，开启 HistoryTopUp 时用近期用户发言补足
func (s *Service) ContextForChat(ctx context.Context, ownerID, message string, history []models.AiChatMessage) ([]ChunkMatch, error) {
	if s.opts.Mode == ModeNone {
		return []ChunkMatch{}, nil
	}

	results, err := s.keywordSearch(ctx, message, ownerID, s.opts.Limit, s.opts.PublicOnly)
	if err != nil {
		return nil, err
	}
	if !s.opts.HistoryTopUp || len(results) >= s.opts.Limit {
		return results, nil
	}

	var turns []string
	for _, m := range history {
		if m.Role == models.RoleUser && m.Content != message {
			turns = append(turns, m.Content)
		}
	}
	if len(turns) == 0 {
		return results, nil
	}

	extra, err := s.keywordSearch(ctx, strings.Join(turns, " "), ownerID, s.opts.Limit, s.opts.PublicOnly)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		seen[r.ChunkID] = struct{}{}
	}
	for _, r := range extra {
		if len(results) >= s.opts.Limit {
			break
		}
		if _, dup := seen[r.ChunkID]; dup {
			continue
		}
		seen[r.ChunkID] = struct{}{}
		results = append(results, r)
	}
	return results, nil
}

// Sources 把命中转换为消息来源，同一文档只保留最高分
func Sources(matches []ChunkMatch) []models.MessageSource {
	sources := make([]models.MessageSource, 0, len(matches))
	index := make(map[string]int)
	for _, m := range matches {
		if i, ok := index[m.Document.ID]; ok {
			if m.Score > sources[i].RelevanceScore {
				sources[i].RelevanceScore = m.Score
			}
			continue
		}
		index[m.Document.ID] = len(sources)
		sources = append(sources, models.MessageSource{
			DocumentID:     m.Document.ID,
			Title:          m.Document.Title,
			RelevanceScore: m.Score,
		})
	}
	return sources
}
