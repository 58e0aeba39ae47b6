package models

import (
	"time"

	"gorm.io/datatypes"
)

// SourceType 文档来源
type SourceType string

const (
	SourcePDF     SourceType = "pdf"
	SourceSocial  SourceType = "social"
	SourceManual  SourceType = "manual"
	SourceWebsite SourceType = "website"
)

// Valid 是否为合法来源
func (s SourceType) Valid() bool {
	switch s {
	case SourcePDF, SourceSocial, SourceManual, SourceWebsite:
		return true
	}
	return false
}

// DocumentMetadata 文档附加信息
type DocumentMetadata struct {
	Platform    string   `json:"platform,omitempty"` // twitter/github/linkedin ...
	Author      string   `json:"author,omitempty"`
	PublishedAt int64    `json:"publishedAt,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Document 用户上传或撰写的文档
type Document struct {
	Base
	UserID      string                               `gorm:"size:36;not null;index:idx_doc_user_public,priority:1" json:"userId"`
	Title       string                               `gorm:"size:255;not null" json:"title"`
	Content     string                               `gorm:"type:text" json:"content"`
	SourceType  SourceType                           `gorm:"size:20;not null" json:"sourceType"`
	SourceURL   string                               `gorm:"size:512" json:"sourceUrl,omitempty"`
	FileID      string                               `gorm:"size:64" json:"fileId,omitempty"`
	FileType    string                               `gorm:"size:100" json:"fileType,omitempty"`
	Metadata    datatypes.JSONType[DocumentMetadata] `json:"metadata"`
	UploadedAt  time.Time                            `gorm:"not null" json:"uploadedAt"`
	ProcessedAt *time.Time                           `json:"processedAt,omitempty"`
	IsPublic    bool                                 `gorm:"index:idx_doc_user_public,priority:2" json:"isPublic"` // 是否允许他人的AI分身使用
	IsProcessed bool                                 `json:"isProcessed"`
}

// DocumentChunk 文档切块，随文档内容变化整体重建
type DocumentChunk struct {
	Base
	DocumentID     string                       `gorm:"size:36;not null;index" json:"documentId"`
	UserID         string                       `gorm:"size:36;not null;index" json:"userId"`
	Content        string                       `gorm:"type:text;not null" json:"content"`
	ChunkIndex     int                          `gorm:"not null" json:"chunkIndex"`
	StartIndex     int                          `json:"startIndex"`
	EndIndex       int                          `json:"endIndex"`
	Embedding      datatypes.JSONSlice[float64] `json:"embedding,omitempty"`
	EmbeddingModel string                       `gorm:"size:100" json:"embeddingModel,omitempty"`
	Keywords       datatypes.JSONSlice[string]  `json:"keywords,omitempty"`
}

// UploadDocumentRequest 上传文档请求
type UploadDocumentRequest struct {
	Title      string            `json:"title" binding:"required,max=255"`
	Content    string            `json:"content"`
	FileID     string            `json:"fileId"`
	FileType   string            `json:"fileType"`
	IsPublic   bool              `json:"isPublic"`
	SourceType SourceType        `json:"sourceType"`
	SourceURL  string            `json:"sourceUrl"`
	Metadata   *DocumentMetadata `json:"metadata"`
}

// DocumentUpdate 文档的部分更新
type DocumentUpdate struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsPublic *bool   `json:"isPublic"`
}

// Apply 合并更新，返回内容是否变化（需要重建切块）
func (u DocumentUpdate) Apply(d *Document) bool {
	if u.Title != nil {
		d.Title = *u.Title
	}
	if u.IsPublic != nil {
		d.IsPublic = *u.IsPublic
	}
	if u.Content == nil {
		return false
	}
	d.Content = *u.Content
	d.IsProcessed = false
	d.ProcessedAt = nil
	return true
}
