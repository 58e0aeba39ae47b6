package services

import (
	"context"
	"strings"
	"time"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/chunking"
	"github.com/BinLe1988/cofounder-match/pkg/errs"
	"github.com/BinLe1988/cofounder-match/pkg/storage"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentService 文档及其切块
type DocumentService struct {
	db      *gorm.DB
	chunker *chunking.Chunker
	store   storage.BlobStore
	log     *zap.Logger
}

// NewDocumentService 创建文档服务
func NewDocumentService(db *gorm.DB, chunker *chunking.Chunker, store storage.BlobStore, log *zap.Logger) *DocumentService {
	return &DocumentService{db: db, chunker: chunker, store: store, log: log.Named("documents")}
}

// List 调用方的文档，最新的在前
func (s *DocumentService) List(ctx context.Context, userID string) ([]models.Document, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	docs := []models.Document{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("uploaded_at DESC").
		Find(&docs).Error
	return docs, err
}

// ListPublic 某用户公开给AI分身的文档
func (s *DocumentService) ListPublic(ctx context.Context, callerID, ownerID string) ([]models.Document, error) {
	if err := requireUser(callerID); err != nil {
		return nil, err
	}

	docs := []models.Document{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_public = ?", ownerID, true).
		Order("uploaded_at DESC").
		Find(&docs).Error
	return docs, err
}

// Upload 保存文档并在同一事务中生成切块
func (s *DocumentService) Upload(ctx context.Context, userID string, req models.UploadDocumentRequest) (*models.Document, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, errs.Wrap(errs.ErrInvalidArgument, "title is required")
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = models.SourceManual
	}
	if !sourceType.Valid() {
		return nil, errs.Wrap(errs.ErrInvalidArgument, "unsupported source type: "+string(sourceType))
	}

	var metadata models.DocumentMetadata
	if req.Metadata != nil {
		metadata = *req.Metadata
	}

	doc := &models.Document{
		UserID:     userID,
		Title:      req.Title,
		Content:    req.Content,
		SourceType: sourceType,
		SourceURL:  req.SourceURL,
		FileID:     req.FileID,
		FileType:   req.FileType,
		Metadata:   datatypes.NewJSONType(metadata),
		UploadedAt: time.Now(),
		IsPublic:   req.IsPublic,
	}

	var count int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		var err error
		count, err = s.rebuildChunks(tx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("user_id", userID),
		zap.Int("chunks", count))
	return doc, nil
}

// Update 部分更新文档，内容变化时整体重建切块
func (s *DocumentService) Update(ctx context.Context, userID, documentID string, update models.DocumentUpdate) (*models.Document, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, errs.Wrap(errs.ErrInvalidArgument, "title cannot be empty")
	}

	var doc *models.Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		doc, err = ownedDocument(tx, userID, documentID)
		if err != nil {
			return err
		}

		contentChanged := update.Apply(doc)
		if err := tx.Save(doc).Error; err != nil {
			return err
		}
		if !contentChanged {
			return nil
		}

		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.DocumentChunk{}).Error; err != nil {
			return err
		}
		_, err = s.rebuildChunks(tx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete 删除文档及其全部切块
func (s *DocumentService) Delete(ctx context.Context, userID, documentID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}

	var fileID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := ownedDocument(tx, userID, documentID)
		if err != nil {
			return err
		}
		fileID = doc.FileID

		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.DocumentChunk{}).Error; err != nil {
			return err
		}
		return tx.Delete(doc).Error
	})
	if err != nil {
		return err
	}

	if fileID != "" && s.store != nil {
		if err := s.store.Delete(ctx, fileID); err != nil {
			s.log.Warn("delete document file failed", zap.String("file_id", fileID), zap.Error(err))
		}
	}
	return nil
}

// Chunks 文档的切块，按序号排列
func (s *DocumentService) Chunks(ctx context.Context, userID, documentID string) ([]models.DocumentChunk, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := ownedDocument(s.db.WithContext(ctx), userID, documentID); err != nil {
		return nil, err
	}

	chunks := []models.DocumentChunk{}
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index ASC").
		Find(&chunks).Error
	return chunks, err
}

// GenerateUploadURL 生成文档文件上传地址
func (s *DocumentService) GenerateUploadURL(ctx context.Context, userID string) (storage.UploadTarget, error) {
	if err := requireUser(userID); err != nil {
		return storage.UploadTarget{}, err
	}
	return s.store.GenerateUploadURL(ctx)
}

// rebuildChunks 为文档写入切块并标记为已处理
func (s *DocumentService) rebuildChunks(tx *gorm.DB, doc *models.Document) (int, error) {
	pieces := s.chunker.Split(doc.Content)
	if len(pieces) > 0 {
		rows := make([]models.DocumentChunk, len(pieces))
		for i, c := range pieces {
			rows[i] = models.DocumentChunk{
				DocumentID: doc.ID,
				UserID:     doc.UserID,
				Content:    c.Content,
				ChunkIndex: c.Index,
				StartIndex: c.Start,
				EndIndex:   c.End,
				Keywords:   datatypes.JSONSlice[string](c.Keywords),
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return 0, err
		}
	}

	now := time.Now()
	doc.IsProcessed = true
	doc.ProcessedAt = &now
	err := tx.Model(doc).Updates(map[string]interface{}{
		"is_processed": true,
		"processed_at": &now,
	}).Error
	return len(pieces), err
}

// ownedDocument 加载属于调用方的文档
func ownedDocument(db *gorm.DB, userID, documentID string) (*models.Document, error) {
	var doc models.Document
	if err := db.First(&doc, "id = ?", documentID).Error; err != nil {
		return nil, notFound(err, "document not found")
	}
	if doc.UserID != userID {
		return nil, errs.Wrap(errs.ErrForbidden, "not authorized to modify this document")
	}
	return &doc, nil
}
