package services

import (
	"context"
	"strings"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/errs"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SocialService 社交账号绑定，每个平台一条
type SocialService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSocialService 创建社交账号服务
func NewSocialService(db *gorm.DB, log *zap.Logger) *SocialService {
	return &SocialService{db: db, log: log.Named("social")}
}

// Add 绑定或更新某个平台的账号
func (s *SocialService) Add(ctx context.Context, userID string, req models.SocialConnectionRequest) (*models.SocialConnection, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !req.Platform.Valid() {
		return nil, errs.Wrap(errs.ErrInvalidArgument, "unsupported platform: "+string(req.Platform))
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.ProfileURL) == "" {
		return nil, errs.Wrap(errs.ErrInvalidArgument, "username and profile url are required")
	}

	scraping := true
	if req.ScrapingEnabled != nil {
		scraping = *req.ScrapingEnabled
	}

	conn := &models.SocialConnection{
		UserID:          userID,
		Platform:        req.Platform,
		Username:        strings.TrimSpace(req.Username),
		ProfileURL:      strings.TrimSpace(req.ProfileURL),
		IsActive:        true,
		ScrapingEnabled: scraping,
	}
	var saved models.SocialConnection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "profile_url", "is_active", "scraping_enabled", "updated_at"}),
		}).Create(conn).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ? AND platform = ?", userID, req.Platform).First(&saved).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("social connection saved", zap.String("user_id", userID), zap.String("platform", string(req.Platform)))
	return &saved, nil
}

// List 调用方绑定的社交账号
func (s *SocialService) List(ctx context.Context, userID string) ([]models.SocialConnection, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	conns := []models.SocialConnection{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("platform ASC").Find(&conns).Error
	return conns, err
}

// Remove 解绑社交账号
func (s *SocialService) Remove(ctx context.Context, userID, connectionID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}

	var conn models.SocialConnection
	if err := s.db.WithContext(ctx).First(&conn, "id = ?", connectionID).Error; err != nil {
		return notFound(err, "social connection not found")
	}
	if conn.UserID != userID {
		return errs.Wrap(errs.ErrForbidden, "not authorized to modify this connection")
	}
	return s.db.WithContext(ctx).Delete(&conn).Error
}
