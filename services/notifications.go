package services

import (
	"context"
	"time"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/errs"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultNotificationLimit = 50

// NotificationService 通知服务，只有接收者可以读取和修改
type NotificationService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewNotificationService 创建通知服务
func NewNotificationService(db *gorm.DB, log *zap.Logger) *NotificationService {
	return &NotificationService{db: db, log: log.Named("notifications")}
}

// createNotification 在调用方的事务中写入通知
func createNotification(tx *gorm.DB, n *models.Notification) error {
	return tx.Create(n).Error
}

// matchNotifications 匹配成功时通知双方
func matchNotifications(tx *gorm.DB, match *models.Match, profiles map[string]*models.Profile) error {
	for _, userID := range []string{match.User1ID, match.User2ID} {
		other := match.Other(userID)
		n := &models.Notification{
			UserID:         userID,
			Type:           models.NotificationMatch,
			Title:          "New match!",
			Message:        "You matched with " + displayName(profiles[other]),
			RelatedUserID:  other,
			RelatedMatchID: match.ID,
			ActionURL:      "/matches/" + match.ID,
		}
		if err := createNotification(tx, n); err != nil {
			return err
		}
	}
	return nil
}

// List 获取通知，按时间倒序
func (s *NotificationService) List(ctx context.Context, userID string, limit int, unreadOnly bool) ([]models.Notification, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}

	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	notifications := []models.Notification{}
	err := q.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

// owned 加载属于调用方的通知
func (s *NotificationService) owned(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var n models.Notification
	if err := s.db.WithContext(ctx).First(&n, "id = ?", notificationID).Error; err != nil {
		return nil, notFound(err, "notification not found")
	}
	if n.UserID != userID {
		return nil, errs.Wrap(errs.ErrForbidden, "not authorized to modify this notification")
	}
	return &n, nil
}

// MarkAsRead 标记单条通知为已读
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	n, err := s.owned(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}

	now := time.Now()
	return s.db.WithContext(ctx).Model(n).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": &now,
	}).Error
}

// MarkAllAsRead 标记全部未读通知为已读，返回标记数量
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}

	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	return result.RowsAffected, result.Error
}

// UnreadCount 未读数量
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// Delete 删除通知
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	n, err := s.owned(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(n).Error
}
