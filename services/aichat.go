package services

import (
	"context"
	"time"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/errs"
	"github.com/BinLe1988/cofounder-match/pkg/filter"
	"github.com/BinLe1988/cofounder-match/pkg/tasks"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AI聊天访问被拒绝的原因
const (
	reasonNotAuthenticated = "Not authenticated"
	reasonOwnAI            = "Cannot chat with your own AI"
	reasonNotMatched       = "You must be matched with this founder to chat with their AI"
)

// AiChatService 与匹配对象的AI分身聊天
type AiChatService struct {
	db     *gorm.DB
	filter *filter.ContentFilterService
	queue  tasks.Enqueuer
	log    *zap.Logger
}

// NewAiChatService 创建AI聊天服务
func NewAiChatService(db *gorm.DB, f *filter.ContentFilterService, queue tasks.Enqueuer, log *zap.Logger) *AiChatService {
	return &AiChatService{db: db, filter: f, queue: queue, log: log.Named("ai_chat")}
}

// Get 调用方与某位创始人AI分身的对话，不存在时返回 nil
func (s *AiChatService) Get(ctx context.Context, userID, ownerID string) (*models.AiChat, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return findChat(s.db.WithContext(ctx), userID, ownerID)
}

// CanAccess 检查调用方能否与该分身聊天
func (s *AiChatService) CanAccess(ctx context.Context, userID, ownerID string) (models.AiChatAccess, error) {
	if userID == "" {
		return models.AiChatAccess{Reason: reasonNotAuthenticated}, nil
	}
	if userID == ownerID {
		return models.AiChatAccess{Reason: reasonOwnAI}, nil
	}

	match, err := findMatchBetween(ctx, s.db, userID, ownerID)
	if err != nil {
		return models.AiChatAccess{}, err
	}
	if match == nil {
		return models.AiChatAccess{Reason: reasonNotMatched}, nil
	}

	matchedAt := match.MatchedAt
	return models.AiChatAccess{CanAccess: true, MatchedAt: &matchedAt}, nil
}

// GetEnhanced 对话附带分身主人的简要资料，未匹配或没有对话时返回 nil
func (s *AiChatService) GetEnhanced(ctx context.Context, userID, ownerID string) (*models.EnhancedAiChat, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	match, err := findMatchBetween(ctx, s.db, userID, ownerID)
	if err != nil || match == nil {
		return nil, err
	}

	chat, err := findChat(s.db.WithContext(ctx), userID, ownerID)
	if err != nil || chat == nil {
		return nil, err
	}

	enhanced := &models.EnhancedAiChat{AiChat: *chat}
	profile, err := findProfile(ctx, s.db, ownerID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		enhanced.ProfileInfo = &models.PersonaSummary{
			Name:       profile.Name,
			Bio:        profile.Bio,
			Experience: profile.Experience,
		}
	}
	return enhanced, nil
}

// Send 追加用户消息并安排分身回复，返回对话ID
func (s *AiChatService) Send(ctx context.Context, userID, ownerID, text string) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	if userID == ownerID {
		return "", errs.Wrap(errs.ErrInvalidArgument, "cannot chat with your own AI")
	}

	match, err := findMatchBetween(ctx, s.db, userID, ownerID)
	if err != nil {
		return "", err
	}
	if match == nil {
		return "", errs.Wrap(errs.ErrForbidden, "you must be matched with this founder to chat with their AI")
	}
	if err := checkContent(s.filter, text); err != nil {
		return "", err
	}

	var chatID string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chat, created, err := getOrCreateChat(tx, userID, ownerID)
		if err != nil {
			return err
		}
		chatID = chat.ID

		if _, err := appendChatMessage(tx, chat.ID, models.AiChatMessage{
			Role:    models.RoleUser,
			Content: text,
		}); err != nil {
			return err
		}
		if !created {
			return nil
		}

		participant, err := findProfile(ctx, tx, userID)
		if err != nil {
			return err
		}
		return createNotification(tx, &models.Notification{
			UserID:        ownerID,
			Type:          models.NotificationAiChat,
			Title:         "New AI chat",
			Message:       displayName(participant) + " started chatting with your AI",
			RelatedUserID: userID,
			RelatedChatID: chat.ID,
		})
	})
	if err != nil {
		return "", err
	}

	task, err := tasks.NewTask(TaskGenerateResponse, GenerateResponsePayload{
		ChatID:         chatID,
		ProfileOwnerID: ownerID,
		UserMessage:    text,
	})
	if err == nil {
		_, err = s.queue.Enqueue(ctx, task)
	}
	if err != nil {
		s.log.Error("schedule ai response failed", zap.String("chat_id", chatID), zap.Error(err))
	}

	return chatID, nil
}

// findChat 按 (participant, owner) 查找对话并按顺序加载消息
func findChat(db *gorm.DB, participantID, ownerID string) (*models.AiChat, error) {
	var chats []models.AiChat
	err := db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).
		Where("participant_id = ? AND profile_owner_id = ?", participantID, ownerID).
		Limit(1).Find(&chats).Error
	if err != nil || len(chats) == 0 {
		return nil, err
	}
	return &chats[0], nil
}

// getOrCreateChat 返回已有对话，不存在时创建
func getOrCreateChat(tx *gorm.DB, participantID, ownerID string) (*models.AiChat, bool, error) {
	chat := &models.AiChat{
		ParticipantID:  participantID,
		ProfileOwnerID: ownerID,
		LastMessageAt:  time.Now(),
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit("Messages").Create(chat)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return chat, true, nil
	}

	var existing models.AiChat
	err := tx.Where("participant_id = ? AND profile_owner_id = ?", participantID, ownerID).First(&existing).Error
	if err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// appendChatMessage 锁定对话后按序号追加一条消息
func appendChatMessage(tx *gorm.DB, chatID string, msg models.AiChatMessage) (*models.AiChatMessage, error) {
	var chat models.AiChat
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&chat, "id = ?", chatID).Error; err != nil {
		return nil, notFound(err, "chat not found")
	}

	now := time.Now()
	msg.ChatID = chat.ID
	msg.Seq = chat.TotalMessages + 1
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}
	if err := tx.Create(&msg).Error; err != nil {
		return nil, err
	}

	err := tx.Model(&chat).Updates(map[string]interface{}{
		"total_messages":  msg.Seq,
		"last_message_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
