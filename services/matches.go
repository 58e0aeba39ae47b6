package services

import (
	"context"
	"sort"
	"time"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/errs"
	"github.com/BinLe1988/cofounder-match/pkg/filter"
	"github.com/BinLe1988/cofounder-match/pkg/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const messagePreviewLength = 50

// MatchService 匹配列表和匹配内消息
type MatchService struct {
	db       *gorm.DB
	resolver *storage.Resolver
	filter   *filter.ContentFilterService
	log      *zap.Logger
}

// NewMatchService 创建匹配服务
func NewMatchService(db *gorm.DB, resolver *storage.Resolver, f *filter.ContentFilterService, log *zap.Logger) *MatchService {
	return &MatchService{db: db, resolver: resolver, filter: f, log: log.Named("matches")}
}

// List 调用方的全部匹配，按最近活动倒序
func (s *MatchService) List(ctx context.Context, userID string) ([]models.MatchSummary, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var matches []models.Match
	if err := s.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Find(&matches).Error; err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []models.MatchSummary{}, nil
	}

	others := make([]string, len(matches))
	for i := range matches {
		others[i] = matches[i].Other(userID)
	}
	profiles, err := profilesByUser(s.db.WithContext(ctx), others...)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.MatchSummary, 0, len(matches))
	for i := range matches {
		profile := profiles[others[i]]
		if profile == nil {
			continue
		}

		var latest []models.Message
		if err := s.db.WithContext(ctx).
			Where("match_id = ?", matches[i].ID).
			Order("sent_at DESC").Limit(1).
			Find(&latest).Error; err != nil {
			return nil, err
		}

		summary := models.MatchSummary{
			MatchID:   matches[i].ID,
			MatchedAt: matches[i].MatchedAt,
			Profile:   s.resolver.View(ctx, *profile),
		}
		if len(latest) > 0 {
			summary.LatestMessage = &latest[0]
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastActivity().After(summaries[j].LastActivity())
	})
	return summaries, nil
}

// participantMatch 加载匹配并确认调用方是参与者
func (s *MatchService) participantMatch(ctx context.Context, db *gorm.DB, userID, matchID string) (*models.Match, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var match models.Match
	if err := db.WithContext(ctx).First(&match, "id = ?", matchID).Error; err != nil {
		return nil, notFound(err, "match not found")
	}
	if !match.Includes(userID) {
		return nil, errs.Wrap(errs.ErrForbidden, "not authorized to view this match")
	}
	return &match, nil
}

// Messages 匹配内的消息，按发送时间正序
func (s *MatchService) Messages(ctx context.Context, userID, matchID string) ([]models.Message, error) {
	if _, err := s.participantMatch(ctx, s.db, userID, matchID); err != nil {
		return nil, err
	}

	messages := []models.Message{}
	err := s.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("sent_at ASC").Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// Send 发送消息并通知对方
func (s *MatchService) Send(ctx context.Context, userID, matchID, content string) (*models.Message, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var message *models.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := s.participantMatch(ctx, tx, userID, matchID)
		if err != nil {
			return err
		}
		if err := checkContent(s.filter, content); err != nil {
			return err
		}

		message = &models.Message{
			MatchID:  match.ID,
			SenderID: userID,
			Content:  content,
			SentAt:   time.Now(),
		}
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		sender, err := findProfile(ctx, tx, userID)
		if err != nil {
			return err
		}
		receiver := match.Other(userID)
		return createNotification(tx, &models.Notification{
			UserID:         receiver,
			Type:           models.NotificationMessage,
			Title:          "New message",
			Message:        displayName(sender) + ": " + preview(content, messagePreviewLength),
			RelatedUserID:  userID,
			RelatedMatchID: match.ID,
			ActionURL:      "/matches/" + match.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("message sent", zap.String("match_id", matchID), zap.String("sender_id", userID))
	return message, nil
}
