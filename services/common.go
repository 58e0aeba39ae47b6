// Package services 实现匹配、消息、文档、AI聊天和通知等核心业务
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/errs"
	"github.com/BinLe1988/cofounder-match/pkg/filter"

	"gorm.io/gorm"
)

// requireUser 调用方必须有身份
func requireUser(userID string) error {
	if userID == "" {
		return errs.ErrUnauthenticated
	}
	return nil
}

// notFound 把 gorm 的记录不存在转换为业务错误
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Wrap(errs.ErrNotFound, msg)
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// findProfile 按用户查找资料，不存在时返回 nil
func findProfile(ctx context.Context, db *gorm.DB, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, nil
	}
	return &profile, nil
}

// findMatchBetween 查找两人之间的匹配，不存在时返回 nil
func findMatchBetween(ctx context.Context, db *gorm.DB, a, b string) (*models.Match, error) {
	user1, user2 := models.CanonicalPair(a, b)

	var match models.Match
	err := db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", user1, user2).
		Limit(1).Find(&match).Error
	if err != nil {
		return nil, err
	}
	if match.ID == "" {
		return nil, nil
	}
	return &match, nil
}

// checkContent 拒绝空内容和被过滤的内容
func checkContent(f *filter.ContentFilterService, content string) error {
	if strings.TrimSpace(content) == "" {
		return errs.Wrap(errs.ErrInvalidArgument, "message cannot be empty")
	}
	if f == nil {
		return nil
	}
	if result := f.Check(content); !result.IsClean {
		return errs.Wrap(errs.ErrInvalidArgument, "message rejected by content filter: "+result.Reason)
	}
	return nil
}

// preview 截取消息预览
func preview(content string, max int) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= max {
		return content
	}
	return string([]rune(content)[:max]) + "..."
}

// displayName 资料名为空时使用兜底称呼
func displayName(p *models.Profile) string {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return "Someone"
	}
	return p.Name
}
