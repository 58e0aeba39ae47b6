package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType 通知类型
type NotificationType string

const (
	NotificationMatch       NotificationType = "match"
	NotificationMessage     NotificationType = "message"
	NotificationAiChat      NotificationType = "ai_chat"
	NotificationProfileView NotificationType = "profile_view"
	NotificationSystem      NotificationType = "system"
)

// Notification 站内通知，只有接收者可以修改已读状态
type Notification struct {
	Base
	UserID         string           `gorm:"size:36;not null;index:idx_notification_user_read,priority:1" json:"userId"`
	Type           NotificationType `gorm:"size:20;not null;index" json:"type"`
	Title          string           `gorm:"size:255" json:"title"`
	Message        string           `gorm:"type:text" json:"message"`
	RelatedUserID  string           `gorm:"size:36" json:"relatedUserId,omitempty"`
	RelatedMatchID string           `gorm:"size:36" json:"relatedMatchId,omitempty"`
	RelatedChatID  string           `gorm:"size:36" json:"relatedChatId,omitempty"`
	IsRead         bool             `gorm:"index:idx_notification_user_read,priority:2" json:"isRead"`
	ReadAt         *time.Time       `json:"readAt,omitempty"`
	ActionURL      string           `gorm:"size:255" json:"actionUrl,omitempty"`
}

// SocialPlatform 社交平台
type SocialPlatform string

const (
	PlatformTwitter   SocialPlatform = "twitter"
	PlatformGithub    SocialPlatform = "github"
	PlatformLinkedIn  SocialPlatform = "linkedin"
	PlatformInstagram SocialPlatform = "instagram"
	PlatformWebsite   SocialPlatform = "website"
)

// Valid 是否为支持的平台
func (p SocialPlatform) Valid() bool {
	switch p {
	case PlatformTwitter, PlatformGithub, PlatformLinkedIn, PlatformInstagram, PlatformWebsite:
		return true
	}
	return false
}

// SocialMetadata 抓取到的社交资料
type SocialMetadata struct {
	Followers int    `json:"followers,omitempty"`
	Following int    `json:"following,omitempty"`
	Posts     int    `json:"posts,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Location  string `json:"location,omitempty"`
	Website   string `json:"website,omitempty"`
}

// SocialConnection 用户绑定的社交账号，每个平台一条
type SocialConnection struct {
	Base
	UserID          string                             `gorm:"size:36;not null;uniqueIndex:idx_user_platform,priority:1" json:"userId"`
	Platform        SocialPlatform                     `gorm:"size:20;not null;uniqueIndex:idx_user_platform,priority:2" json:"platform"`
	Username        string                             `gorm:"size:100;not null" json:"username"`
	ProfileURL      string                             `gorm:"size:512;not null" json:"profileUrl"`
	IsActive        bool                               `json:"isActive"`
	LastScrapedAt   *time.Time                         `json:"lastScrapedAt,omitempty"`
	ScrapingEnabled bool                               `json:"scrapingEnabled"`
	Metadata        datatypes.JSONType[SocialMetadata] `json:"metadata"`
}

// SocialConnectionRequest 绑定社交账号请求
type SocialConnectionRequest struct {
	Platform        SocialPlatform `json:"platform" binding:"required"`
	Username        string         `json:"username" binding:"required"`
	ProfileURL      string         `json:"profileUrl" binding:"required"`
	ScrapingEnabled *bool          `json:"scrapingEnabled"`
}
