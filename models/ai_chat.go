package models

import (
	"time"

	"gorm.io/datatypes"
)

// ChatRole 消息角色
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleSystem    ChatRole = "system"
)

// MessageSource AI回复引用的文档
type MessageSource struct {
	DocumentID     string  `json:"documentId"`
	Title          string  `json:"title"`
	RelevanceScore float64 `json:"relevanceScore"`
}

// AiChat 提问者与某位创始人AI分身之间的对话，(participant, owner) 唯一
type AiChat struct {
	Base
	ParticipantID  string          `gorm:"size:36;not null;uniqueIndex:idx_participant_owner,priority:1;index" json:"participantId"`
	ProfileOwnerID string          `gorm:"size:36;not null;uniqueIndex:idx_participant_owner,priority:2;index" json:"profileOwnerId"`
	LastMessageAt  time.Time       `json:"lastMessageAt"`
	TotalMessages  int             `json:"totalMessages"`
	Messages       []AiChatMessage `gorm:"foreignKey:ChatID" json:"messages"`
}

// AiChatMessage 对话中的一条消息，Seq 决定顺序
type AiChatMessage struct {
	Base
	ChatID    string                             `gorm:"size:36;not null;uniqueIndex:idx_chat_seq,priority:1" json:"-"`
	Seq       int                                `gorm:"not null;uniqueIndex:idx_chat_seq,priority:2" json:"-"`
	Role      ChatRole                           `gorm:"size:20;not null" json:"role"`
	Content   string                             `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time                          `gorm:"not null" json:"timestamp"`
	Sources   datatypes.JSONSlice[MessageSource] `json:"sources,omitempty"`
}

// SendAiMessageRequest 向AI分身发送消息
type SendAiMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// AiChatAccess AI聊天访问检查结果
type AiChatAccess struct {
	CanAccess bool       `json:"canAccess"`
	Reason    string     `json:"reason,omitempty"`
	MatchedAt *time.Time `json:"matchedAt,omitempty"`
}

// PersonaSummary 分身主人的简要信息
type PersonaSummary struct {
	Name       string `json:"name"`
	Bio        string `json:"bio"`
	Experience string `json:"experience"`
}

// EnhancedAiChat 附带分身信息的对话
type EnhancedAiChat struct {
	AiChat
	ProfileInfo *PersonaSummary `json:"profileInfo"`
}
