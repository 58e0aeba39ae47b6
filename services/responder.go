package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/ai"
	"github.com/BinLe1988/cofounder-match/pkg/retrieval"
	"github.com/BinLe1988/cofounder-match/pkg/tasks"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FallbackMessage 补全失败时代替回复写入对话
const FallbackMessage = "I'm sorry, I'm having trouble responding right now. Please try again later."

// TaskGenerateResponse 生成分身回复的任务类型
const TaskGenerateResponse = "ai.generate_response"

// GenerateResponsePayload 生成分身回复的任务负载
type GenerateResponsePayload struct {
	ChatID         string `json:"chatId"`
	ProfileOwnerID string `json:"profileOwnerId"`
	UserMessage    string `json:"userMessage"`
}

// ContextRetriever 为分身回复检索上下文
type ContextRetriever interface {
	ContextForChat(ctx context.Context, ownerID, message string, history []models.AiChatMessage) ([]retrieval.ChunkMatch, error)
}

// ResponderConfig 补全参数
type ResponderConfig struct {
	Model            string
	MaxTokens        int
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64
	HistoryWindow    int
	RetrievalWindow  int
}

// Responder 以资料主人的身份回复AI聊天
type Responder struct {
	db        *gorm.DB
	completer ai.Completer
	retriever ContextRetriever
	cfg       ResponderConfig
	log       *zap.Logger
}

// NewResponder 创建分身回复器
func NewResponder(db *gorm.DB, completer ai.Completer, retriever ContextRetriever, cfg ResponderConfig, log *zap.Logger) *Responder {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 600
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 8
	}
	if cfg.RetrievalWindow <= 0 {
		cfg.RetrievalWindow = 5
	}
	return &Responder{
		db:        db,
		completer: completer,
		retriever: retriever,
		cfg:       cfg,
		log:       log.Named("responder"),
	}
}

// Handler 注册到 worker 的任务处理器
func (r *Responder) Handler() tasks.Handler {
	return tasks.HandlerFunc{
		TaskType: TaskGenerateResponse,
		Fn: func(ctx context.Context, task tasks.Task) error {
			var payload GenerateResponsePayload
			if err := task.Decode(&payload); err != nil {
				return err
			}
			return r.GenerateResponse(ctx, payload)
		},
	}
}

// GenerateResponse 生成一条助手回复，任何失败都以兜底消息代替
func (r *Responder) GenerateResponse(ctx context.Context, p GenerateResponsePayload) error {
	reply, sources, err := r.respond(ctx, p)
	if err != nil {
		r.log.Error("generate ai response failed",
			zap.String("chat_id", p.ChatID),
			zap.String("profile_owner_id", p.ProfileOwnerID),
			zap.Error(err))
		reply, sources = FallbackMessage, nil
	}

	msg := models.AiChatMessage{
		Role:    models.RoleAssistant,
		Content: reply,
		Sources: datatypes.JSONSlice[models.MessageSource](sources),
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := appendChatMessage(tx, p.ChatID, msg)
		return err
	})
	if err != nil {
		r.log.Error("append ai response failed", zap.String("chat_id", p.ChatID), zap.Error(err))
		return err
	}
	return nil
}

// respond 加载对话和资料，检索上下文并调用补全服务
func (r *Responder) respond(ctx context.Context, p GenerateResponsePayload) (reply string, sources []models.MessageSource, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reply, sources, err = "", nil, fmt.Errorf("generate response panic: %v", rec)
		}
	}()

	chat, err := r.loadChat(ctx, p.ChatID)
	if err != nil {
		return "", nil, err
	}

	profile, err := findProfile(ctx, r.db, p.ProfileOwnerID)
	if err != nil {
		return "", nil, err
	}
	if profile == nil {
		return "", nil, errors.New("profile not found")
	}

	var matches []retrieval.ChunkMatch
	if r.retriever != nil {
		matches, err = r.retriever.ContextForChat(ctx, p.ProfileOwnerID, p.UserMessage, ai.Tail(chat.Messages, r.cfg.RetrievalWindow))
		if err != nil {
			return "", nil, fmt.Errorf("retrieve context: %w", err)
		}
	}

	var connections []models.SocialConnection
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", p.ProfileOwnerID, true).
		Find(&connections).Error; err != nil {
		return "", nil, err
	}

	snippets := make([]ai.ContextSnippet, len(matches))
	for i, m := range matches {
		snippets[i] = ai.ContextSnippet{
			Content:        m.Content,
			Source:         m.Document.Title,
			SourceType:     string(m.Document.SourceType),
			RelevanceScore: m.Score,
		}
	}

	prompt := ai.BuildSystemPrompt(ai.Persona{
		Profile:     profile,
		Connections: connections,
		Snippets:    snippets,
	})

	reply, err = r.completer.Complete(ctx, ai.CompletionRequest{
		Model:            r.cfg.Model,
		Messages:         ai.BuildMessages(prompt, chat.Messages, r.cfg.HistoryWindow),
		MaxTokens:        r.cfg.MaxTokens,
		Temperature:      r.cfg.Temperature,
		PresencePenalty:  r.cfg.PresencePenalty,
		FrequencyPenalty: r.cfg.FrequencyPenalty,
	})
	if err != nil {
		return "", nil, err
	}

	r.log.Debug("ai response generated",
		zap.String("chat_id", p.ChatID),
		zap.Int("context_chunks", len(matches)))
	return reply, retrieval.Sources(matches), nil
}

func (r *Responder) loadChat(ctx context.Context, chatID string) (*models.AiChat, error) {
	var chat models.AiChat
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		First(&chat, "id = ?", chatID).Error
	if err != nil {
		return nil, notFound(err, "chat not found")
	}
	return &chat, nil
}
