package handlers

import (
	"net/http"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/services"

	"github.com/gin-gonic/gin"
)

// AiChatHandler 与匹配对象的AI分身聊天
type AiChatHandler struct {
	chats *services.AiChatService
}

// NewAiChatHandler 创建AI聊天处理器
func NewAiChatHandler(chats *services.AiChatService) *AiChatHandler {
	return &AiChatHandler{chats: chats}
}

// RegisterRoutes 注册路由
func (h *AiChatHandler) RegisterRoutes(group *gin.RouterGroup) {
	chats := group.Group("/ai-chats/:ownerId")
	{
		chats.GET("", h.Get)
		chats.GET("/access", h.CanAccess)
		chats.GET("/enhanced", h.GetEnhanced)
		chats.POST("/messages", h.Send)
	}
}

// Get 获取对话，尚未开始时 chat 为 null
func (h *AiChatHandler) Get(c *gin.Context) {
	chat, err := h.chats.Get(c.Request.Context(), currentUser(c), c.Param("ownerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// CanAccess 检查能否与该分身聊天
func (h *AiChatHandler) CanAccess(c *gin.Context) {
	access, err := h.chats.CanAccess(c.Request.Context(), currentUser(c), c.Param("ownerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, access)
}

// GetEnhanced 获取附带分身信息的对话
func (h *AiChatHandler) GetEnhanced(c *gin.Context) {
	chat, err := h.chats.GetEnhanced(c.Request.Context(), currentUser(c), c.Param("ownerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// Send 发送消息，回复异步生成
func (h *AiChatHandler) Send(c *gin.Context) {
	var req models.SendAiMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	chatID, err := h.chats.Send(c.Request.Context(), currentUser(c), c.Param("ownerId"), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"chatId": chatID})
}
