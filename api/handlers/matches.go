package handlers

import (
	"net/http"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/services"

	"github.com/gin-gonic/gin"
)

// MatchHandler 匹配列表和消息
type MatchHandler struct {
	matches *services.MatchService
}

// NewMatchHandler 创建匹配处理器
func NewMatchHandler(matches *services.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// RegisterRoutes 注册路由
func (h *MatchHandler) RegisterRoutes(group *gin.RouterGroup) {
	matches := group.Group("/matches")
	{
		matches.GET("", h.List)
		matches.GET("/:matchId/messages", h.Messages)
		matches.POST("/:matchId/messages", h.Send)
	}
}

// List 获取匹配列表
func (h *MatchHandler) List(c *gin.Context) {
	summaries, err := h.matches.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": summaries})
}

// Messages 获取匹配内的消息
func (h *MatchHandler) Messages(c *gin.Context) {
	messages, err := h.matches.Messages(c.Request.Context(), currentUser(c), c.Param("matchId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Send 发送消息
func (h *MatchHandler) Send(c *gin.Context) {
	var req models.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.matches.Send(c.Request.Context(), currentUser(c), c.Param("matchId"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}
