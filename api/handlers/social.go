package handlers

import (
	"net/http"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/services"

	"github.com/gin-gonic/gin"
)

// SocialHandler 社交账号绑定
type SocialHandler struct {
	social *services.SocialService
}

// NewSocialHandler 创建社交账号处理器
func NewSocialHandler(social *services.SocialService) *SocialHandler {
	return &SocialHandler{social: social}
}

// RegisterRoutes 注册路由
func (h *SocialHandler) RegisterRoutes(group *gin.RouterGroup) {
	s := group.Group("/social-connections")
	{
		s.GET("", h.List)
		s.POST("", h.Add)
		s.DELETE("/:connectionId", h.Remove)
	}
}

// List 我的社交账号
func (h *SocialHandler) List(c *gin.Context) {
	conns, err := h.social.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

// Add 绑定社交账号
func (h *SocialHandler) Add(c *gin.Context) {
	var req models.SocialConnectionRequest
	if !bindJSON(c, &req) {
		return
	}

	conn, err := h.social.Add(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connection": conn})
}

// Remove 解绑社交账号
func (h *SocialHandler) Remove(c *gin.Context) {
	if err := h.social.Remove(c.Request.Context(), currentUser(c), c.Param("connectionId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
