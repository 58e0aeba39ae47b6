package handlers

import (
	"net/http"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/services"

	"github.com/gin-gonic/gin"
)

// SwipeHandler 发现页和滑动
type SwipeHandler struct {
	swipes *services.SwipeService
}

// NewSwipeHandler 创建滑动处理器
func NewSwipeHandler(swipes *services.SwipeService) *SwipeHandler {
	return &SwipeHandler{swipes: swipes}
}

// RegisterRoutes 注册路由
func (h *SwipeHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/discovery", h.Discover)
	group.POST("/swipes", h.Swipe)
	group.GET("/likes", h.Liked)
	group.GET("/agent/profiles", h.AgentProfiles)
}

// Discover 获取发现页资料
func (h *SwipeHandler) Discover(c *gin.Context) {
	cards, err := h.swipes.Discover(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": cards})
}

// Swipe 左滑或右滑
func (h *SwipeHandler) Swipe(c *gin.Context) {
	var req models.SwipeRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.swipes.Swipe(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Liked 我喜欢过的资料
func (h *SwipeHandler) Liked(c *gin.Context) {
	liked, err := h.swipes.Liked(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": liked})
}

// AgentProfiles 推荐助手使用的候选资料
func (h *SwipeHandler) AgentProfiles(c *gin.Context) {
	out, err := h.swipes.AgentProfiles(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
