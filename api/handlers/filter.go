package handlers

import (
	"net/http"

	"github.com/BinLe1988/cofounder-match/pkg/filter"

	"github.com/gin-gonic/gin"
)

// ContentFilterHandler 内容过滤处理器
type ContentFilterHandler struct {
	filterService *filter.ContentFilterService
}

// NewContentFilterHandler 创建内容过滤处理器
func NewContentFilterHandler(f *filter.ContentFilterService) *ContentFilterHandler {
	return &ContentFilterHandler{filterService: f}
}

// RegisterRoutes 注册路由
func (h *ContentFilterHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/filter/check", h.CheckContent)
}

// CheckRequest 检查请求
type CheckRequest struct {
	Content string `json:"content" binding:"required"`
}

// CheckContent 发送前预检内容
func (h *ContentFilterHandler) CheckContent(c *gin.Context) {
	var req CheckRequest
	if !bindJSON(c, &req) {
		return
	}

	c.JSON(http.StatusOK, h.filterService.Check(req.Content))
}
