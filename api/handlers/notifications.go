package handlers

import (
	"net/http"

	"github.com/BinLe1988/cofounder-match/services"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 通知
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterRoutes 注册路由
func (h *NotificationHandler) RegisterRoutes(group *gin.RouterGroup) {
	n := group.Group("/notifications")
	{
		n.GET("", h.List)
		n.GET("/unread-count", h.UnreadCount)
		n.POST("/read-all", h.MarkAllAsRead)
		n.POST("/:notificationId/read", h.MarkAsRead)
		n.DELETE("/:notificationId", h.Delete)
	}
}

// List 获取通知，支持 limit 和 unreadOnly
func (h *NotificationHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 0)
	unreadOnly := c.Query("unreadOnly") == "true"

	list, err := h.notifications.List(c.Request.Context(), currentUser(c), limit, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// UnreadCount 未读数量
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkAsRead 标记已读
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	if err := h.notifications.MarkAsRead(c.Request.Context(), currentUser(c), c.Param("notificationId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllAsRead 全部标记已读
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	marked, err := h.notifications.MarkAllAsRead(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// Delete 删除通知
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notifications.Delete(c.Request.Context(), currentUser(c), c.Param("notificationId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
