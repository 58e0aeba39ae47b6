package handlers

import (
	"net/http"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/services"

	"github.com/gin-gonic/gin"
)

// AuthHandler 注册、登录和当前用户
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterPublicRoutes 注册无需认证的路由
func (h *AuthHandler) RegisterPublicRoutes(group *gin.RouterGroup) {
	group.POST("/auth/login", h.Login)
	group.POST("/auth/register", h.Register)
}

// RegisterRoutes 注册需要认证的路由
func (h *AuthHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/user", h.GetCurrentUser)
	group.POST("/auth/logout", h.Logout)
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.CredentialRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegistrationRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetCurrentUser 获取当前用户信息
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout 用户登出，令牌无状态，由客户端丢弃
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
