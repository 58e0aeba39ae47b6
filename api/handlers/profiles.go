package handlers

import (
	"net/http"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/services"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 资料、照片和用户名
type ProfileHandler struct {
	profiles *services.ProfileService
}

// NewProfileHandler 创建资料处理器
func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterPublicRoutes 公开的资料页
func (h *ProfileHandler) RegisterPublicRoutes(group *gin.RouterGroup) {
	group.GET("/profiles/:username", h.GetByUsername)
}

// RegisterRoutes 注册路由
func (h *ProfileHandler) RegisterRoutes(group *gin.RouterGroup) {
	profile := group.Group("/profile")
	{
		profile.GET("", h.GetCurrent)
		profile.POST("", h.Create)
		profile.PATCH("", h.Update)
		profile.PUT("/active", h.SetActive)
		profile.POST("/photos/upload-url", h.GenerateUploadURL)
		profile.POST("/photos", h.AddPhoto)
		profile.DELETE("/photos/:storageId", h.RemovePhoto)
		profile.GET("/username/check", h.CheckUsername)
		profile.PUT("/username", h.UpdateUsername)
		profile.POST("/username/generate", h.GenerateUsername)
	}
}

// GetCurrent 获取当前用户的资料，没有资料时 profile 为 null
func (h *ProfileHandler) GetCurrent(c *gin.Context) {
	view, err := h.profiles.GetCurrent(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": view})
}

// Create 创建资料
func (h *ProfileHandler) Create(c *gin.Context) {
	var req models.CreateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profiles.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"profile": profile})
}

// Update 部分更新资料
func (h *ProfileHandler) Update(c *gin.Context) {
	var req models.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	if req.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// activeRequest 启用/停用资料
type activeRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// SetActive 设置资料是否出现在发现页
func (h *ProfileHandler) SetActive(c *gin.Context) {
	var req activeRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profiles.SetActive(c.Request.Context(), currentUser(c), *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GenerateUploadURL 生成照片上传地址
func (h *ProfileHandler) GenerateUploadURL(c *gin.Context) {
	target, err := h.profiles.GenerateUploadURL(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

// AddPhoto 添加照片
func (h *ProfileHandler) AddPhoto(c *gin.Context) {
	var req models.PhotoRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profiles.AddPhoto(c.Request.Context(), currentUser(c), req.StorageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// RemovePhoto 删除照片
func (h *ProfileHandler) RemovePhoto(c *gin.Context) {
	profile, err := h.profiles.RemovePhoto(c.Request.Context(), currentUser(c), c.Param("storageId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// CheckUsername 检查用户名是否可用
func (h *ProfileHandler) CheckUsername(c *gin.Context) {
	result, err := h.profiles.CheckUsername(c.Request.Context(), currentUser(c), c.Query("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateUsername 修改用户名
func (h *ProfileHandler) UpdateUsername(c *gin.Context) {
	var req models.UsernameRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profiles.UpdateUsername(c.Request.Context(), currentUser(c), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// generateUsernameRequest 生成用户名请求
type generateUsernameRequest struct {
	Name string `json:"name" binding:"required"`
}

// GenerateUsername 根据名字生成可用的用户名
func (h *ProfileHandler) GenerateUsername(c *gin.Context) {
	var req generateUsernameRequest
	if !bindJSON(c, &req) {
		return
	}

	username, err := h.profiles.GenerateUsername(c.Request.Context(), currentUser(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": username})
}

// GetByUsername 通过用户名查看公开资料
func (h *ProfileHandler) GetByUsername(c *gin.Context) {
	view, err := h.profiles.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": view})
}
