package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/BinLe1988/cofounder-match/pkg/storage"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 20 << 20

// FileHandler 本地存储的上传和下载
type FileHandler struct {
	files storage.Uploader
}

// NewFileHandler 创建文件处理器
func NewFileHandler(files storage.Uploader) *FileHandler {
	return &FileHandler{files: files}
}

// RegisterRoutes 上传地址本身即凭证，因此不需要登录
func (h *FileHandler) RegisterRoutes(router *gin.Engine) {
	router.PUT("/api/uploads/:token", h.Upload)
	router.POST("/api/uploads/:token", h.Upload)
	router.GET("/files/:storageId", h.Download)
}

// Upload 消费一次性令牌并保存请求体
func (h *FileHandler) Upload(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	contentType := c.ContentType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id, err := h.files.Save(c.Request.Context(), c.Param("token"), contentType, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, storage.ErrInvalidUploadToken):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.As(err, &tooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		default:
			respondError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"storageId": id})
}

// Download 读取文件
func (h *FileHandler) Download(c *gin.Context) {
	f, contentType, err := h.files.Open(c.Request.Context(), c.Param("storageId"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, f)
}
