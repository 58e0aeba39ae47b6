package handlers

import (
	"net/http"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/retrieval"
	"github.com/BinLe1988/cofounder-match/services"

	"github.com/gin-gonic/gin"
)

const defaultSearchLimit = 5

// DocumentHandler 文档管理和检索
type DocumentHandler struct {
	documents *services.DocumentService
	search    *retrieval.Service
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(documents *services.DocumentService, search *retrieval.Service) *DocumentHandler {
	return &DocumentHandler{documents: documents, search: search}
}

// RegisterRoutes 注册路由
func (h *DocumentHandler) RegisterRoutes(group *gin.RouterGroup) {
	docs := group.Group("/documents")
	{
		docs.GET("", h.List)
		docs.POST("", h.Upload)
		docs.POST("/upload-url", h.GenerateUploadURL)
		docs.POST("/search", h.Search)
		docs.PATCH("/:documentId", h.Update)
		docs.DELETE("/:documentId", h.Delete)
		docs.GET("/:documentId/chunks", h.Chunks)
	}
	group.GET("/users/:userId/documents", h.ListPublic)
}

// List 我的文档
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// ListPublic 某用户公开的文档
func (h *DocumentHandler) ListPublic(c *gin.Context) {
	docs, err := h.documents.ListPublic(c.Request.Context(), currentUser(c), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// Upload 上传文档
func (h *DocumentHandler) Upload(c *gin.Context) {
	var req models.UploadDocumentRequest
	if !bindJSON(c, &req) {
		return
	}

	doc, err := h.documents.Upload(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// Update 部分更新文档
func (h *DocumentHandler) Update(c *gin.Context) {
	var req models.DocumentUpdate
	if !bindJSON(c, &req) {
		return
	}

	doc, err := h.documents.Update(c.Request.Context(), currentUser(c), c.Param("documentId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// Delete 删除文档
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), currentUser(c), c.Param("documentId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}

// Chunks 文档切块
func (h *DocumentHandler) Chunks(c *gin.Context) {
	chunks, err := h.documents.Chunks(c.Request.Context(), currentUser(c), c.Param("documentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chunks": chunks})
}

// GenerateUploadURL 生成文档文件上传地址
func (h *DocumentHandler) GenerateUploadURL(c *gin.Context) {
	target, err := h.documents.GenerateUploadURL(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

// searchRequest 检索请求
type searchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// Search 在自己的文档中做关键词检索
func (h *DocumentHandler) Search(c *gin.Context) {
	var req searchRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	userID := currentUser(c)
	results, err := h.search.KeywordSearch(c.Request.Context(), req.Query, userID, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
