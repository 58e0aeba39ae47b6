// Package storage 文件存储：生成一次性上传地址，并把存储ID解析为可访问的URL
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrInvalidUploadToken 上传令牌不存在、已使用或已过期
	ErrInvalidUploadToken = errors.New("invalid or expired upload token")

	// ErrNotFound 文件不存在
	ErrNotFound = errors.New("file not found")
)

// UploadTarget 一次性上传目标
type UploadTarget struct {
	URL       string `json:"uploadUrl"`
	StorageID string `json:"storageId"`
}

// BlobStore 文件存储
type BlobStore interface {
	// GenerateUploadURL 生成一次性上传地址
	GenerateUploadURL(ctx context.Context) (UploadTarget, error)
	// GetURL 解析存储ID，文件不存在时返回空字符串
	GetURL(ctx context.Context, storageID string) (string, error)
	// Delete 删除文件
	Delete(ctx context.Context, storageID string) error
}

// Uploader 由服务自身接收上传内容的存储实现
type Uploader interface {
	Save(ctx context.Context, token string, contentType string, body io.Reader) (string, error)
	Open(ctx context.Context, storageID string) (io.ReadCloser, string, error)
}
