package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCSStore 基于 Google Cloud Storage 的存储，上传和读取都使用 V4 签名地址
type GCSStore struct {
	client *storage.Client
	bucket string
	ttl    time.Duration
}

// NewGCSStore 创建 GCS 存储，credentialsFile 为空时使用默认凭据
func NewGCSStore(ctx context.Context, bucket, credentialsFile string, ttl time.Duration) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("missing gcs bucket")
	}
	if ttl <= 0 {
		ttl = defaultUploadTTL
	}

	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{client: client, bucket: bucket, ttl: ttl}, nil
}

// GenerateUploadURL 生成签名的 PUT 地址
func (s *GCSStore) GenerateUploadURL(ctx context.Context) (UploadTarget, error) {
	id := uuid.NewString()
	url, err := s.client.Bucket(s.bucket).SignedURL(id, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodPut,
		Expires: time.Now().Add(s.ttl),
	})
	if err != nil {
		return UploadTarget{}, fmt.Errorf("sign upload url: %w", err)
	}
	return UploadTarget{URL: url, StorageID: id}, nil
}

// GetURL 对象存在时返回签名的 GET 地址
func (s *GCSStore) GetURL(ctx context.Context, storageID string) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(storageID)
	if _, err := obj.Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", nil
		}
		return "", err
	}

	url, err := s.client.Bucket(s.bucket).SignedURL(storageID, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign read url: %w", err)
	}
	return url, nil
}

// Delete 删除对象
func (s *GCSStore) Delete(ctx context.Context, storageID string) error {
	err := s.client.Bucket(s.bucket).Object(storageID).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// Close 关闭客户端
func (s *GCSStore) Close() error {
	return s.client.Close()
}
