package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultUploadTTL = 15 * time.Minute

type metaFile struct {
	ContentType string `json:"contentType"`
}

// LocalStore 本地磁盘存储，上传走 PUT /api/uploads/:token，读取走 GET /files/:id
type LocalStore struct {
	dir       string
	baseURL   string
	uploadTTL time.Duration

	mu     sync.Mutex
	tokens map[string]time.Time
	now    func() time.Time
}

// NewLocalStore 创建本地存储
func NewLocalStore(dir, baseURL string, uploadTTL time.Duration) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("local storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	if uploadTTL <= 0 {
		uploadTTL = defaultUploadTTL
	}
	return &LocalStore{
		dir:       dir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		uploadTTL: uploadTTL,
		tokens:    make(map[string]time.Time),
		now:       time.Now,
	}, nil
}

// GenerateUploadURL 生成一次性上传令牌，令牌即存储ID
func (s *LocalStore) GenerateUploadURL(ctx context.Context) (UploadTarget, error) {
	id := uuid.NewString()

	s.mu.Lock()
	s.tokens[id] = s.now().Add(s.uploadTTL)
	s.mu.Unlock()

	return UploadTarget{
		URL:       s.baseURL + "/api/uploads/" + id,
		StorageID: id,
	}, nil
}

// consume 校验并作废上传令牌
func (s *LocalStore) consume(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.tokens[token]
	if !ok {
		return false
	}
	delete(s.tokens, token)
	return s.now().Before(expiry)
}

// Save 写入上传内容
func (s *LocalStore) Save(ctx context.Context, token string, contentType string, body io.Reader) (string, error) {
	if !s.consume(token) {
		return "", ErrInvalidUploadToken
	}

	f, err := os.Create(s.path(token))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	meta, err := json.Marshal(metaFile{ContentType: contentType})
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(s.path(token)+".meta", meta, 0o644); err != nil {
		return "", err
	}
	return token, nil
}

// Open 打开已上传的文件
func (s *LocalStore) Open(ctx context.Context, storageID string) (io.ReadCloser, string, error) {
	if !validID(storageID) {
		return nil, "", ErrNotFound
	}
	f, err := os.Open(s.path(storageID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}

	contentType := "application/octet-stream"
	if raw, err := os.ReadFile(s.path(storageID) + ".meta"); err == nil {
		var meta metaFile
		if json.Unmarshal(raw, &meta) == nil && meta.ContentType != "" {
			contentType = meta.ContentType
		}
	}
	return f, contentType, nil
}

// GetURL 文件存在时返回下载地址
func (s *LocalStore) GetURL(ctx context.Context, storageID string) (string, error) {
	if !validID(storageID) {
		return "", nil
	}
	if _, err := os.Stat(s.path(storageID)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return s.baseURL + "/files/" + storageID, nil
}

// Delete 删除文件
func (s *LocalStore) Delete(ctx context.Context, storageID string) error {
	if !validID(storageID) {
		return nil
	}
	for _, p := range []string{s.path(storageID), s.path(storageID) + ".meta"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (s *LocalStore) path(id string) string {
	return filepath.Join(s.dir, id)
}

// validID 只接受 UUID，防止路径穿越
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
