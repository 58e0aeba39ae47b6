package storage

import (
	"context"
	"sync"
	"time"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/cache"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const resolveConcurrency = 8

// Resolver 带缓存的URL解析，缓存时间应短于签名地址的有效期
type Resolver struct {
	store BlobStore
	cache *cache.Manager
	log   *zap.Logger
}

// NewResolver 创建解析器
func NewResolver(store BlobStore, size int, ttl time.Duration, log *zap.Logger) *Resolver {
	return &Resolver{
		store: store,
		cache: cache.NewManager(size, ttl),
		log:   log.With(zap.String("component", "URLResolver")),
	}
}

// Store 底层存储
func (r *Resolver) Store() BlobStore {
	return r.store
}

// URL 解析单个存储ID，失败时返回空字符串
func (r *Resolver) URL(ctx context.Context, storageID string) string {
	if storageID == "" {
		return ""
	}
	if v, ok := r.cache.Get(storageID); ok {
		return v.(string)
	}

	url, err := r.store.GetURL(ctx, storageID)
	if err != nil {
		r.log.Warn("resolve storage url failed", zap.String("storage_id", storageID), zap.Error(err))
		return ""
	}
	if url != "" {
		r.cache.Set(storageID, url)
	}
	return url
}

// Photos 并发解析一组照片，已缓存的地址一次性取出
func (r *Resolver) Photos(ctx context.Context, ids []string) []models.Photo {
	photos := make([]models.Photo, len(ids))
	cached := r.cache.BatchGet(ids)

	var (
		mu       sync.Mutex
		resolved = make(map[string]interface{})
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, id := range ids {
		i, id := i, id
		photos[i].ID = id
		if hit := cached[id]; hit.Found {
			photos[i].URL = hit.Value.(string)
			continue
		}
		if id == "" {
			continue
		}
		g.Go(func() error {
			url, err := r.store.GetURL(gctx, id)
			if err != nil {
				r.log.Warn("resolve storage url failed", zap.String("storage_id", id), zap.Error(err))
				return nil
			}
			photos[i].URL = url
			if url != "" {
				mu.Lock()
				resolved[id] = url
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(resolved) > 0 {
		r.cache.BatchSet(resolved)
	}
	return photos
}

// View 为资料附加照片地址
func (r *Resolver) View(ctx context.Context, p models.Profile) models.ProfileView {
	return models.ProfileView{Profile: p, Photos: r.Photos(ctx, p.Photos)}
}

// Views 为多份资料并发附加照片地址
func (r *Resolver) Views(ctx context.Context, profiles []models.Profile) []models.ProfileView {
	views := make([]models.ProfileView, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i := range profiles {
		i := i
		g.Go(func() error {
			views[i] = r.View(gctx, profiles[i])
			return nil
		})
	}
	_ = g.Wait()

	return views
}

// Forget 删除缓存的地址
func (r *Resolver) Forget(storageID string) {
	r.cache.Delete(storageID)
}

// Close 停止缓存清理
func (r *Resolver) Close() {
	stats := r.cache.GetStats()
	r.log.Debug("url cache stats", zap.Int("size", stats.Size), zap.Int("hits", stats.Hits), zap.Int("misses", stats.Misses))
	r.cache.Close()
}
