// Package cache 提供带 TTL 和容量上限的内存缓存
package cache

import (
	"sync"
	"time"
)

// Stats 缓存统计信息
type Stats struct {
	Size           int     // 当前条目数
	Hits           int     // 命中次数
	Misses         int     // 未命中次数
	HitRate        float64 // 命中率
	ExpiredEntries int     // 已过期但未清理的条目
}

// Entry 缓存条目
type Entry struct {
	Value       interface{}
	Expiry      time.Time
	LastAccess  time.Time
	AccessCount int
}

func (e Entry) expired(now time.Time) bool {
	return !now.Before(e.Expiry)
}

// BatchResult 批量获取的结果
type BatchResult struct {
	Found bool
	Value interface{}
}

// Manager 缓存管理器，容量满时淘汰最久未访问的条目
type Manager struct {
	data             map[string]Entry
	maxEntries       int
	ttl              time.Duration
	mu               sync.Mutex
	evictionCallback func(string, Entry)
	now              func() time.Time

	hits   int
	misses int

	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager 创建缓存管理器，并启动后台过期清理
func NewManager(maxEntries int, ttl time.Duration) *Manager {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	m := &Manager{
		data:       make(map[string]Entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	go m.cleanupExpired()

	return m
}

// Close 停止后台清理
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// cleanupExpired 定期清理过期条目
func (m *Manager) cleanupExpired() {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.purge()
		}
	}
}

func (m *Manager) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, entry := range m.data {
		if entry.expired(now) {
			m.evict(key, entry)
		}
	}
}

// SetEvictionCallback 设置条目淘汰回调
func (m *Manager) SetEvictionCallback(callback func(string, Entry)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictionCallback = callback
}

// Get 获取缓存条目
func (m *Manager) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lookup(key)
}

func (m *Manager) lookup(key string) (interface{}, bool) {
	now := m.now()
	entry, ok := m.data[key]
	if !ok || entry.expired(now) {
		m.misses++
		return nil, false
	}

	m.hits++
	entry.AccessCount++
	entry.LastAccess = now
	m.data[key] = entry
	return entry.Value, true
}

// Set 设置缓存条目
func (m *Manager) Set(key string, value interface{}) {
	m.SetWithTTL(key, value, m.ttl)
}

// SetWithTTL 使用指定的过期时间设置条目
func (m *Manager) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store(key, value, ttl)
}

func (m *Manager) store(key string, value interface{}, ttl time.Duration) {
	if _, exists := m.data[key]; !exists && len(m.data) >= m.maxEntries {
		m.evictOldest()
	}

	now := m.now()
	m.data[key] = Entry{
		Value:      value,
		Expiry:     now.Add(ttl),
		LastAccess: now,
	}
}

// Delete 删除条目
func (m *Manager) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// evictOldest 淘汰最久未访问的条目
func (m *Manager) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, entry := range m.data {
		if first || entry.LastAccess.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastAccess
			first = false
		}
	}

	if !first {
		m.evict(oldestKey, m.data[oldestKey])
	}
}

func (m *Manager) evict(key string, entry Entry) {
	if m.evictionCallback != nil {
		m.evictionCallback(key, entry)
	}
	delete(m.data, key)
}

// Clear 清空缓存
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]Entry)
	m.hits = 0
	m.misses = 0
}

// BatchGet 批量获取缓存条目
func (m *Manager) BatchGet(keys []string) map[string]BatchResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make(map[string]BatchResult, len(keys))
	for _, key := range keys {
		value, found := m.lookup(key)
		results[key] = BatchResult{Found: found, Value: value}
	}
	return results
}

// BatchSet 批量设置缓存条目
func (m *Manager) BatchSet(items map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, value := range items {
		m.store(key, value, m.ttl)
	}
}

// GetStats 获取缓存统计信息
func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Stats{
		Size:   len(m.data),
		Hits:   m.hits,
		Misses: m.misses,
	}

	now := m.now()
	for _, entry := range m.data {
		if entry.expired(now) {
			stats.ExpiredEntries++
		}
	}

	if total := m.hits + m.misses; total > 0 {
		stats.HitRate = float64(m.hits) / float64(total)
	}
	return stats
}
