package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, maxEntries int, ttl time.Duration) (*Manager, *time.Time) {
	m := NewManager(maxEntries, ttl)
	t.Cleanup(m.Close)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestGetSet(t *testing.T) {
	m, _ := newTestManager(t, 10, time.Hour)

	m.Set("photo:1", "https://cdn/1.png")

	value, ok := m.Get("photo:1")
	require.True(t, ok)
	assert.Equal(t, "https://cdn/1.png", value)

	_, ok = m.Get("photo:2")
	assert.False(t, ok)

	stats := m.GetStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestExpiry(t *testing.T) {
	m, now := newTestManager(t, 10, time.Minute)

	m.Set("key", "value")
	*now = now.Add(2 * time.Minute)

	_, ok := m.Get("key")
	assert.False(t, ok)
	assert.Equal(t, 1, m.GetStats().ExpiredEntries)

	m.purge()
	assert.Equal(t, 0, m.GetStats().Size)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	m, now := newTestManager(t, 3, time.Hour)

	var evicted []string
	m.SetEvictionCallback(func(key string, entry Entry) {
		evicted = append(evicted, key)
	})

	for i := 1; i <= 3; i++ {
		m.Set(fmt.Sprintf("key%d", i), i)
		*now = now.Add(time.Second)
	}

	// 访问 key1 使其成为最近使用
	_, ok := m.Get("key1")
	require.True(t, ok)
	*now = now.Add(time.Second)

	m.Set("key4", 4)

	assert.Equal(t, []string{"key2"}, evicted)
	assert.Equal(t, 3, m.GetStats().Size)

	_, ok = m.Get("key2")
	assert.False(t, ok)
}

func TestOverwriteDoesNotEvict(t *testing.T) {
	m, _ := newTestManager(t, 2, time.Hour)

	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 3)

	value, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, value)

	_, ok = m.Get("b")
	assert.True(t, ok)
}

func TestBatchOperations(t *testing.T) {
	m, _ := newTestManager(t, 10, time.Hour)

	m.BatchSet(map[string]interface{}{
		"key1": "value1",
		"key2": "value2",
	})

	results := m.BatchGet([]string{"key1", "key2", "missing"})
	require.Len(t, results, 3)
	assert.True(t, results["key1"].Found)
	assert.Equal(t, "value2", results["key2"].Value)
	assert.False(t, results["missing"].Found)
	assert.Nil(t, results["missing"].Value)

	stats := m.GetStats()
	assert.Equal(t, 2, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
}

func TestClear(t *testing.T) {
	m, _ := newTestManager(t, 10, time.Hour)
	m.Set("key", "value")
	m.Get("key")

	m.Clear()

	stats := m.GetStats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, 0, stats.Hits)
}
