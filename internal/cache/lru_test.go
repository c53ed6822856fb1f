package cache

import (
	"testing"

	"github.com/hupe1980/annoset/resource"
	"github.com/stretchr/testify/assert"
)

func bytesSize(b []byte) int64 { return int64(len(b)) }

func TestLRU(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := New[string](50, bytesSize, rc)

	c.Set("a", make([]byte, 20))
	c.Set("b", make([]byte, 20))
	assert.Equal(t, int64(40), c.Size())
	assert.Equal(t, int64(40), rc.MemoryUsage())

	// Touch a so that b is the eviction candidate.
	_, ok := c.Get("a")
	assert.True(t, ok)

	c.Set("c", make([]byte, 20))
	assert.Equal(t, int64(40), c.Size())
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, int64(40), rc.MemoryUsage())
}

func TestLRU_EdgeCases(t *testing.T) {
	c := New[string](50, bytesSize, nil)

	c.Set("big", make([]byte, 60))
	_, ok := c.Get("big")
	assert.False(t, ok, "item larger than capacity is not cached")

	c.Set("k", make([]byte, 10))
	c.Set("k", make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())
	assert.Equal(t, 1, c.Len())

	c.Set("k", make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())
}

func TestLRU_MemoryBudgetRejects(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 10})
	c := New[string](50, bytesSize, rc)

	c.Set("a", make([]byte, 8))
	c.Set("b", make([]byte, 8))

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestLRU_InvalidateAndStats(t *testing.T) {
	c := New[int](100, bytesSize, nil)
	c.Set(1, []byte("a"))
	c.Set(2, []byte("b"))
	c.Set(3, []byte("c"))

	c.Invalidate(func(k int) bool { return k%2 == 1 })
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get(2)
	assert.True(t, ok)
	_, ok = c.Get(1)
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}
