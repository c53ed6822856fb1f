package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/annoset/resource"
)

// Sizer reports the retained size of a value in bytes.
type Sizer[V any] func(V) int64

// LRU is a size-bounded least-recently-used cache. When a resource
// controller is attached, cached bytes are also charged to its memory
// budget.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	sizer     Sizer[V]
	items     map[K]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[K comparable, V any] struct {
	key   K
	value V
	size  int64
}

// New creates a new LRU cache with the given capacity in bytes.
func New[K comparable, V any](capacity int64, sizer Sizer[V], rc *resource.Controller) *LRU[K, V] {
	return &LRU[K, V]{
		capacity:  capacity,
		sizer:     sizer,
		items:     make(map[K]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Get returns a cached value.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set caches a value. Values larger than the capacity, or not admitted by
// the memory budget, are not cached.
func (c *LRU[K, V]) Set(key K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	itemSize := c.sizer(v)
	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)
	}
	if itemSize > c.capacity {
		return
	}

	// Evict locally first so released bytes go back to the controller.
	for c.size+itemSize > c.capacity {
		ent := c.evictList.Back()
		if ent == nil {
			break
		}
		c.removeElement(ent)
	}

	if err := c.rc.ReserveMemory(itemSize); err != nil {
		return
	}

	element := c.evictList.PushFront(&entry[K, V]{key: key, value: v, size: itemSize})
	c.items[key] = element
	c.size += itemSize
}

// Invalidate removes entries matching the predicate.
func (c *LRU[K, V]) Invalidate(predicate func(key K) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for key, element := range c.items {
		if predicate(key) {
			toRemove = append(toRemove, element)
		}
	}
	for _, e := range toRemove {
		c.removeElement(e)
	}
}

// Stats returns hit and miss counts.
func (c *LRU[K, V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the cached bytes.
func (c *LRU[K, V]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU[K, V]) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry[K, V])
	delete(c.items, kv.key)
	c.size -= kv.size
	c.rc.ReleaseMemory(kv.size)
}
