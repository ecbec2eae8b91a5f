package session

import "container/list"

// windowCache is a fixed-capacity LRU over decompressed byte ranges, keyed
// by cacheKey's 32-bit hash of the (offset, length) of each read. It does no
// locking of its own. Its Get/Put shape
// mirrors biogo-hts/bgzf/cache's block cache interface; reimplemented here
// with container/list since no pack dependency supplies a general-purpose
// LRU and the cached value (a decompressed span, not a bgzf block) is
// domain-specific.
type windowCache struct {
	cap   int
	ll    *list.List
	items map[int]*list.Element
}

type cacheEntry struct {
	key  int
	data []byte
}

func newWindowCache(capacity int) *windowCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &windowCache{
		cap:   capacity,
		ll:    list.New(),
		items: make(map[int]*list.Element, capacity),
	}
}

// Get returns the cached bytes for key, promoting it to most-recently-used.
func (c *windowCache) Get(key int) ([]byte, bool) {
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).data, true
}

// Put inserts or refreshes the cached bytes for key, evicting the least
// recently used entry if the cache is at capacity.
func (c *windowCache) Put(key int, data []byte) {
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).data = data
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&cacheEntry{key: key, data: data})
	c.items[key] = el
	if c.ll.Len() > c.cap {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len reports the number of cached entries.
func (c *windowCache) Len() int { return c.ll.Len() }
