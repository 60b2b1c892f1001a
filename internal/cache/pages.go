package cache

import (
	"container/list"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/learner/internal/resource"
)

// Pages caches full pages by page index.
type Pages struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	index    map[uint64]*list.Element
	recency  *list.List // front is most recent
	rc       *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type page struct {
	index uint64
	data  []byte
}

// NewPages returns a cache holding up to capacity bytes. rc is optional.
func NewPages(capacity int64, rc *resource.Controller) *Pages {
	return &Pages{
		capacity: capacity,
		index:    make(map[uint64]*list.Element),
		recency:  list.New(),
		rc:       rc,
	}
}

// Get returns a copy of the cached page.
func (c *Pages) Get(index uint64) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.index[index]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	c.recency.MoveToFront(e)

	return slices.Clone(e.Value.(*page).data), true
}

// Put caches a copy of data as the content of page index.
func (c *Pages) Put(index uint64, data []byte) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.index[index]; ok {
		c.remove(e)
	}

	n := int64(len(data))
	if n > c.capacity {
		return
	}

	// Evict first so the released bytes are available to the controller.
	for c.size+n > c.capacity {
		c.remove(c.recency.Back())
	}

	if err := c.rc.AcquireMemory(n); err != nil {
		return
	}

	c.index[index] = c.recency.PushFront(&page{index: index, data: slices.Clone(data)})
	c.size += n
}

// Drop removes pages first through last inclusive.
func (c *Pages) Drop(first, last uint64) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Walk whichever side is smaller.
	if last < first {
		return
	}

	if last-first >= uint64(len(c.index)) {
		for i, e := range c.index {
			if i >= first && i <= last {
				c.remove(e)
			}
		}

		return
	}

	for i := first; ; i++ {
		if e, ok := c.index[i]; ok {
			c.remove(e)
		}

		if i == last {
			return
		}
	}
}

// Purge empties the cache and returns its memory to the controller.
func (c *Pages) Purge() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for e := c.recency.Back(); e != nil; e = c.recency.Back() {
		c.remove(e)
	}
}

// Stats returns the hit and miss counters.
func (c *Pages) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}

	return c.hits.Load(), c.misses.Load()
}

// Size returns the cached bytes.
func (c *Pages) Size() int64 {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.size
}

// Len returns the number of cached pages.
func (c *Pages) Len() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.index)
}

func (c *Pages) remove(e *list.Element) {
	p := c.recency.Remove(e).(*page)
	delete(c.index, p.index)

	n := int64(len(p.data))
	c.size -= n
	c.rc.ReleaseMemory(n)
}
