package store

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/hupe1980/learner/internal/hash"
)

const cacheStripes = 64

// Cached is a read-through cache in front of another Store. Cost is the
// value length in bytes.
//
// Fills and invalidations of one key are serialized through a striped
// lock, so a reader never re-inserts a value a concurrent writer has just
// replaced.
type Cached struct {
	inner   Store
	cache   *ristretto.Cache[string, []byte]
	stripes [cacheStripes]sync.RWMutex
}

// NewCached wraps inner with a cache holding up to maxBytes of values.
func NewCached(inner Store, maxBytes int64) (*Cached, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: max(maxBytes/64, 1024),
		MaxCost:     maxBytes,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("store: cache: %w", err)
	}

	return &Cached{inner: inner, cache: cache}, nil
}

func (c *Cached) stripe(key []byte) *sync.RWMutex {
	return &c.stripes[hash.CRC32C(key)%cacheStripes]
}

func (c *Cached) Get(key []byte) ([]byte, error) {
	if v, ok := c.cache.Get(string(key)); ok {
		return append([]byte(nil), v...), nil
	}

	mu := c.stripe(key)
	mu.RLock()
	defer mu.RUnlock()

	v, err := c.inner.Get(key)
	if err != nil {
		return nil, err
	}

	c.cache.Set(string(key), append([]byte(nil), v...), int64(len(v))+1)

	return v, nil
}

func (c *Cached) Put(key, value []byte) error {
	mu := c.stripe(key)
	mu.Lock()
	defer mu.Unlock()

	c.cache.Del(string(key))
	c.cache.Wait()

	return c.inner.Put(key, value)
}

func (c *Cached) Delete(key []byte) error {
	mu := c.stripe(key)
	mu.Lock()
	defer mu.Unlock()

	c.cache.Del(string(key))
	c.cache.Wait()

	return c.inner.Delete(key)
}

// Wait blocks until pending cache writes are applied.
func (c *Cached) Wait() {
	c.cache.Wait()
}

// HitRatio reports the cache hit ratio since creation.
func (c *Cached) HitRatio() float64 {
	return c.cache.Metrics.Ratio()
}

// Unwrap returns the wrapped store.
func (c *Cached) Unwrap() Store {
	return c.inner
}

func (c *Cached) Close() error {
	c.cache.Close()

	return c.inner.Close()
}
