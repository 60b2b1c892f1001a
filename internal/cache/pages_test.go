package cache

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/learner/internal/resource"
)

func TestPagesEviction(t *testing.T) {
	c := NewPages(30, nil)

	c.Put(1, make([]byte, 10))
	c.Put(2, make([]byte, 10))
	c.Put(3, make([]byte, 10))
	assert.Equal(t, int64(30), c.Size())

	// Touch 1 so 2 is the least recently used.
	_, ok := c.Get(1)
	require.True(t, ok)

	c.Put(4, make([]byte, 10))

	_, ok = c.Get(2)
	assert.False(t, ok)

	for _, i := range []uint64{1, 3, 4} {
		_, ok := c.Get(i)
		assert.True(t, ok, "page %d", i)
	}

	hits, misses := c.Stats()
	assert.Equal(t, int64(4), hits)
	assert.Equal(t, int64(1), misses)
}

func TestPagesCopies(t *testing.T) {
	c := NewPages(100, nil)

	data := []byte{1, 2, 3}
	c.Put(7, data)
	data[0] = 9

	got, ok := c.Get(7)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)

	got[1] = 9

	again, _ := c.Get(7)
	assert.Equal(t, []byte{1, 2, 3}, again)
}

func TestPagesAccounting(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewPages(50, rc)

	c.Put(0, make([]byte, 60))
	_, ok := c.Get(0)
	assert.False(t, ok, "pages larger than the cache are not kept")

	c.Put(1, make([]byte, 10))
	c.Put(1, make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())
	assert.Equal(t, int64(20), rc.MemoryUsage())

	c.Drop(1, 1)
	assert.Zero(t, c.Len())
	assert.Zero(t, rc.MemoryUsage())
}

func TestPagesControllerRefusal(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 15})
	require.NoError(t, rc.AcquireMemory(10))

	c := NewPages(100, rc)
	c.Put(1, make([]byte, 10))

	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Zero(t, c.Size())
}

func TestPagesDrop(t *testing.T) {
	c := NewPages(100, nil)
	for i := range uint64(6) {
		c.Put(i, []byte{byte(i)})
	}

	c.Drop(1, 2)
	assert.Equal(t, 4, c.Len())

	// A range wider than the cache walks the index instead.
	c.Drop(4, math.MaxUint64)
	assert.Equal(t, 2, c.Len())

	for _, i := range []uint64{0, 3} {
		_, ok := c.Get(i)
		assert.True(t, ok, "page %d", i)
	}

	c.Drop(3, 0)
	assert.Equal(t, 2, c.Len())

	c.Purge()
	assert.Zero(t, c.Len())
	assert.Zero(t, c.Size())
}

func TestPagesNil(t *testing.T) {
	var c *Pages

	c.Put(1, []byte{1})
	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Drop(0, 10)
	c.Purge()

	assert.Zero(t, c.Len())
	assert.Zero(t, c.Size())
}
