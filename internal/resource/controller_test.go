package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	err := c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(1<<40))
	assert.Equal(t, int64(1<<40), c.MemoryUsage())
	assert.Equal(t, int64(0), c.MemoryLimit())
}

func TestController_Connections(t *testing.T) {
	c := NewController(Config{MaxConnections: 2})

	require.NoError(t, c.TryAcquireConnection())
	require.NoError(t, c.AcquireConnection(t.Context()))
	assert.Equal(t, int64(2), c.Connections())

	assert.ErrorIs(t, c.TryAcquireConnection(), ErrConnectionLimitExceeded)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireConnection(ctx))

	c.ReleaseConnection()
	require.NoError(t, c.TryAcquireConnection())
	assert.Equal(t, int64(2), c.Connections())
}

func TestController_AcceptRate(t *testing.T) {
	c := NewController(Config{AcceptsPerSec: 1})

	require.NoError(t, c.WaitAccept(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.WaitAccept(ctx))
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10)
	assert.NoError(t, c.TryAcquireConnection())
	assert.NoError(t, c.AcquireConnection(t.Context()))
	c.ReleaseConnection()
	assert.NoError(t, c.WaitAccept(t.Context()))
	assert.Zero(t, c.MemoryUsage())
	assert.Zero(t, c.Connections())
}
