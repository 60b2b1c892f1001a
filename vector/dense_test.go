package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func denseOf(t *testing.T, values ...float32) *Dense {
	t.Helper()

	v, err := NewDense(len(values))
	require.NoError(t, err)

	for i, val := range values {
		require.NoError(t, v.Set(i, val))
	}

	return v
}

func TestNewDenseInvalidLength(t *testing.T) {
	_, err := NewDense(0)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestDenseSetGet(t *testing.T) {
	v := denseOf(t, 1, 2, 3)

	got, err := v.Get(1)
	require.NoError(t, err)
	assert.Equal(t, float32(2), got)

	assert.ErrorIs(t, v.Set(3, 1), ErrIndexOutOfRange)
	_, err = v.Get(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDenseArithmetic(t *testing.T) {
	a := denseOf(t, 1, 2, 3)
	b := denseOf(t, 4, 5, 6)

	dot, err := a.DotProduct(b)
	require.NoError(t, err)
	assert.Equal(t, float32(32), dot)

	dist, err := a.EuclideanDistance(b)
	require.NoError(t, err)
	assert.InDelta(t, 5.196152, float64(dist), 1e-5)

	cos, err := a.CosineSimilarity(a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, float64(cos), 1e-6)

	_, err = a.DotProduct(denseOf(t, 1))
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = a.EuclideanDistance(nil)
	assert.ErrorIs(t, err, ErrMissingVector)
}

func TestDenseFreeze(t *testing.T) {
	v := denseOf(t, 3, 4)
	v.Freeze()

	require.NoError(t, v.Set(0, 0))

	mag, err := v.Magnitude()
	require.NoError(t, err)
	assert.Equal(t, float32(5), mag)

	v.Unfreeze()

	mag, err = v.Magnitude()
	require.NoError(t, err)
	assert.Equal(t, float32(4), mag)
}
