package vector

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseBinaryRoundTrip(t *testing.T) {
	v := sparseOf(t, map[int64]float32{4: 1.25, 1: -3, 900: 7})
	v.Freeze()

	data, err := v.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, 4+3*8)
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data))

	got := NewSparse()
	require.NoError(t, got.UnmarshalBinary(data))

	assert.False(t, got.Frozen())
	assert.Equal(t, v.entries, got.entries)
}

func TestSparseUnmarshalRejectsCorruptInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte{1, 0}},
		{"count mismatch", []byte{2, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}},
		{"unsorted", []byte{
			2, 0, 0, 0,
			5, 0, 0, 0, 0, 0, 0, 0,
			3, 0, 0, 0, 0, 0, 0, 0,
		}},
		{"duplicate", []byte{
			2, 0, 0, 0,
			5, 0, 0, 0, 0, 0, 0, 0,
			5, 0, 0, 0, 0, 0, 0, 0,
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := NewSparse().UnmarshalBinary(tc.data)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestSparseEmptyEncoding(t *testing.T) {
	data, err := NewSparse().MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, data)

	v := NewSparse()
	require.NoError(t, v.UnmarshalBinary(data))
	assert.Equal(t, 0, v.Len())
}
