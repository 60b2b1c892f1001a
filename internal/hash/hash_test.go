package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBernstein(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint64
	}{
		{"empty", nil, 5381},
		{"single", []byte("a"), 5381*33 + 'a'},
		{"pair", []byte("ab"), (5381*33+'a')*33 + 'b'},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Bernstein(tc.in))
		})
	}
}

func TestBernsteinHighBytes(t *testing.T) {
	// Bytes are unsigned: 0xff adds 255.
	assert.Equal(t, uint64(5381*33+255), Bernstein([]byte{0xff}))
}

func TestBernsteinWraps(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'z'
	}

	assert.Equal(t, Bernstein(long), Bernstein(long))
	assert.NotEqual(t, Bernstein(long[:63]), Bernstein(long))
}

func TestCRC32C(t *testing.T) {
	// Standard check value for "123456789".
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))
	assert.Equal(t, uint32(0), CRC32C(nil))
}
