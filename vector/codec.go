package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encoded layout, little endian:
//
//	count u32 | count x (index u32, value f32)
const (
	countSize = 4
	entrySize = 8
)

// MarshalBinary encodes the stored entries. The freeze state is not encoded.
func (v *Sparse) MarshalBinary() ([]byte, error) {
	buf := make([]byte, countSize+entrySize*len(v.entries))
	binary.LittleEndian.PutUint32(buf, uint32(len(v.entries))) //nolint:gosec // entries are indexed by uint32

	off := countSize
	for _, e := range v.entries {
		binary.LittleEndian.PutUint32(buf[off:], e.Index)
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(e.Value))
		off += entrySize
	}

	return buf, nil
}

// UnmarshalBinary replaces the contents of v with the decoded entries and
// unfreezes it.
func (v *Sparse) UnmarshalBinary(data []byte) error {
	if len(data) < countSize {
		return fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}

	n := int(binary.LittleEndian.Uint32(data))
	if len(data) != countSize+n*entrySize {
		return fmt.Errorf("%w: %d entries in %d bytes", ErrCorrupt, n, len(data))
	}

	entries := make([]Entry, n)
	off := countSize

	for i := range entries {
		entries[i] = Entry{
			Index: binary.LittleEndian.Uint32(data[off:]),
			Value: math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:])),
		}

		if i > 0 && entries[i].Index <= entries[i-1].Index {
			return fmt.Errorf("%w: index %d out of order", ErrCorrupt, entries[i].Index)
		}

		off += entrySize
	}

	v.entries = entries
	v.Unfreeze()

	return nil
}
